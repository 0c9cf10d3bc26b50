package scheduler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/reports"
	"investor-desk/request-portal-backend/internal/reports/export"
	"investor-desk/request-portal-backend/internal/requests"
)

type stubExporter struct {
	body    string
	rows    int
	err     error
	format  export.Format
	filters reports.Filters
}

func (s *stubExporter) Export(_ context.Context, w io.Writer, format export.Format, filters reports.Filters) (int, error) {
	s.format = format
	s.filters = filters
	if s.err != nil {
		return 0, s.err
	}
	_, err := io.WriteString(w, s.body)
	return s.rows, err
}

func newTestExecutor(t *testing.T, exporter ReportExporter) (*Executor, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	executor := NewExecutor(exporter, ExecutorConfig{OutputDir: dir}, zap.NewNop())
	executor.now = func() time.Time { return time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC) }
	return executor, dir
}

func TestValidateCronExpression(t *testing.T) {
	assert.NoError(t, ValidateCronExpression("0 6 * * 1-5"))
	assert.NoError(t, ValidateCronExpression("@daily"))
	assert.Error(t, ValidateCronExpression("0 0 6 * * *"))
	assert.Error(t, ValidateCronExpression("every morning"))
}

func TestScheduleValidate(t *testing.T) {
	valid := Schedule{Name: "daily-approved", CronExpression: "0 6 * * *", Format: "csv", Query: "status=approved"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(s *Schedule){
		"path in name":  func(s *Schedule) { s.Name = "../etc" },
		"bad cron":      func(s *Schedule) { s.CronExpression = "61 * * * *" },
		"bad timezone":  func(s *Schedule) { s.Timezone = "Mars/Olympus" },
		"bad format":    func(s *Schedule) { s.Format = "docx" },
		"bad filter":    func(s *Schedule) { s.Query = "status=archived" },
		"inverted date": func(s *Schedule) { s.Query = "from=2025-02-01T00:00:00Z&to=2025-01-01T00:00:00Z" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestExecuteWritesReportFile(t *testing.T) {
	exporter := &stubExporter{body: "request_number\nINV-0001\n", rows: 1}
	executor, dir := newTestExecutor(t, exporter)

	result, err := executor.Execute(context.Background(), Schedule{
		Name: "weekly-buy", CronExpression: "@weekly", Format: "csv", Query: "type=buy",
	})

	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.RecordCount)
	assert.Equal(t, filepath.Join(dir, "weekly-buy-20250602T060000Z.csv"), result.FilePath)

	data, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, exporter.body, string(data))
	assert.Equal(t, int64(len(exporter.body)), result.FileSizeBytes)

	assert.Equal(t, export.FormatCSV, exporter.format)
	require.NotNil(t, exporter.filters.Type)
	assert.Equal(t, requests.TypeBuy, *exporter.filters.Type)
}

func TestExecuteFailureLeavesNoFile(t *testing.T) {
	executor, dir := newTestExecutor(t, &stubExporter{err: errors.New("database unavailable")})

	result, err := executor.Execute(context.Background(), Schedule{Name: "nightly", CronExpression: "@daily", Format: "xlsx"})

	require.Error(t, err)
	assert.Equal(t, "failed", result.Status)
	assert.Contains(t, result.Error, "database unavailable")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScheduleManagerLifecycle(t *testing.T) {
	exporter := &stubExporter{body: "{}", rows: 0}
	executor, dir := newTestExecutor(t, exporter)
	manager := NewScheduleManager(executor, zap.NewNop())

	require.Error(t, manager.AddSchedule(Schedule{Name: "broken", CronExpression: "nope", Format: "json"}))
	require.NoError(t, manager.AddSchedule(Schedule{Name: "hourly", CronExpression: "0 * * * *", Timezone: "UTC", Format: "json"}))
	require.NoError(t, manager.AddSchedule(Schedule{Name: "hourly", CronExpression: "30 * * * *", Format: "json"}))
	assert.Equal(t, 1, manager.GetActiveJobs())

	status, err := manager.GetJobStatus("hourly")
	require.NoError(t, err)
	assert.Equal(t, 30, status.NextRun.Minute())
	assert.False(t, status.IsActive)

	result, err := manager.RunNow(context.Background(), "hourly")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.FilePath, dir))
	assert.True(t, strings.HasSuffix(result.FilePath, ".json"))

	require.NoError(t, manager.Start())
	assert.Error(t, manager.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	manager.Stop(ctx)

	manager.RemoveSchedule("hourly")
	assert.Equal(t, 0, manager.GetActiveJobs())
	_, err = manager.GetJobStatus("hourly")
	assert.Error(t, err)
	_, err = manager.RunNow(context.Background(), "hourly")
	assert.Error(t, err)
}

func TestDescribeCronExpression(t *testing.T) {
	assert.Equal(t, "Every day at midnight", DescribeCronExpression("@daily"))
	assert.Equal(t, "15 4 * * *", DescribeCronExpression("15 4 * * *"))
}
