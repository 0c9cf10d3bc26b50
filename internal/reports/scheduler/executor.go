package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/reports"
	"investor-desk/request-portal-backend/internal/reports/export"
)

// ReportExporter renders a filtered request report into w.
type ReportExporter interface {
	Export(ctx context.Context, w io.Writer, format export.Format, filters reports.Filters) (int, error)
}

// ExecutionResult describes one scheduled report run.
type ExecutionResult struct {
	ExecutionID   uuid.UUID `json:"execution_id"`
	ScheduleName  string    `json:"schedule_name"`
	Status        string    `json:"status"`
	FilePath      string    `json:"file_path,omitempty"`
	ArchivedTo    string    `json:"archived_to,omitempty"`
	ArchiveError  string    `json:"archive_error,omitempty"`
	RecordCount   int       `json:"record_count"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// ExecutorConfig configures where and how long report runs may take.
type ExecutorConfig struct {
	OutputDir string        `json:"output_dir"`
	Timeout   time.Duration `json:"timeout"`
}

// DefaultExecutorConfig returns default configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		OutputDir: "reports",
		Timeout:   10 * time.Minute,
	}
}

// Executor writes one report file per run into the output directory.
type Executor struct {
	exporter ReportExporter
	archiver Archiver
	config   ExecutorConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewExecutor creates a new report executor
func NewExecutor(exporter ReportExporter, config ExecutorConfig, logger *zap.Logger) *Executor {
	if config.Timeout <= 0 {
		config.Timeout = DefaultExecutorConfig().Timeout
	}
	return &Executor{
		exporter: exporter,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// WithArchiver copies every written report to a. A failed copy is recorded on
// the result but does not fail the run; the local file stays in place.
func (e *Executor) WithArchiver(a Archiver) *Executor {
	e.archiver = a
	return e
}

// Execute runs schedule once. The file appears under its final name only
// after the report was fully written.
func (e *Executor) Execute(ctx context.Context, schedule Schedule) (*ExecutionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	startTime := e.now()
	result := &ExecutionResult{
		ExecutionID:  uuid.New(),
		ScheduleName: schedule.Name,
		Status:       "running",
		StartedAt:    startTime,
	}
	fail := func(err error) (*ExecutionResult, error) {
		result.Status = "failed"
		result.Error = err.Error()
		result.CompletedAt = e.now()
		result.DurationMs = result.CompletedAt.Sub(startTime).Milliseconds()
		return result, err
	}

	format, filters, err := schedule.parse()
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(e.config.OutputDir, 0o755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	tmp, err := os.CreateTemp(e.config.OutputDir, "."+schedule.Name+"-*.tmp")
	if err != nil {
		return fail(fmt.Errorf("failed to create report file: %w", err))
	}
	defer os.Remove(tmp.Name())

	count, err := e.exporter.Export(ctx, tmp, format, filters)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close report file: %w", closeErr)
	}
	if err != nil {
		return fail(err)
	}

	path := filepath.Join(e.config.OutputDir, reports.Filename(schedule.Name, format, startTime))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fail(fmt.Errorf("failed to publish report file: %w", err))
	}
	if info, err := os.Stat(path); err == nil {
		result.FileSizeBytes = info.Size()
	}

	if e.archiver != nil {
		location, err := e.archiver.Archive(ctx, path, format)
		if err != nil {
			result.ArchiveError = err.Error()
			e.logger.Warn("Failed to archive report",
				zap.String("schedule_name", schedule.Name),
				zap.String("file", path),
				zap.Error(err))
		} else {
			result.ArchivedTo = location
		}
	}

	result.Status = "completed"
	result.FilePath = path
	result.RecordCount = count
	result.CompletedAt = e.now()
	result.DurationMs = result.CompletedAt.Sub(startTime).Milliseconds()

	e.logger.Info("Report execution completed",
		zap.String("execution_id", result.ExecutionID.String()),
		zap.String("schedule_name", schedule.Name),
		zap.String("file", path),
		zap.Int("record_count", result.RecordCount),
		zap.Int64("duration_ms", result.DurationMs))

	return result, nil
}

func (s Schedule) parse() (export.Format, reports.Filters, error) {
	format, err := export.ParseFormat(s.Format)
	if err != nil {
		return "", reports.Filters{}, err
	}
	query, err := url.ParseQuery(s.Query)
	if err != nil {
		return "", reports.Filters{}, fmt.Errorf("invalid report query %q: %w", s.Query, err)
	}
	filters, err := reports.ParseFilters(query)
	if err != nil {
		return "", reports.Filters{}, err
	}
	return format, filters, nil
}
