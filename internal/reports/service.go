package reports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/reports/export"
)

// Service produces request reports in every supported format.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Generate loads the snapshot and projects it through filters.
func (s *Service) Generate(ctx context.Context, filters Filters) ([]ReportRow, error) {
	records, err := s.repo.ListRecords(ctx, filters.From, filters.To)
	if err != nil {
		return nil, err
	}
	return Project(records, filters), nil
}

// Export writes the filtered report to w and returns the number of rows.
func (s *Service) Export(ctx context.Context, w io.Writer, format export.Format, filters Filters) (int, error) {
	rows, err := s.Generate(ctx, filters)
	if err != nil {
		return 0, err
	}
	generatedAt := s.now().UTC()

	if format == export.FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(ReportResponse{Rows: rows, Count: len(rows), GeneratedAt: generatedAt})
	} else {
		err = export.WriteTable(w, format, Table(rows, filters, generatedAt))
	}
	if err != nil {
		s.logger.Error("Failed to write report",
			zap.String("format", string(format)),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("Report exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// Filename is the download name for a report generated at t.
func Filename(prefix string, format export.Format, t time.Time) string {
	return prefix + "-" + t.UTC().Format("20060102T150405Z") + export.FileExtension(format)
}
