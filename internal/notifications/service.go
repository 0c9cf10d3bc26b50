package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the read side of the notification store and the
// read-acknowledgement action.
type Service struct {
	repo    Repository
	catalog *CopyCatalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, catalog *CopyCatalog, logger *zap.Logger) *Service {
	if catalog == nil {
		catalog = DefaultCopyCatalog()
	}
	return &Service{repo: repo, catalog: catalog, logger: logger, now: time.Now}
}

// ListNotifications returns the records associated with a request, newest first.
func (s *Service) ListNotifications(ctx context.Context, requestID uuid.UUID) ([]Record, error) {
	return s.repo.ListByRequest(ctx, requestID)
}

func (s *Service) ResolveCopy(record Record, lang string) Copy {
	return s.catalog.Resolve(record, lang)
}

// MarkRead acknowledges a notification for its recipient.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Record, error) {
	record, err := s.repo.MarkRead(ctx, id, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Notification acknowledged",
		zap.String("notification_id", id.String()),
		zap.String("user_id", userID.String()))
	return record, nil
}
