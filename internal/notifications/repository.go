package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"investor-desk/request-portal-backend/internal/apperrors"
)

type Repository interface {
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Record, error)
	// MarkRead acknowledges a record owned by userID. Re-acknowledging keeps
	// the first ReadAt.
	MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (*Record, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

func (r *gormRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (*Record, error) {
	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"read_at":    gorm.Expr("COALESCE(read_at, ?)", at),
			"state_read": true,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("notification", id.String())
	}

	var record Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("notification", id.String())
		}
		return nil, fmt.Errorf("failed to reload notification: %w", err)
	}
	return &record, nil
}
