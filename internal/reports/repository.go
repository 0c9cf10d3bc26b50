package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository reads the request snapshot a report is projected from.
type Repository interface {
	// ListRecords returns requests joined with investor contact details,
	// newest first. A nil bound leaves that side of the window open.
	ListRecords(ctx context.Context, from, to *time.Time) ([]SourceRecord, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListRecords(ctx context.Context, from, to *time.Time) ([]SourceRecord, error) {
	var records []SourceRecord
	query := `
		SELECT r.id, r.request_number, r.investor_id, r.type, r.status, r.amount, r.currency,
			   r.target_price, r.expiry_at, r.notes, r.created_at, r.updated_at,
			   COALESCE(p.email, '') AS investor_email,
			   COALESCE(NULLIF(p.full_name, ''), NULLIF(p.display_name, ''), p.preferred_name, '') AS investor_name
		FROM requests r
		LEFT JOIN investor_profiles p ON p.user_id = r.investor_id
		WHERE ($1::timestamptz IS NULL OR r.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR r.created_at <= $2)
		ORDER BY r.created_at DESC, r.request_number ASC`
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list report records: %w", err)
	}
	return records, nil
}
