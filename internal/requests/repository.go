package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"investor-desk/request-portal-backend/internal/apperrors"
)

type Repository interface {
	CreateRequest(ctx context.Context, req *Request, actorID *uuid.UUID) (*RequestEvent, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)

	// ApplyTransition moves the request from -> event.ToStatus only if the
	// stored status is still from, and appends event in the same transaction.
	ApplyTransition(ctx context.Context, from Status, event *RequestEvent) error

	ListEvents(ctx context.Context, requestID uuid.UUID) ([]RequestEvent, error)
	ListComments(ctx context.Context, requestID uuid.UUID) ([]RequestComment, error)
	AddComment(ctx context.Context, comment *RequestComment) error
}

type postgresRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db, now: time.Now}
}

const insertEventQuery = `
	INSERT INTO request_events (
		id, request_id, from_status, to_status, actor_id, note, created_at
	) VALUES (
		:id, :request_id, :from_status, :to_status, :actor_id, :note, :created_at
	)`

func (r *postgresRepository) CreateRequest(ctx context.Context, req *Request, actorID *uuid.UUID) (*RequestEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Status.IsEntry() {
		return nil, apperrors.Validation("status", "requests start as draft or submitted")
	}

	now := r.now().UTC()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	event := &RequestEvent{
		ID:        uuid.New(),
		RequestID: req.ID,
		ToStatus:  req.Status,
		ActorID:   actorID,
		CreatedAt: now,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO requests (
			id, request_number, investor_id, type, status, amount, currency,
			target_price, expiry_at, notes, created_at, updated_at
		) VALUES (
			:id, :request_number, :investor_id, :type, :status, :amount, :currency,
			:target_price, :expiry_at, :notes, :created_at, :updated_at
		)`
	if _, err := tx.NamedExecContext(ctx, query, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insertEventQuery, event); err != nil {
		return nil, fmt.Errorf("failed to append creation event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit request creation: %w", err)
	}

	return event, nil
}

func (r *postgresRepository) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	query := `
		SELECT id, request_number, investor_id, type, status, amount, currency,
			   target_price, expiry_at, notes, created_at, updated_at
		FROM requests
		WHERE id = $1`
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("request", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) ApplyTransition(ctx context.Context, from Status, event *RequestEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		event.ToStatus, event.CreatedAt, event.RequestID, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.ConcurrentModification(event.RequestID.String())
	}

	if _, err := tx.NamedExecContext(ctx, insertEventQuery, event); err != nil {
		return fmt.Errorf("failed to append request event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListEvents(ctx context.Context, requestID uuid.UUID) ([]RequestEvent, error) {
	events := []RequestEvent{}
	query := `
		SELECT id, request_id, from_status, to_status, actor_id, note, created_at
		FROM request_events
		WHERE request_id = $1
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &events, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list request events: %w", err)
	}
	return events, nil
}

func (r *postgresRepository) ListComments(ctx context.Context, requestID uuid.UUID) ([]RequestComment, error) {
	comments := []RequestComment{}
	query := `
		SELECT id, request_id, actor_id, comment, created_at
		FROM request_comments
		WHERE request_id = $1
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &comments, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list request comments: %w", err)
	}
	return comments, nil
}

func (r *postgresRepository) AddComment(ctx context.Context, comment *RequestComment) error {
	query := `
		INSERT INTO request_comments (id, request_id, actor_id, comment, created_at)
		VALUES (:id, :request_id, :actor_id, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("failed to add request comment: %w", err)
	}
	return nil
}
