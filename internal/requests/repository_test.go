package requests

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investor-desk/request-portal-backend/internal/apperrors"
)

func newMockRepository(t *testing.T) (*postgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	repo := &postgresRepository{
		db:  sqlx.NewDb(mockDB, "postgres"),
		now: func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	return repo, mock
}

func transitionEvent(from, to Status) *RequestEvent {
	return &RequestEvent{
		ID:         uuid.New(),
		RequestID:  uuid.New(),
		FromStatus: &from,
		ToStatus:   to,
		CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestApplyTransitionCommitsStatusAndEvent(t *testing.T) {
	repo, mock := newMockRepository(t)
	event := transitionEvent(StatusSubmitted, StatusScreening)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`)).
		WithArgs(string(StatusScreening), event.CreatedAt, event.RequestID, string(StatusSubmitted)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO request_events`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyTransition(context.Background(), StatusSubmitted, event)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransitionStaleStatusRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	event := transitionEvent(StatusPendingInfo, StatusApproved)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET status = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyTransition(context.Background(), StatusPendingInfo, event)

	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransitionEventFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	event := transitionEvent(StatusScreening, StatusComplianceReview)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET status = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO request_events`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ApplyTransition(context.Background(), StatusScreening, event)

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequestAppendsCreationEvent(t *testing.T) {
	repo, mock := newMockRepository(t)
	currency := "USD"
	req := &Request{
		RequestNumber: "INV-0042",
		InvestorID:    uuid.New(),
		Type:          TypeBuy,
		Status:        StatusSubmitted,
		Amount:        decimal.NewNullDecimal(decimal.RequireFromString("2500.00")),
		Currency:      &currency,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO requests`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO request_events`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	event, err := repo.CreateRequest(context.Background(), req, &req.InvestorID)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.ID)
	assert.Equal(t, req.ID, event.RequestID)
	assert.Nil(t, event.FromStatus)
	assert.Equal(t, StatusSubmitted, event.ToStatus)
	assert.Equal(t, req.CreatedAt, event.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequestRejectsNonEntryStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	req := &Request{
		RequestNumber: "INV-0043",
		InvestorID:    uuid.New(),
		Type:          TypeFeedback,
		Status:        StatusApproved,
	}

	_, err := repo.CreateRequest(context.Background(), req, nil)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRequestNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM requests`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetRequest(context.Background(), id)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsScansNullableColumns(t *testing.T) {
	repo, mock := newMockRepository(t)
	requestID := uuid.New()
	actor := uuid.New()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "request_id", "from_status", "to_status", "actor_id", "note", "created_at"}).
		AddRow(uuid.New().String(), requestID.String(), "submitted", "screening", actor.String(), "triaged", created.Add(time.Hour)).
		AddRow(uuid.New().String(), requestID.String(), nil, "submitted", nil, nil, created)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM request_events`)).
		WithArgs(requestID).
		WillReturnRows(rows)

	events, err := repo.ListEvents(context.Background(), requestID)

	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].FromStatus)
	assert.Equal(t, StatusSubmitted, *events[0].FromStatus)
	assert.Equal(t, actor, *events[0].ActorID)
	assert.Nil(t, events[1].FromStatus)
	assert.Nil(t, events[1].ActorID)
	assert.Nil(t, events[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentInserts(t *testing.T) {
	repo, mock := newMockRepository(t)
	comment := &RequestComment{
		ID:        uuid.New(),
		RequestID: uuid.New(),
		ActorID:   uuid.New(),
		Comment:   "called investor",
		CreatedAt: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO request_comments`)).
		WithArgs(comment.ID, comment.RequestID, comment.ActorID, comment.Comment, comment.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddComment(context.Background(), comment))
	assert.NoError(t, mock.ExpectationsWereMet())
}
