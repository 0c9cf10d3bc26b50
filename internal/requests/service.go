package requests

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
)

type Service interface {
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	// GetRequestForInvestor hides requests the investor does not own behind NotFound.
	GetRequestForInvestor(ctx context.Context, id, investorID uuid.UUID) (*Request, error)
	ListEvents(ctx context.Context, id uuid.UUID) ([]RequestEvent, error)
	// AddComment attaches an internal staff note; comments never change status.
	AddComment(ctx context.Context, id, actorID uuid.UUID, text string) (*RequestComment, error)
	AllowedTransitions(ctx context.Context, id uuid.UUID) ([]Status, error)

	Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error)

	Submit(ctx context.Context, id, investorID uuid.UUID) (*TransitionResult, error)
	MoveToScreening(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	MoveToPendingInfo(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	MoveToComplianceReview(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	Approve(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	Reject(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	StartSettlement(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
	Complete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)
}

// ServiceOptions tunes the transition executor
type ServiceOptions struct {
	// RetryOnConflict re-reads and retries once when the conditional write
	// loses a race and the caller did not pin an expected status.
	RetryOnConflict bool

	// OnTransition runs after each committed status change.
	OnTransition func(result *TransitionResult)
}

type requestService struct {
	repo    Repository
	logger  *zap.Logger
	options ServiceOptions
	now     func() time.Time
}

func NewService(repo Repository, logger *zap.Logger, options ServiceOptions) Service {
	return &requestService{
		repo:    repo,
		logger:  logger,
		options: options,
		now:     time.Now,
	}
}

func (s *requestService) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *requestService) GetRequestForInvestor(ctx context.Context, id, investorID uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.OwnedBy(investorID) {
		return nil, apperrors.NotFound("request", id.String())
	}
	return req, nil
}

func (s *requestService) ListEvents(ctx context.Context, id uuid.UUID) ([]RequestEvent, error) {
	if _, err := s.repo.GetRequest(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, id)
}

func (s *requestService) AddComment(ctx context.Context, id, actorID uuid.UUID, text string) (*RequestComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment", "must not be empty")
	}
	if _, err := s.repo.GetRequest(ctx, id); err != nil {
		return nil, err
	}

	comment := &RequestComment{
		ID:        uuid.New(),
		RequestID: id,
		ActorID:   actorID,
		Comment:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("Request comment added",
		zap.String("request_id", id.String()),
		zap.String("actor_id", actorID.String()))
	return comment, nil
}

func (s *requestService) AllowedTransitions(ctx context.Context, id uuid.UUID) ([]Status, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return AllowedTransitions(req.Status), nil
}

// =====================================================
// Transition Executor
// =====================================================

// Transition validates and applies one status change together with its event.
func (s *requestService) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if !in.ToStatus.Valid() {
		return nil, apperrors.Validation("to_status", "unknown status "+string(in.ToStatus))
	}
	if in.ExpectedStatus != "" && !in.ExpectedStatus.Valid() {
		return nil, apperrors.Validation("expected_status", "unknown status "+string(in.ExpectedStatus))
	}

	result, err := s.attempt(ctx, in)
	if err != nil && errors.Is(err, apperrors.ErrConcurrentModification) &&
		s.options.RetryOnConflict && in.ExpectedStatus == "" {
		s.logger.Info("Retrying transition after concurrent modification",
			zap.String("request_id", in.RequestID.String()),
			zap.String("to_status", string(in.ToStatus)))
		result, err = s.attempt(ctx, in)
	}
	if err == nil && s.options.OnTransition != nil {
		s.options.OnTransition(result)
	}
	return result, err
}

func (s *requestService) attempt(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	req, err := s.repo.GetRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	from := req.Status
	if in.ExpectedStatus != "" && in.ExpectedStatus != from {
		s.logger.Warn("Request status changed since it was observed",
			zap.String("request_id", in.RequestID.String()),
			zap.String("expected_status", string(in.ExpectedStatus)),
			zap.String("current_status", string(from)))
		return nil, apperrors.ConcurrentModification(in.RequestID.String())
	}

	if !CanTransition(from, in.ToStatus) {
		return nil, apperrors.InvalidTransition(string(from), string(in.ToStatus))
	}

	event := &RequestEvent{
		ID:         uuid.New(),
		RequestID:  in.RequestID,
		FromStatus: &from,
		ToStatus:   in.ToStatus,
		ActorID:    in.ActorID,
		CreatedAt:  s.now().UTC(),
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		event.Note = &note
	}

	if err := s.repo.ApplyTransition(ctx, from, event); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			s.logger.Warn("Conditional status update lost a race",
				zap.String("request_id", in.RequestID.String()),
				zap.String("from_status", string(from)),
				zap.String("to_status", string(in.ToStatus)))
		}
		return nil, err
	}

	s.logger.Info("Request status changed",
		zap.String("request_id", in.RequestID.String()),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(in.ToStatus)),
		zap.String("actor_id", actorString(in.ActorID)))

	return &TransitionResult{
		RequestID: in.RequestID,
		Status:    in.ToStatus,
		Event:     event,
	}, nil
}

// =====================================================
// Named Operations
// =====================================================

// Submit moves an investor's own draft to submitted.
func (s *requestService) Submit(ctx context.Context, id, investorID uuid.UUID) (*TransitionResult, error) {
	req, err := s.GetRequestForInvestor(ctx, id, investorID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, TransitionInput{
		RequestID:      id,
		ActorID:        &investorID,
		ToStatus:       StatusSubmitted,
		ExpectedStatus: req.Status,
	})
}

func (s *requestService) MoveToScreening(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusScreening, Note: note})
}

// MoveToPendingInfo requires a note telling the investor what is missing.
func (s *requestService) MoveToPendingInfo(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.Validation("note", "a note describing the missing information is required")
	}
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusPendingInfo, Note: note})
}

func (s *requestService) MoveToComplianceReview(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusComplianceReview, Note: note})
}

func (s *requestService) Approve(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusApproved, Note: note})
}

// Reject requires a non-empty reason.
func (s *requestService) Reject(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.Validation("note", "a rejection reason is required")
	}
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusRejected, Note: note})
}

func (s *requestService) StartSettlement(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusSettling, Note: note})
}

func (s *requestService) Complete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error) {
	return s.Transition(ctx, TransitionInput{RequestID: id, ActorID: actorID, ToStatus: StatusCompleted, Note: note})
}

func actorString(actorID *uuid.UUID) string {
	if actorID == nil {
		return "system"
	}
	return actorID.String()
}
