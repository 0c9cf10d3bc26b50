package timeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/notifications"
	"investor-desk/request-portal-backend/internal/profiles"
	"investor-desk/request-portal-backend/internal/requests"
)

// Source names reported in aggregation failures
const (
	SourceEvents        = "request_events"
	SourceComments      = "request_comments"
	SourceNotifications = "notifications"
	SourceProfiles      = "investor_profiles"
)

type RequestReader interface {
	GetRequest(ctx context.Context, id uuid.UUID) (*requests.Request, error)
}

type EventReader interface {
	ListEvents(ctx context.Context, requestID uuid.UUID) ([]requests.RequestEvent, error)
}

type CommentReader interface {
	ListComments(ctx context.Context, requestID uuid.UUID) ([]requests.RequestComment, error)
}

type NotificationReader interface {
	ListNotifications(ctx context.Context, requestID uuid.UUID) ([]notifications.Record, error)
}

type ProfileLookup interface {
	Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]profiles.Profile, error)
}

// Dependencies wires the read APIs the aggregator consumes.
type Dependencies struct {
	Requests      RequestReader
	Events        EventReader
	Comments      CommentReader
	Notifications NotificationReader
	Profiles      ProfileLookup
	Copy          CopyResolver
}

type Service struct {
	deps   Dependencies
	logger *zap.Logger
}

func NewService(deps Dependencies, logger *zap.Logger) *Service {
	return &Service{deps: deps, logger: logger}
}

// BuildTimeline reads all three sources concurrently and merges them for
// viewer. Any failed read fails the whole timeline. Investors asking for a
// request they do not own get NotFound.
func (s *Service) BuildTimeline(ctx context.Context, requestID uuid.UUID, viewer Viewer) ([]Entry, error) {
	req, err := s.deps.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if viewer.Audience != VisibilityAdmin && !req.OwnedBy(viewer.UserID) {
		return nil, apperrors.NotFound("request", requestID.String())
	}

	var src Sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.deps.Events.ListEvents(gctx, requestID)
		if err != nil {
			return s.sourceFailed(requestID, SourceEvents, err)
		}
		src.Events = events
		return nil
	})
	g.Go(func() error {
		comments, err := s.deps.Comments.ListComments(gctx, requestID)
		if err != nil {
			return s.sourceFailed(requestID, SourceComments, err)
		}
		src.Comments = comments
		return nil
	})
	g.Go(func() error {
		records, err := s.deps.Notifications.ListNotifications(gctx, requestID)
		if err != nil {
			return s.sourceFailed(requestID, SourceNotifications, err)
		}
		src.Notifications = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	people, err := s.deps.Profiles.Lookup(ctx, actorIDs(src))
	if err != nil {
		return nil, s.sourceFailed(requestID, SourceProfiles, err)
	}

	return Merge(src, viewer, people, s.deps.Copy), nil
}

func (s *Service) sourceFailed(requestID uuid.UUID, source string, err error) error {
	s.logger.Error("Timeline source read failed",
		zap.String("request_id", requestID.String()),
		zap.String("source", source),
		zap.Error(err))
	return apperrors.Aggregation(requestID.String(), source, err)
}

func actorIDs(src Sources) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(src.Events)+len(src.Comments))
	for _, e := range src.Events {
		if e.ActorID != nil {
			ids = append(ids, *e.ActorID)
		}
	}
	for _, c := range src.Comments {
		ids = append(ids, c.ActorID)
	}
	return ids
}
