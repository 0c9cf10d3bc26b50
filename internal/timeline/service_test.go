package timeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
	"investor-desk/request-portal-backend/internal/notifications"
	"investor-desk/request-portal-backend/internal/profiles"
	"investor-desk/request-portal-backend/internal/requests"
)

type fakeStore struct {
	request  *requests.Request
	src      Sources
	people   map[uuid.UUID]profiles.Profile
	failWith map[string]error
}

func (f *fakeStore) GetRequest(ctx context.Context, id uuid.UUID) (*requests.Request, error) {
	if f.request == nil || f.request.ID != id {
		return nil, apperrors.NotFound("request", id.String())
	}
	return f.request, nil
}

func (f *fakeStore) ListEvents(ctx context.Context, requestID uuid.UUID) ([]requests.RequestEvent, error) {
	if err := f.failWith[SourceEvents]; err != nil {
		return nil, err
	}
	return f.src.Events, nil
}

func (f *fakeStore) ListComments(ctx context.Context, requestID uuid.UUID) ([]requests.RequestComment, error) {
	if err := f.failWith[SourceComments]; err != nil {
		return nil, err
	}
	return f.src.Comments, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, requestID uuid.UUID) ([]notifications.Record, error) {
	if err := f.failWith[SourceNotifications]; err != nil {
		return nil, err
	}
	return f.src.Notifications, nil
}

func (f *fakeStore) Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]profiles.Profile, error) {
	if err := f.failWith[SourceProfiles]; err != nil {
		return nil, err
	}
	return f.people, nil
}

func newFakeService(store *fakeStore) *Service {
	return NewService(Dependencies{
		Requests:      store,
		Events:        store,
		Comments:      store,
		Notifications: store,
		Profiles:      store,
		Copy:          notifications.DefaultCopyCatalog(),
	}, zap.NewNop())
}

func newFakeStore() (*fakeStore, uuid.UUID) {
	staff, investor, requestID := uuid.New(), uuid.New(), uuid.New()
	return &fakeStore{
		request: &requests.Request{ID: requestID, InvestorID: investor, Status: requests.StatusPendingInfo},
		src:     fixtureSources(staff, investor, requestID),
		people:  map[uuid.UUID]profiles.Profile{},
	}, investor
}

func TestBuildTimelineMergesAllSources(t *testing.T) {
	store, investor := newFakeStore()
	service := newFakeService(store)

	admin, err := service.BuildTimeline(context.Background(), store.request.ID, Viewer{UserID: uuid.New(), Audience: VisibilityAdmin})
	require.NoError(t, err)
	assert.Len(t, admin, 7)

	own, err := service.BuildTimeline(context.Background(), store.request.ID, Viewer{UserID: investor, Audience: VisibilityInvestor})
	require.NoError(t, err)
	assert.Len(t, own, 5)
}

func TestBuildTimelineHidesOtherInvestorsRequests(t *testing.T) {
	store, _ := newFakeStore()
	service := newFakeService(store)

	_, err := service.BuildTimeline(context.Background(), store.request.ID, Viewer{UserID: uuid.New(), Audience: VisibilityInvestor})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.BuildTimeline(context.Background(), uuid.New(), Viewer{Audience: VisibilityAdmin})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBuildTimelineFailsWhenAnySourceFails(t *testing.T) {
	for _, source := range []string{SourceEvents, SourceComments, SourceNotifications, SourceProfiles} {
		t.Run(source, func(t *testing.T) {
			store, _ := newFakeStore()
			readErr := errors.New("connection reset by peer")
			store.failWith = map[string]error{source: readErr}

			entries, err := newFakeService(store).BuildTimeline(context.Background(), store.request.ID, Viewer{Audience: VisibilityAdmin})

			assert.Nil(t, entries)
			assert.ErrorIs(t, err, apperrors.ErrAggregation)
			assert.ErrorIs(t, err, readErr)
			var aggErr *apperrors.AggregationError
			require.True(t, errors.As(err, &aggErr))
			assert.Equal(t, source, aggErr.Source)
			assert.Equal(t, store.request.ID.String(), aggErr.RequestID)
		})
	}
}

func TestTimelineHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, investor := newFakeStore()

	route := func(principal auth.Principal) *gin.Engine {
		router := gin.New()
		api := router.Group("/api/v1", func(c *gin.Context) {
			auth.SetPrincipal(c, &principal)
			c.Next()
		})
		NewHandler(newFakeService(store), zap.NewNop(), "en").RegisterRoutes(api)
		return router
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/"+store.request.ID.String()+"/timeline", nil)
	req.Header.Set("Accept-Language", "ar")
	rec := httptest.NewRecorder()
	route(auth.Principal{UserID: investor, Role: auth.RoleInvestor}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"language":"ar"`)
	assert.NotContains(t, rec.Body.String(), `"entry_type":"comment"`)

	store.failWith = map[string]error{SourceComments: errors.New("timeout")}
	rec = httptest.NewRecorder()
	route(auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/requests/"+store.request.ID.String()+"/timeline", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), SourceComments)
}
