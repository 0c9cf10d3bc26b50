package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/pkg/locale"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// Lookup satisfies the timeline and report actor lookups.
func (s *Service) Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	return s.repo.GetProfiles(ctx, dedupe(ids))
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = blankToNil(*req.DisplayName)
	}
	if req.PreferredName != nil {
		profile.PreferredName = blankToNil(*req.PreferredName)
	}
	if req.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*req.Language))
		if lang != locale.English && lang != locale.Arabic {
			return nil, apperrors.Validation("language", "supported languages are en and ar")
		}
		profile.Language = lang
	}
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func blankToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
