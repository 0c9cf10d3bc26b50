package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"investor-desk/request-portal-backend/internal/apperrors"
)

type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// GetProfiles returns the profiles that exist among ids, keyed by user id.
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `user_id, email, full_name, display_name, preferred_name, language, created_at, updated_at`

func (r *postgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var profile Profile
	query := `SELECT ` + profileColumns + ` FROM investor_profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("profile", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *postgresRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	result := make(map[uuid.UUID]Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var rows []Profile
	query := `SELECT ` + profileColumns + ` FROM investor_profiles WHERE user_id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &rows, query, keys); err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, p := range rows {
		result[p.UserID] = p
	}
	return result, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE investor_profiles
		SET display_name = :display_name, preferred_name = :preferred_name,
		    language = :language, updated_at = :updated_at
		WHERE user_id = :user_id`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("profile", profile.UserID.String())
	}
	return nil
}
