package profiles

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the investor-facing identity used to label timeline actors and report rows.
type Profile struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Email         string    `json:"email" db:"email"`
	FullName      *string   `json:"full_name" db:"full_name"`
	DisplayName   *string   `json:"display_name" db:"display_name"`
	PreferredName *string   `json:"preferred_name" db:"preferred_name"`
	Language      string    `json:"language" db:"language"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name"`
	PreferredName *string `json:"preferred_name"`
	Language      *string `json:"language"`
}
