package timeline

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"investor-desk/request-portal-backend/internal/requests"
)

type EntryType string

const (
	EntryStatusChange EntryType = "status_change"
	EntryComment      EntryType = "comment"
	EntryNotification EntryType = "notification"
)

// Visibility is the audience an entry may be shown to.
type Visibility string

const (
	VisibilityInvestor Visibility = "investor"
	VisibilityAdmin    Visibility = "admin"
)

// Viewer describes who the timeline is built for.
type Viewer struct {
	UserID   uuid.UUID
	Audience Visibility
	Language string
}

// Actor is the resolved display identity behind an event or comment.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type StatusChange struct {
	FromStatus *requests.Status `json:"from_status"`
	ToStatus   requests.Status  `json:"to_status"`
	Note       *string          `json:"note"`
}

type CommentBody struct {
	Text string `json:"text"`
}

type NotificationBody struct {
	Type      string         `json:"type"`
	Channel   string         `json:"channel"`
	Payload   datatypes.JSON `json:"payload"`
	ReadAt    *time.Time     `json:"read_at"`
	StateRead bool           `json:"state_read"`
	Unread    bool           `json:"unread"`
}

// Entry is one unit of the merged activity feed. Exactly one of
// StatusChange, Comment and Notification is set, matching EntryType.
type Entry struct {
	ID           string            `json:"id"`
	EntryType    EntryType         `json:"entry_type"`
	CreatedAt    time.Time         `json:"created_at"`
	Visibility   Visibility        `json:"visibility"`
	Actor        *Actor            `json:"actor"`
	ActorLabel   string            `json:"actor_label"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	StatusChange *StatusChange     `json:"status_change,omitempty"`
	Comment      *CommentBody      `json:"comment,omitempty"`
	Notification *NotificationBody `json:"notification,omitempty"`

	sourceID uuid.UUID
}

// SourceID is the id of the record the entry was projected from.
func (e Entry) SourceID() uuid.UUID {
	return e.sourceID
}

// VisibleTo reports whether audience may see the entry.
func (e Entry) VisibleTo(audience Visibility) bool {
	if audience == VisibilityAdmin {
		return true
	}
	return e.Visibility == VisibilityInvestor
}
