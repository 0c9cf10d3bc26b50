package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Delivery channels
const (
	ChannelEmail = "email"
	ChannelInApp = "in_app"
	ChannelSMS   = "sms"
)

// Notification types emitted by the request workflow
const (
	TypeRequestSubmitted     = "request_submitted"
	TypeRequestStatusChanged = "request_status_changed"
	TypeInfoRequested        = "request_info_requested"
	TypeRequestApproved      = "request_approved"
	TypeRequestRejected      = "request_rejected"
	TypeRequestCompleted     = "request_completed"
)

// Record is the delivery record of one message tied to a request.
// Only ReadAt and StateRead change after insert.
type Record struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RequestID *uuid.UUID     `json:"request_id" gorm:"type:uuid;index"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string         `json:"type" gorm:"not null"`
	Channel   string         `json:"channel" gorm:"not null"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ReadAt    *time.Time     `json:"read_at"`
	StateRead bool           `json:"state_read" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (Record) TableName() string {
	return "notifications"
}

// Unread reports whether the recipient has not acknowledged the record.
func (r Record) Unread() bool {
	return !r.StateRead
}

// PayloadFields flattens the JSON payload into strings for copy templates.
// Nested values are rendered as JSON.
func (r Record) PayloadFields() (map[string]string, error) {
	fields := map[string]string{}
	if len(r.Payload) == 0 {
		return fields, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(r.Payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode notification payload: %w", err)
	}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			fields[k] = ""
		case string:
			fields[k] = val
		case map[string]interface{}, []interface{}:
			encoded, _ := json.Marshal(val)
			fields[k] = string(encoded)
		default:
			fields[k] = fmt.Sprint(val)
		}
	}
	return fields, nil
}

// Copy is the rendered title and description of a notification.
type Copy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
