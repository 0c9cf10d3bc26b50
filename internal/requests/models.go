package requests

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investor-desk/request-portal-backend/internal/apperrors"
)

type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusScreening        Status = "screening"
	StatusPendingInfo      Status = "pending_info"
	StatusComplianceReview Status = "compliance_review"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusSettling         Status = "settling"
	StatusCompleted        Status = "completed"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusScreening,
	StatusPendingInfo,
	StatusComplianceReview,
	StatusApproved,
	StatusRejected,
	StatusSettling,
	StatusCompleted,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsEntry reports whether a request may be created in this status.
func (s Status) IsEntry() bool {
	return s == StatusDraft || s == StatusSubmitted
}

type RequestType string

const (
	TypeBuy             RequestType = "buy"
	TypeSell            RequestType = "sell"
	TypePartnership     RequestType = "partnership"
	TypeBoardNomination RequestType = "board_nomination"
	TypeFeedback        RequestType = "feedback"
)

var RequestTypes = []RequestType{
	TypeBuy,
	TypeSell,
	TypePartnership,
	TypeBoardNomination,
	TypeFeedback,
}

func (t RequestType) Valid() bool {
	for _, known := range RequestTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsFinancial reports whether requests of this type carry an amount.
func (t RequestType) IsFinancial() bool {
	return t == TypeBuy || t == TypeSell
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", apperrors.Validation("status", "unknown status "+raw)
	}
	return s, nil
}

// ParseRequestType validates a raw request type string.
func ParseRequestType(raw string) (RequestType, error) {
	t := RequestType(strings.TrimSpace(strings.ToLower(raw)))
	if !t.Valid() {
		return "", apperrors.Validation("type", "unknown request type "+raw)
	}
	return t, nil
}

// Request is one investor-initiated case.
type Request struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	RequestNumber string              `json:"request_number" db:"request_number"`
	InvestorID    uuid.UUID           `json:"investor_id" db:"investor_id"`
	Type          RequestType         `json:"type" db:"type"`
	Status        Status              `json:"status" db:"status"`
	Amount        decimal.NullDecimal `json:"amount" db:"amount"`
	Currency      *string             `json:"currency" db:"currency"`
	TargetPrice   decimal.NullDecimal `json:"target_price" db:"target_price"`
	ExpiryAt      *time.Time          `json:"expiry_at,omitempty" db:"expiry_at"`
	Notes         string              `json:"notes" db:"notes"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Validate checks the record-level invariants of a request.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.RequestNumber) == "" {
		return apperrors.Validation("request_number", "required")
	}
	if !r.Type.Valid() {
		return apperrors.Validation("type", "unknown request type "+string(r.Type))
	}
	if !r.Status.Valid() {
		return apperrors.Validation("status", "unknown status "+string(r.Status))
	}

	hasCurrency := r.Currency != nil && strings.TrimSpace(*r.Currency) != ""
	if r.Amount.Valid != hasCurrency {
		return apperrors.Validation("amount", "amount and currency must both be present or both be empty")
	}
	if !r.Type.IsFinancial() {
		if r.Amount.Valid || r.TargetPrice.Valid {
			return apperrors.Validation("amount", "only buy and sell requests carry amounts")
		}
		return nil
	}
	if r.Amount.Valid && r.Amount.Decimal.IsNegative() {
		return apperrors.Validation("amount", "must not be negative")
	}
	return nil
}

// OwnedBy reports whether the investor owns the request.
func (r *Request) OwnedBy(investorID uuid.UUID) bool {
	return r.InvestorID == investorID
}

// RequestEvent is the immutable record of one status transition.
// FromStatus is nil for the creation event, ActorID is nil for system actions.
type RequestEvent struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	RequestID  uuid.UUID  `json:"request_id" db:"request_id"`
	FromStatus *Status    `json:"from_status" db:"from_status"`
	ToStatus   Status     `json:"to_status" db:"to_status"`
	ActorID    *uuid.UUID `json:"actor_id" db:"actor_id"`
	Note       *string    `json:"note" db:"note"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// RequestComment is an internal staff note attached to a request.
type RequestComment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RequestID uuid.UUID `json:"request_id" db:"request_id"`
	ActorID   uuid.UUID `json:"actor_id" db:"actor_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TransitionInput describes one requested status change.
type TransitionInput struct {
	RequestID uuid.UUID
	ActorID   *uuid.UUID
	ToStatus  Status
	Note      string
	// ExpectedStatus is the status the caller observed; empty skips the check.
	ExpectedStatus Status
}

// TransitionResult is returned after a transition has been committed.
type TransitionResult struct {
	RequestID uuid.UUID     `json:"request_id"`
	Status    Status        `json:"status"`
	Event     *RequestEvent `json:"event"`
}
