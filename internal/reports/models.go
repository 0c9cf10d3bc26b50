package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"investor-desk/request-portal-backend/internal/requests"
)

// Columns is the stable column order of every tabular report format.
var Columns = []string{
	"request_number",
	"status",
	"type",
	"amount",
	"currency",
	"investor_email",
	"investor_name",
	"created_at",
}

// SourceRecord is a request joined with its investor's contact details.
type SourceRecord struct {
	requests.Request
	InvestorEmail string `db:"investor_email"`
	InvestorName  string `db:"investor_name"`
}

// ReportRow is one projected line of the request report.
type ReportRow struct {
	RequestNumber string               `json:"request_number"`
	Status        requests.Status      `json:"status"`
	Type          requests.RequestType `json:"type"`
	Amount        decimal.NullDecimal  `json:"amount"`
	Currency      *string              `json:"currency"`
	InvestorEmail string               `json:"investor_email"`
	InvestorName  string               `json:"investor_name"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Filters narrows the request report. Zero values mean "no constraint".
type Filters struct {
	From      *time.Time
	To        *time.Time
	Statuses  []requests.Status
	Type      *requests.RequestType
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal
}

// HasAmountBounds reports whether rows without an amount are excluded.
func (f Filters) HasAmountBounds() bool {
	return f.MinAmount.Valid || f.MaxAmount.Valid
}

// Describe renders the active constraints as one line for report headers.
func (f Filters) Describe() string {
	var parts []string
	if f.From != nil {
		parts = append(parts, "from "+f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		parts = append(parts, "to "+f.To.UTC().Format(time.RFC3339))
	}
	if len(f.Statuses) > 0 {
		names := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			names[i] = string(s)
		}
		parts = append(parts, "status "+strings.Join(names, ", "))
	}
	if f.Type != nil {
		parts = append(parts, "type "+string(*f.Type))
	}
	if f.MinAmount.Valid {
		parts = append(parts, "amount >= "+f.MinAmount.Decimal.String())
	}
	if f.MaxAmount.Valid {
		parts = append(parts, "amount <= "+f.MaxAmount.Decimal.String())
	}
	if len(parts) == 0 {
		return "All requests"
	}
	return strings.Join(parts, "; ")
}

// ReportResponse is the JSON body of a request report.
type ReportResponse struct {
	Rows        []ReportRow `json:"rows"`
	Count       int         `json:"count"`
	GeneratedAt time.Time   `json:"generated_at"`
}
