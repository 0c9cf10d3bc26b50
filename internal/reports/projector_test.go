package reports

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/requests"
)

var reportBase = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func record(number string, status requests.Status, kind requests.RequestType, amount string, created time.Time) SourceRecord {
	r := SourceRecord{
		Request: requests.Request{
			ID:            uuid.New(),
			RequestNumber: number,
			InvestorID:    uuid.New(),
			Type:          kind,
			Status:        status,
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		InvestorEmail: number + "@example.com",
		InvestorName:  "Investor " + number,
	}
	if amount != "" {
		currency := "USD"
		r.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
		r.Currency = &currency
	}
	return r
}

func fixtureRecords() []SourceRecord {
	return []SourceRecord{
		record("INV-0004", requests.StatusApproved, requests.TypeBuy, "5000.00", reportBase.Add(3*time.Hour)),
		record("INV-0003", requests.StatusSubmitted, requests.TypeFeedback, "", reportBase.Add(2*time.Hour)),
		record("INV-0002", requests.StatusApproved, requests.TypeSell, "120.5", reportBase.Add(time.Hour)),
		record("INV-0001", requests.StatusRejected, requests.TypeBuy, "75", reportBase),
	}
}

func numbers(rows []ReportRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.RequestNumber)
	}
	return out
}

func TestParseFilters(t *testing.T) {
	q := url.Values{}
	q.Set("from", "2025-05-01T12:00:00Z")
	q.Set("to", "2025-05-01T14:00:00+00:00")
	q.Set("status", "approved, rejected,approved")
	q.Set("type", "buy")
	q.Set("minAmount", "100")
	q.Set("maxAmount", "6000")

	f, err := ParseFilters(q)

	require.NoError(t, err)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.From.Equal(reportBase))
	assert.Equal(t, []requests.Status{requests.StatusApproved, requests.StatusRejected}, f.Statuses)
	require.NotNil(t, f.Type)
	assert.Equal(t, requests.TypeBuy, *f.Type)
	assert.True(t, f.MinAmount.Decimal.Equal(decimal.NewFromInt(100)))
	assert.True(t, f.HasAmountBounds())
}

func TestParseFiltersAllMeansUnconstrained(t *testing.T) {
	f, err := ParseFilters(url.Values{"status": {"all"}, "type": {"ALL"}})

	require.NoError(t, err)
	assert.Empty(t, f.Statuses)
	assert.Nil(t, f.Type)
	assert.False(t, f.HasAmountBounds())
}

func TestParseFiltersRejectsBadInput(t *testing.T) {
	cases := map[string]url.Values{
		"inverted dates":   {"from": {"2025-06-01T00:00:00Z"}, "to": {"2025-05-01T00:00:00Z"}},
		"malformed date":   {"from": {"yesterday"}},
		"unknown status":   {"status": {"approved,archived"}},
		"unknown type":     {"type": {"swap"}},
		"malformed amount": {"minAmount": {"ten"}},
		"inverted amounts": {"minAmount": {"500"}, "maxAmount": {"100"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilters(q)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestProjectWithoutFiltersKeepsOrder(t *testing.T) {
	rows := Project(fixtureRecords(), Filters{})

	assert.Equal(t, []string{"INV-0004", "INV-0003", "INV-0002", "INV-0001"}, numbers(rows))
	assert.Equal(t, "INV-0004@example.com", rows[0].InvestorEmail)
	assert.False(t, rows[1].Amount.Valid)
}

func TestProjectAppliesEachFilter(t *testing.T) {
	approved := []requests.Status{requests.StatusApproved}
	buy := requests.TypeBuy
	from := reportBase.Add(time.Hour)
	to := reportBase.Add(2 * time.Hour)

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"status", Filters{Statuses: approved}, []string{"INV-0004", "INV-0002"}},
		{"type", Filters{Type: &buy}, []string{"INV-0004", "INV-0001"}},
		{"inclusive window", Filters{From: &from, To: &to}, []string{"INV-0003", "INV-0002"}},
		{"min excludes null amounts", Filters{MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(100))}, []string{"INV-0004", "INV-0002"}},
		{"max bound inclusive", Filters{MaxAmount: decimal.NewNullDecimal(decimal.RequireFromString("120.50"))}, []string{"INV-0002", "INV-0001"}},
		{"combined", Filters{Statuses: approved, Type: &buy}, []string{"INV-0004"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbers(Project(fixtureRecords(), tt.filters)))
		})
	}
}

func TestProjectEmpty(t *testing.T) {
	rows := Project(nil, Filters{})
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestTableFormatsCells(t *testing.T) {
	rows := Project(fixtureRecords(), Filters{})
	table := Table(rows, Filters{}, reportBase)

	assert.Equal(t, Columns, table.Columns)
	assert.Equal(t, "All requests", table.Subtitle)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{
		"INV-0004", "approved", "buy", "5000", "USD",
		"INV-0004@example.com", "Investor INV-0004", "2025-05-01T15:00:00Z",
	}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][3])
	assert.Equal(t, "", table.Rows[1][4])
	assert.Equal(t, "120.5", table.Rows[2][3])
}

func TestTableSubtitleDescribesFilters(t *testing.T) {
	filters, err := ParseFilters(url.Values{
		"from":      {"2025-05-01T00:00:00Z"},
		"status":    {"approved,settling"},
		"type":      {"buy"},
		"minAmount": {"100"},
	})
	require.NoError(t, err)

	table := Table(Project(fixtureRecords(), filters), filters, reportBase)

	assert.Equal(t, "from 2025-05-01T00:00:00Z; status approved, settling; type buy; amount >= 100", table.Subtitle)
}
