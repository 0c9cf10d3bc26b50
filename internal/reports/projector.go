package reports

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/reports/export"
	"investor-desk/request-portal-backend/internal/requests"
)

// ParseFilters reads from, to, status, type, minAmount and maxAmount.
// Unknown statuses or types, malformed values and inverted ranges are
// validation failures.
func ParseFilters(q url.Values) (Filters, error) {
	var f Filters

	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := strings.TrimSpace(q.Get(bound.key))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Filters{}, apperrors.Validation(bound.key, "expected an RFC 3339 timestamp")
		}
		t = t.UTC()
		*bound.dest = &t
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return Filters{}, apperrors.Validation("from", "must not be after to")
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" && !strings.EqualFold(raw, "all") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, err := requests.ParseStatus(part)
			if err != nil {
				return Filters{}, err
			}
			if !slices.Contains(f.Statuses, status) {
				f.Statuses = append(f.Statuses, status)
			}
		}
	}

	if raw := strings.TrimSpace(q.Get("type")); raw != "" && !strings.EqualFold(raw, "all") {
		t, err := requests.ParseRequestType(raw)
		if err != nil {
			return Filters{}, err
		}
		f.Type = &t
	}

	for _, bound := range []struct {
		key  string
		dest *decimal.NullDecimal
	}{{"minAmount", &f.MinAmount}, {"maxAmount", &f.MaxAmount}} {
		raw := strings.TrimSpace(q.Get(bound.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Filters{}, apperrors.Validation(bound.key, "expected a decimal number")
		}
		*bound.dest = decimal.NewNullDecimal(d)
	}
	if f.MinAmount.Valid && f.MaxAmount.Valid && f.MinAmount.Decimal.GreaterThan(f.MaxAmount.Decimal) {
		return Filters{}, apperrors.Validation("minAmount", "must not be greater than maxAmount")
	}

	return f, nil
}

// Project filters records and maps them to report rows, keeping input order.
func Project(records []SourceRecord, f Filters) []ReportRow {
	rows := make([]ReportRow, 0, len(records))
	for _, r := range records {
		if !f.matches(r) {
			continue
		}
		rows = append(rows, ReportRow{
			RequestNumber: r.RequestNumber,
			Status:        r.Status,
			Type:          r.Type,
			Amount:        r.Amount,
			Currency:      r.Currency,
			InvestorEmail: r.InvestorEmail,
			InvestorName:  r.InvestorName,
			CreatedAt:     r.CreatedAt,
		})
	}
	return rows
}

func (f Filters) matches(r SourceRecord) bool {
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.HasAmountBounds() {
		if !r.Amount.Valid {
			return false
		}
		if f.MinAmount.Valid && r.Amount.Decimal.LessThan(f.MinAmount.Decimal) {
			return false
		}
		if f.MaxAmount.Valid && r.Amount.Decimal.GreaterThan(f.MaxAmount.Decimal) {
			return false
		}
	}
	return true
}

// Table renders rows with the stable column order shared by CSV, XLSX and PDF.
func Table(rows []ReportRow, filters Filters, generatedAt time.Time) export.Table {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		amount := ""
		if r.Amount.Valid {
			amount = r.Amount.Decimal.String()
		}
		currency := ""
		if r.Currency != nil {
			currency = *r.Currency
		}
		cells = append(cells, []string{
			r.RequestNumber,
			string(r.Status),
			string(r.Type),
			amount,
			currency,
			r.InvestorEmail,
			r.InvestorName,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Table{
		Title:       "Investor requests",
		Subtitle:    filters.Describe(),
		Columns:     Columns,
		Rows:        cells,
		GeneratedAt: generatedAt,
	}
}
