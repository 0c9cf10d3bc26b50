package dashboard

import (
	"context"
	"net/url"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/reports"
	"investor-desk/request-portal-backend/internal/requests"
)

// RecordSource loads the request snapshot to summarize.
type RecordSource interface {
	ListRecords(ctx context.Context, from, to *time.Time) ([]reports.SourceRecord, error)
}

// Summary is the request pipeline at a glance.
type Summary struct {
	Total        int                          `json:"total"`
	ByStatus     map[requests.Status]int      `json:"by_status"`
	ByType       map[requests.RequestType]int `json:"by_type"`
	Open         int                          `json:"open"`
	AmountByCcy  []CurrencyTotal              `json:"amount_by_currency"`
	OldestOpenAt *time.Time                   `json:"oldest_open_at,omitempty"`
	ComputedAt   time.Time                    `json:"computed_at"`
}

// CurrencyTotal sums request amounts in one currency.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// AggregatorConfig configures summary caching.
type AggregatorConfig struct {
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultAggregatorConfig returns default configuration
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{CacheTTL: time.Minute}
}

// Aggregator computes and caches request summaries.
type Aggregator struct {
	source RecordSource
	cache  *Cache[*Summary]
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(source RecordSource, logger *zap.Logger, config AggregatorConfig) *Aggregator {
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultAggregatorConfig().CacheTTL
	}
	return &Aggregator{
		source: source,
		cache:  NewCache[*Summary](config.CacheTTL),
		logger: logger,
		now:    time.Now,
	}
}

// GetSummary summarizes the requests matching filters. rawQuery is the
// cache key; equal queries share one cached result until it expires. The
// shared computation outlives the caller that started it.
func (a *Aggregator) GetSummary(ctx context.Context, rawQuery url.Values) (*Summary, error) {
	filters, err := reports.ParseFilters(rawQuery)
	if err != nil {
		return nil, err
	}

	shared := context.WithoutCancel(ctx)
	return a.cache.GetOrSet(rawQuery.Encode(), func() (*Summary, error) {
		records, err := a.source.ListRecords(shared, filters.From, filters.To)
		if err != nil {
			a.logger.Error("Failed to load records for summary", zap.Error(err))
			return nil, err
		}
		return Summarize(reports.Project(records, filters), a.now().UTC()), nil
	})
}

// Invalidate drops every cached summary.
func (a *Aggregator) Invalidate() {
	a.cache.Clear()
}

// Stats returns the summary cache counters.
func (a *Aggregator) Stats() CacheStats {
	return a.cache.Stats()
}

// Stop releases the cache's background goroutine.
func (a *Aggregator) Stop() {
	a.cache.Stop()
}

// Summarize folds projected rows into a Summary. Currency totals are sorted
// by currency code; rows without an amount only count toward the tallies.
func Summarize(rows []reports.ReportRow, computedAt time.Time) *Summary {
	summary := &Summary{
		Total:      len(rows),
		ByStatus:   make(map[requests.Status]int),
		ByType:     make(map[requests.RequestType]int),
		ComputedAt: computedAt,
	}
	totals := make(map[string]*CurrencyTotal)

	for _, row := range rows {
		summary.ByStatus[row.Status]++
		summary.ByType[row.Type]++

		if !requests.IsTerminal(row.Status) {
			summary.Open++
			if summary.OldestOpenAt == nil || row.CreatedAt.Before(*summary.OldestOpenAt) {
				created := row.CreatedAt
				summary.OldestOpenAt = &created
			}
		}

		if !row.Amount.Valid {
			continue
		}
		ccy := ""
		if row.Currency != nil {
			ccy = *row.Currency
		}
		total, ok := totals[ccy]
		if !ok {
			total = &CurrencyTotal{Currency: ccy}
			totals[ccy] = total
		}
		total.Count++
		total.Amount = total.Amount.Add(row.Amount.Decimal)
	}

	summary.AmountByCcy = make([]CurrencyTotal, 0, len(totals))
	for _, total := range totals {
		summary.AmountByCcy = append(summary.AmountByCcy, *total)
	}
	slices.SortFunc(summary.AmountByCcy, func(a, b CurrencyTotal) int {
		switch {
		case a.Currency < b.Currency:
			return -1
		case a.Currency > b.Currency:
			return 1
		}
		return 0
	})
	return summary
}
