package valuta

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"
)

// RateTable maps a currency code to the number of units of that currency worth one
// unit of the base currency. The base itself is always 1.
type RateTable map[string]float64

// Codes returns the table's currency codes in alphabetical order.
func (t RateTable) Codes() []string {
	return slices.Sorted(maps.Keys(t))
}

// RatesDocument is the content of rates.json: the last merged rate table.
type RatesDocument struct {
	Base        string    `json:"base"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastRefresh time.Time `json:"lastRefresh"`
	TTLSeconds  int       `json:"ttlSeconds"`
	Rates       RateTable `json:"rates"`
	Errors      []string  `json:"errors"`
}

// TTL returns the freshness window of the document.
func (d *RatesDocument) TTL() time.Duration {
	return time.Duration(d.TTLSeconds) * time.Second
}

// HistoryEntry is an immutable snapshot appended to the rate history on every update.
type HistoryEntry struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Base      string    `json:"base"`
	Rates     RateTable `json:"rates"`
	Errors    []string  `json:"errors"`
}

// RateSource fetches a partial rate table from one upstream provider.
//
// A source either returns its whole result or fails with an *APIRequestError; a
// source with nothing to fetch returns an empty table.
type RateSource interface {
	Name() string
	FetchRates(ctx context.Context) (RateTable, error)
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
