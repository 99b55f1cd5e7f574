package renderer

import (
	"fmt"
	"time"

	"github.com/etnz/valuta"
)

// Valuation is the view of a portfolio valued in a base currency.
type Valuation struct {
	Username string
	Base     string
	Rows     []ValuationRow
	Total    valuta.Money
}

// ValuationRow is one wallet of a Valuation.
type ValuationRow struct {
	Currency string
	Balance  valuta.Money
	Rate     float64
	Value    valuta.Money
}

// NewValuation builds the view of p valued in base. total is the portfolio value
// already computed by the caller, rate gives the rate shown on each row.
func NewValuation(p *valuta.Portfolio, base string, total float64, rate valuta.RateFunc) (*Valuation, error) {
	if rate == nil && len(p.Currencies()) > 0 {
		return nil, fmt.Errorf("%w: a rate provider is required", valuta.ErrValidation)
	}
	base = valuta.NormalizeCode(base)
	if base == "" {
		base = valuta.DefaultBase
	}
	v := &Valuation{Username: p.Username(), Base: base, Total: valuta.M(total, base)}
	for _, w := range p.Wallets() {
		r, err := rate(w.Currency(), base)
		if err != nil {
			return nil, fmt.Errorf("cannot value %s wallet: %w", w.Currency(), err)
		}
		v.Rows = append(v.Rows, ValuationRow{
			Currency: w.Currency(),
			Balance:  w.Money(),
			Rate:     r,
			Value:    w.Money().Convert(r, base),
		})
	}
	return v, nil
}

// Rates is the view of the current rate document.
type Rates struct {
	Base       string
	UpdatedAt  time.Time
	TTL        time.Duration
	Expired    bool
	HistoryLen int
	Rows       []RateRow
	Errors     []string
}

// RateRow is one currency of Rates.
type RateRow struct {
	Currency string
	Rate     float64 // units per one base
	Inverse  float64 // base per one unit
}

// NewRates builds the view of doc. The base currency is not listed.
func NewRates(doc *valuta.RatesDocument, expired bool, historyLen int) *Rates {
	r := &Rates{
		Base:       doc.Base,
		UpdatedAt:  doc.UpdatedAt.UTC(),
		TTL:        doc.TTL(),
		Expired:    expired,
		HistoryLen: historyLen,
		Errors:     doc.Errors,
	}
	for _, code := range doc.Rates.Codes() {
		rate := doc.Rates[code]
		if code == doc.Base || rate <= 0 {
			continue
		}
		r.Rows = append(r.Rows, RateRow{Currency: code, Rate: rate, Inverse: 1 / rate})
	}
	return r
}
