package valuta

import (
	"time"
)

// Converter answers rate queries from the last persisted rate document.
type Converter struct {
	Store *RatesStore
	// Now returns the current time, time.Now by default.
	Now func() time.Time
}

// NewConverter returns a Converter reading from store.
func NewConverter(store *RatesStore) *Converter {
	return &Converter{Store: store, Now: time.Now}
}

func (c *Converter) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Rate returns how many units of dst one unit of src is worth.
func (c *Converter) Rate(src, dst string) (float64, error) {
	src, dst = NormalizeCode(src), NormalizeCode(dst)
	if src == "" || dst == "" {
		return 0, validationf("currency codes must not be empty")
	}
	doc, err := c.Store.ReadCurrent()
	if err != nil {
		return 0, err
	}
	from, ok := doc.Rates[src]
	if !ok || from <= 0 {
		return 0, &CurrencyNotFoundError{Code: src}
	}
	to, ok := doc.Rates[dst]
	if !ok {
		return 0, &CurrencyNotFoundError{Code: dst}
	}
	if src == dst {
		return 1, nil
	}
	return to / from, nil
}

// Age returns the time elapsed since the last update.
func (c *Converter) Age() (time.Duration, error) {
	doc, err := c.Store.ReadCurrent()
	if err != nil {
		return 0, err
	}
	return c.now().Sub(doc.UpdatedAt), nil
}

// Expired reports whether the rate document is older than its TTL. A document
// exactly TTL old is still fresh.
func (c *Converter) Expired() (bool, error) {
	doc, err := c.Store.ReadCurrent()
	if err != nil {
		return false, err
	}
	return c.now().Sub(doc.UpdatedAt) > doc.TTL(), nil
}
