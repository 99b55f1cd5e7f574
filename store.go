package valuta

import (
	"fmt"
	"maps"
	"time"
)

// RatesStore persists the current rate document and its append-only history.
type RatesStore struct {
	current *JSONFile
	history *JSONFile

	// Now returns the update timestamp, time.Now by default.
	Now func() time.Time
}

// NewRatesStore returns a store writing the current document at ratesPath and the
// history at historyPath.
func NewRatesStore(ratesPath, historyPath string, cache *FileCache) *RatesStore {
	return &RatesStore{
		current: &JSONFile{Path: ratesPath, Cache: cache},
		history: &JSONFile{Path: historyPath, Cache: cache},
		Now:     time.Now,
	}
}

// WriteRates replaces the current document and appends one entry to the history.
func (s *RatesStore) WriteRates(base string, ttlSeconds int, rates RateTable, errs []string) error {
	now := s.Now().UTC()
	if errs == nil {
		errs = []string{}
	}
	doc := RatesDocument{
		Base:        base,
		UpdatedAt:   now,
		LastRefresh: now,
		TTLSeconds:  ttlSeconds,
		Rates:       maps.Clone(rates),
		Errors:      errs,
	}
	if err := s.current.WriteAtomic(doc); err != nil {
		return err
	}

	history, err := s.ReadHistory()
	if err != nil {
		return err
	}
	history = append(history, HistoryEntry{
		UpdatedAt: now,
		Base:      base,
		Rates:     doc.Rates,
		Errors:    errs,
	})
	return s.history.WriteAtomic(history)
}

// ReadCurrent returns the last written document. It fails with an error wrapping
// ErrNotFound when no update has ever run.
func (s *RatesStore) ReadCurrent() (*RatesDocument, error) {
	var doc RatesDocument
	ok, err := s.current.Read(&doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s does not exist, run update-rates first", ErrNotFound, s.current.Path)
	}
	if doc.Rates == nil {
		doc.Rates = RateTable{}
	}
	return &doc, nil
}

// ReadHistory returns every entry appended so far, oldest first.
func (s *RatesStore) ReadHistory() ([]HistoryEntry, error) {
	var history []HistoryEntry
	if _, err := s.history.Read(&history); err != nil {
		return nil, err
	}
	return history, nil
}
