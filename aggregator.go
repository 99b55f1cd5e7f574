package valuta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// UpdateObserver is notified of each source call and of the outcome of an update run.
type UpdateObserver interface {
	SourceDone(source string, rates int, elapsed time.Duration, err error)
	RunDone(result UpdateResult, err error)
}

// UpdateResult summarizes one update run.
type UpdateResult struct {
	// RatesCount is the number of distinct currencies in the merged table, base included.
	RatesCount int
	// Errors holds one message per failed source, in source order.
	Errors []string
}

// Aggregator polls every source in order, merges their tables and persists the
// result in Store.
type Aggregator struct {
	Sources    []RateSource
	Store      *RatesStore
	Base       string
	TTLSeconds int

	Logger   *slog.Logger   // defaults to slog.Default()
	Observer UpdateObserver // optional
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Run performs one update. A later source overrides an earlier one on the same
// code. Source failures are collected in the result; the returned error only
// reports a failure to persist the merged table.
func (a *Aggregator) Run(ctx context.Context) (UpdateResult, error) {
	base := NormalizeCode(a.Base)
	if base == "" {
		base = DefaultBase
	}
	log := a.logger()

	merged := RateTable{base: 1}
	errs := []string{}
	for _, src := range a.Sources {
		start := time.Now()
		rates, err := src.FetchRates(ctx)
		elapsed := time.Since(start)
		if a.Observer != nil {
			a.Observer.SourceDone(src.Name(), len(rates), elapsed, err)
		}
		if err != nil {
			var apiErr *APIRequestError
			if !errors.As(err, &apiErr) {
				err = &APIRequestError{Source: src.Name(), Cause: err}
			}
			log.Warn("rate source failed", "source", src.Name(), "error", err, "elapsed", elapsed)
			errs = append(errs, err.Error())
			continue
		}
		log.Debug("rate source fetched", "source", src.Name(), "rates", len(rates), "elapsed", elapsed)
		for code, rate := range rates {
			merged[NormalizeCode(code)] = rate
		}
	}
	merged[base] = 1

	result := UpdateResult{RatesCount: len(merged), Errors: errs}
	err := a.Store.WriteRates(base, a.TTLSeconds, merged, errs)
	if err != nil {
		err = fmt.Errorf("cannot save rates: %w", err)
	}
	if a.Observer != nil {
		a.Observer.RunDone(result, err)
	}
	if err != nil {
		return result, err
	}
	log.Info("rates updated", "base", base, "rates", result.RatesCount, "errors", len(errs))
	return result, nil
}
