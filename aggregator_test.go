package valuta

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeSource is a RateSource returning a fixed table or error.
type fakeSource struct {
	name  string
	rates RateTable
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchRates(context.Context) (RateTable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

type recordingObserver struct {
	sources []string
	runs    []UpdateResult
}

func (r *recordingObserver) SourceDone(source string, _ int, _ time.Duration, _ error) {
	r.sources = append(r.sources, source)
}

func (r *recordingObserver) RunDone(result UpdateResult, _ error) {
	r.runs = append(r.runs, result)
}

func TestAggregator_MergesSources(t *testing.T) {
	store := newTestStore(t, testUpdate)
	agg := &Aggregator{
		Sources: []RateSource{
			&fakeSource{name: "CoinGecko", rates: RateTable{"BTC": 50000}},
			&fakeSource{name: "ExchangeRate-API", rates: RateTable{"EUR": 0.9}},
		},
		Store:      store,
		Base:       "usd",
		TTLSeconds: 3600,
	}
	result, err := agg.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.RatesCount != 3 || len(result.Errors) != 0 {
		t.Errorf("Run() = %+v, want 3 rates and no error", result)
	}

	doc, err := store.ReadCurrent()
	if err != nil {
		t.Fatal(err)
	}
	want := RateTable{"USD": 1, "BTC": 50000, "EUR": 0.9}
	if diff := cmp.Diff(want, doc.Rates); diff != "" {
		t.Errorf("persisted rates mismatch (-want +got):\n%s", diff)
	}
	if doc.Base != "USD" || doc.TTLSeconds != 3600 {
		t.Errorf("persisted base/ttl = %s/%d, want USD/3600", doc.Base, doc.TTLSeconds)
	}

	got, err := NewConverter(store).Rate("EUR", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if want := 1 / 0.9; got != want {
		t.Errorf("Rate(EUR, USD) = %v, want %v", got, want)
	}
}

func TestAggregator_PartialFailure(t *testing.T) {
	store := newTestStore(t, testUpdate)
	failing := &fakeSource{name: "CoinGecko", err: &APIRequestError{Source: "CoinGecko", Cause: errors.New("status 503")}}
	working := &fakeSource{name: "ExchangeRate-API", rates: RateTable{"EUR": 0.9, "RUB": 92}}
	obs := &recordingObserver{}
	agg := &Aggregator{
		Sources:  []RateSource{failing, working},
		Store:    store,
		Base:     "USD",
		Observer: obs,
	}

	result, err := agg.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.RatesCount != 3 {
		t.Errorf("RatesCount = %d, want 3", result.RatesCount)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "CoinGecko request failed: status 503" {
		t.Errorf("Errors = %q, want the single CoinGecko failure", result.Errors)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls = %d/%d, want every source called once", failing.calls, working.calls)
	}
	if !cmp.Equal(obs.sources, []string{"CoinGecko", "ExchangeRate-API"}) || len(obs.runs) != 1 {
		t.Errorf("observer saw sources %v and %d runs", obs.sources, len(obs.runs))
	}

	doc, _ := store.ReadCurrent()
	if !cmp.Equal(doc.Errors, result.Errors) {
		t.Errorf("persisted errors = %q, want %q", doc.Errors, result.Errors)
	}
	if doc.Rates["EUR"] != 0.9 {
		t.Errorf("persisted EUR = %v, want 0.9", doc.Rates["EUR"])
	}
}

func TestAggregator_PlainErrorIsAttributed(t *testing.T) {
	agg := &Aggregator{
		Sources: []RateSource{&fakeSource{name: "CoinGecko", err: errors.New("boom")}},
		Store:   newTestStore(t, testUpdate),
		Base:    "USD",
	}
	result, err := agg.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"CoinGecko request failed: boom"}; !cmp.Equal(result.Errors, want) {
		t.Errorf("Errors = %q, want %q", result.Errors, want)
	}
	if result.RatesCount != 1 {
		t.Errorf("RatesCount = %d, want 1 (base only)", result.RatesCount)
	}
}

func TestAggregator_LastSourceWins(t *testing.T) {
	store := newTestStore(t, testUpdate)
	agg := &Aggregator{
		Sources: []RateSource{
			&fakeSource{name: "first", rates: RateTable{"USDT": 1.01, "EUR": 0.8}},
			&fakeSource{name: "second", rates: RateTable{"usdt": 0.99, "USD": 7}},
		},
		Store: store,
		Base:  "USD",
	}
	if _, err := agg.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	doc, _ := store.ReadCurrent()
	want := RateTable{"USD": 1, "USDT": 0.99, "EUR": 0.8}
	if diff := cmp.Diff(want, doc.Rates); diff != "" {
		t.Errorf("merged rates mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_HistoryGrowsEveryRun(t *testing.T) {
	store := newTestStore(t, testUpdate)
	flaky := &fakeSource{name: "flaky"}
	agg := &Aggregator{Sources: []RateSource{flaky}, Store: store, Base: "USD"}

	const runs = 5
	for i := range runs {
		flaky.err = nil
		flaky.rates = RateTable{"EUR": 0.9}
		if i%2 == 1 {
			flaky.err = errors.New("timeout")
		}
		if _, err := agg.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	history, err := store.ReadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != runs {
		t.Errorf("len(history) = %d, want %d", len(history), runs)
	}
}
