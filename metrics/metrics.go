// Package metrics records rate update runs as Prometheus metrics, exported to a
// node exporter textfile since vth is not a long running process.
package metrics

import (
	"time"

	"github.com/etnz/valuta"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is a valuta.UpdateObserver.
type Collector struct {
	Registry *prometheus.Registry

	SourceRequestsTotal *prometheus.CounterVec
	SourceDuration      *prometheus.HistogramVec
	SourceRates         *prometheus.GaugeVec

	RunsTotal        *prometheus.CounterVec
	RatesCount       prometheus.Gauge
	LastSuccessEpoch prometheus.Gauge
}

// New returns a Collector registering its metrics in a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		Registry: reg,
		SourceRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "valuta_source_requests_total",
			Help: "Rate source calls by source and outcome",
		}, []string{"source", "outcome"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "valuta_source_request_duration_seconds",
			Help:    "Duration of rate source calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		SourceRates: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "valuta_source_rates",
			Help: "Rates returned by the last call of each source",
		}, []string{"source"}),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "valuta_update_runs_total",
			Help: "Update runs by outcome: ok, partial or failed",
		}, []string{"outcome"}),
		RatesCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "valuta_rates",
			Help: "Currencies in the last persisted rate table",
		}),
		LastSuccessEpoch: f.NewGauge(prometheus.GaugeOpts{
			Name: "valuta_last_update_timestamp_seconds",
			Help: "Unix time of the last persisted update",
		}),
	}
}

// SourceDone implements valuta.UpdateObserver.
func (c *Collector) SourceDone(source string, rates int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else {
		c.SourceRates.WithLabelValues(source).Set(float64(rates))
	}
	c.SourceRequestsTotal.WithLabelValues(source, outcome).Inc()
	c.SourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RunDone implements valuta.UpdateObserver.
func (c *Collector) RunDone(result valuta.UpdateResult, err error) {
	switch {
	case err != nil:
		c.RunsTotal.WithLabelValues("failed").Inc()
		return
	case len(result.Errors) > 0:
		c.RunsTotal.WithLabelValues("partial").Inc()
	default:
		c.RunsTotal.WithLabelValues("ok").Inc()
	}
	c.RatesCount.Set(float64(result.RatesCount))
	c.LastSuccessEpoch.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Registry)
}
