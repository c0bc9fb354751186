// Package metrics exposes run progress over Prometheus for long generation
// jobs. The collector owns its registry, so tests and embedding processes do
// not collide on the default one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks committed transactions and step progress.
type Collector struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	amounts      prometheus.Histogram
	currentStep  prometheus.Gauge
}

// NewCollector builds a collector backed by a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		transactions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "amlgen_transactions_total",
			Help: "Committed transactions by type and fraud label",
		}, []string{"type", "fraud"}),
		amounts: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "amlgen_transaction_amount",
			Help:    "Distribution of committed transaction amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		}),
		currentStep: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "amlgen_current_step",
			Help: "Last completed simulation step",
		}),
	}
}

// RecordTransaction counts one committed transaction.
func (c *Collector) RecordTransaction(txType string, amount float64, fraud bool) {
	label := "false"
	if fraud {
		label = "true"
	}
	c.transactions.WithLabelValues(txType, label).Inc()
	c.amounts.Observe(amount)
}

// SetStep records the last completed step.
func (c *Collector) SetStep(step int64) {
	c.currentStep.Set(float64(step))
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
