package gateway

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relwatch/relwatch/models"
)

// Metrics holds the Prometheus instruments exported on /metrics.
type Metrics struct {
	ChecksTotal     *prometheus.CounterVec
	AlertsSent      prometheus.Counter
	AlertsFailed    prometheus.Counter
	SweepsTotal     prometheus.Counter
	SweepDuration   prometheus.Histogram
	WebhookTriggers prometheus.Counter
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the process-wide metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "relwatch_checks_total",
				Help: "Repository checks by terminal status",
			}, []string{"status"}),
			AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "relwatch_alerts_sent_total",
				Help: "Alerts delivered on at least one channel",
			}),
			AlertsFailed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "relwatch_alerts_failed_total",
				Help: "Alerts that failed on every attempted channel",
			}),
			SweepsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "relwatch_sweeps_total",
				Help: "Full check sweeps over all monitored repositories",
			}),
			SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "relwatch_sweep_duration_seconds",
				Help:    "Wall time of a full check sweep",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			WebhookTriggers: promauto.NewCounter(prometheus.CounterOpts{
				Name: "relwatch_webhook_triggers_total",
				Help: "Checks triggered by incoming platform webhooks",
			}),
		}
	})
	return metricsInstance
}

// RecordOutcome folds one check outcome into the counters.
func (m *Metrics) RecordOutcome(o models.CheckOutcome) {
	m.ChecksTotal.WithLabelValues(string(o.Status)).Inc()
	switch o.Status {
	case models.StatusAlertSent:
		m.AlertsSent.Inc()
	case models.StatusAlertFailed:
		m.AlertsFailed.Inc()
	}
}

// RecordSweep folds a whole sweep into the counters.
func (m *Metrics) RecordSweep(summary models.CheckSummary, elapsed time.Duration) {
	m.SweepsTotal.Inc()
	m.SweepDuration.Observe(elapsed.Seconds())
	for _, o := range summary.Outcomes {
		m.RecordOutcome(o)
	}
}
