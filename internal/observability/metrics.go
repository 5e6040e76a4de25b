package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Recomputes        *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	ContactsByBand    *prometheus.GaugeVec
	AlertsSent        prometheus.Counter
	EventSubscribers  prometheus.Gauge
	SweepRuns         *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Recomputes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Warmth recomputes by outcome.",
		}, []string{"outcome"}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_ms",
			Help:      "End-to-end recompute latency in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		ContactsByBand: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contacts_by_band",
			Help:      "Contacts currently in each warmth band.",
		}, []string{"band"}),
		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmth_alerts_sent_total",
			Help:      "Cooling alerts sent for watched contacts.",
		}),
		EventSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_subscribers",
			Help:      "Connected snapshot event stream subscribers.",
		}),
		SweepRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Background sweep runs by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRecompute(outcome string, d time.Duration) {
	m.Recomputes.WithLabelValues(outcome).Inc()
	m.RecomputeDuration.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
