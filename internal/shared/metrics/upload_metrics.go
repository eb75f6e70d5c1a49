package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

const (
	OutcomeResponse       = "response"
	OutcomeTransportError = "transport_error"

	ReloadOK      = "ok"
	ReloadError   = "error"
	ReloadSkipped = "skipped"
)

// UploadMetrics records submissions. It is an upload observer.
type UploadMetrics struct {
	started  prometheus.Counter
	settled  *prometheus.CounterVec
	duration prometheus.Histogram
	reloads  *prometheus.CounterVec
	inFlight prometheus.Gauge
}

// NewUploadMetrics registers the collectors on reg.
func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	f := promauto.With(reg)
	return &UploadMetrics{
		started: f.NewCounter(prometheus.CounterOpts{
			Name: "imagetrigger_uploads_started_total",
			Help: "Total number of uploads started by a file selection.",
		}),
		settled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imagetrigger_uploads_settled_total",
			Help: "Total number of settled uploads by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "imagetrigger_upload_duration_seconds",
			Help:    "Time from selection to settlement in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "imagetrigger_reloads_total",
			Help: "Total number of page reloads after an upload by outcome.",
		}, []string{"outcome"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "imagetrigger_uploads_in_flight",
			Help: "Uploads started but not yet settled.",
		}),
	}
}

func (m *UploadMetrics) Started(domain.Submission) {
	m.started.Inc()
	m.inFlight.Inc()
}

func (m *UploadMetrics) Settled(s domain.Settlement) {
	m.inFlight.Dec()
	m.duration.Observe(s.Duration.Seconds())

	if !s.Responded() {
		m.settled.WithLabelValues(OutcomeTransportError).Inc()
		m.reloads.WithLabelValues(ReloadSkipped).Inc()
		return
	}

	m.settled.WithLabelValues(OutcomeResponse).Inc()
	switch {
	case !s.Reloaded:
		m.reloads.WithLabelValues(ReloadSkipped).Inc()
	case s.ReloadErr != nil:
		m.reloads.WithLabelValues(ReloadError).Inc()
	default:
		m.reloads.WithLabelValues(ReloadOK).Inc()
	}
}
