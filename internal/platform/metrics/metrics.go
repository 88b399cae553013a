package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa las métricas de la app. Todos los métodos aceptan receptor nil.
type Metrics struct {
	ReportsAppended         *prometheus.CounterVec
	PhotoRelocationFailures prometheus.Counter
	SummaryDuration         prometheus.Histogram
	UnfedCats               prometheus.Gauge
	RosterCache             *prometheus.CounterVec
	ClassifierCalls         *prometheus.CounterVec
}

// New registra las métricas en reg (cada router usa su propio registry).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReportsAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catsupport_reports_appended_total",
			Help: "Total reports appended, by outcome",
		}, []string{"outcome"}), // outcome: "ok", "error"

		PhotoRelocationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "catsupport_photo_relocation_failures_total",
			Help: "Urgent photos kept inline because blob storage failed",
		}),

		SummaryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "catsupport_summary_duration_seconds",
			Help:    "Duration of daily summary computation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		UnfedCats: f.NewGauge(prometheus.GaugeOpts{
			Name: "catsupport_unfed_cats",
			Help: "Unfed cats in the most recently computed summary",
		}),

		RosterCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catsupport_roster_cache_total",
			Help: "Roster cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		ClassifierCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catsupport_classifier_calls_total",
			Help: "Photo classifier calls by operation and outcome",
		}, []string{"op", "outcome"}),
	}
}

func (m *Metrics) IncReportsAppended(outcome string) {
	if m != nil {
		m.ReportsAppended.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncPhotoRelocationFailures() {
	if m != nil {
		m.PhotoRelocationFailures.Inc()
	}
}

func (m *Metrics) ObserveSummary(d time.Duration, unfed int) {
	if m != nil {
		m.SummaryDuration.Observe(d.Seconds())
		m.UnfedCats.Set(float64(unfed))
	}
}

func (m *Metrics) IncRosterCache(result string) {
	if m != nil {
		m.RosterCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncClassifierCall(op, outcome string) {
	if m != nil {
		m.ClassifierCalls.WithLabelValues(op, outcome).Inc()
	}
}
