package bonus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for bonus allocation. A nil *Metrics is a
// no-op.
type Metrics struct {
	AutoAllocations *prometheus.CounterVec
	DraftsSaved     *prometheus.CounterVec
	StaleWrites     prometheus.Counter
	RosterLatency   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AutoAllocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "performance_bonus_auto_allocations_total",
			Help: "Auto-allocation runs by result",
		}, []string{"result"}), // result: "computed" or a no-op reason

		DraftsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "performance_bonus_drafts_saved_total",
			Help: "Allocation drafts saved by status and budget state",
		}, []string{"status", "exceeded"}),

		StaleWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "performance_bonus_stale_draft_writes_total",
			Help: "Draft saves rejected because the stored version moved on",
		}),

		RosterLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "performance_bonus_roster_duration_seconds",
			Help:    "Time to load sources and build a scored roster",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementAutoAllocation(o Outcome) {
	if m == nil {
		return
	}
	result := "computed"
	if !o.Computed() {
		result = string(o.NoOp)
	}
	m.AutoAllocations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementSaved(status string, exceeded bool) {
	if m != nil {
		m.DraftsSaved.WithLabelValues(status, strconv.FormatBool(exceeded)).Inc()
	}
}

func (m *Metrics) IncrementStale() {
	if m != nil {
		m.StaleWrites.Inc()
	}
}

func (m *Metrics) ObserveRoster(d time.Duration) {
	if m != nil {
		m.RosterLatency.Observe(d.Seconds())
	}
}
