package visibility

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records team resolution. A nil *Metrics is a no-op.
type Metrics struct {
	TeamsComputed   *prometheus.CounterVec
	TeamSize        *prometheus.HistogramVec
	DanglingTargets prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TeamsComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "performance_bonus_teams_computed_total",
			Help: "Teams resolved by actor role and mode",
		}, []string{"role", "mode"}),

		TeamSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "performance_bonus_team_size",
			Help:    "Number of members in a resolved team",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"mode"}),

		DanglingTargets: factory.NewCounter(prometheus.CounterOpts{
			Name: "performance_bonus_dangling_assignment_targets_total",
			Help: "Assignment targets skipped because the user does not exist",
		}),
	}
}

func (m *Metrics) ObserveTeam(role string, mode Mode, size int) {
	if m != nil {
		m.TeamsComputed.WithLabelValues(role, string(mode)).Inc()
		m.TeamSize.WithLabelValues(string(mode)).Observe(float64(size))
	}
}

func (m *Metrics) AddDangling(n int) {
	if m != nil && n > 0 {
		m.DanglingTargets.Add(float64(n))
	}
}
