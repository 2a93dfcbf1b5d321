package observability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups all Prometheus instruments used by the harness. They live on
// a private registry so repeated runs in one process (tests) never collide,
// and the registry is gathered into a text report at the end of a run.
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal       *prometheus.CounterVec
	TurnLatency      prometheus.Histogram
	StageTransitions *prometheus.CounterVec
	ScenarioFailures *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns attempted by scenario and outcome.",
		}, []string{"scenario", "outcome"}),
		TurnLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Round-trip latency of one turn in milliseconds.",
			Buckets:   []float64{50, 100, 200, 400, 800, 1500, 3000, 6000},
		}),
		StageTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Observed stage transitions by target stage.",
		}, []string{"stage"}),
		ScenarioFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_failures_total",
			Help:      "Scenario-level failures by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Milliseconds()))
}

// Report gathers the private registry into a plain-text block for the final
// console summary.
func (m *Metrics) Report() string {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Sprintf("metrics gather failed: %v", err)
	}

	var b strings.Builder
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := metric.GetLabel()
			parts := make([]string, 0, len(labels))
			for _, l := range labels {
				parts = append(parts, fmt.Sprintf("%s=%s", l.GetName(), l.GetValue()))
			}
			sort.Strings(parts)
			name := mf.GetName()
			if len(parts) > 0 {
				name += "{" + strings.Join(parts, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				fmt.Fprintf(&b, "%s %.0f\n", name, metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				if h.GetSampleCount() > 0 {
					fmt.Fprintf(&b, "%s count=%d avg_ms=%.1f\n",
						name, h.GetSampleCount(), h.GetSampleSum()/float64(h.GetSampleCount()))
				}
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
