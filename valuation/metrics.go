package valuation

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the engine's Prometheus collectors.
type Metrics struct {
	FlowsValued  *prometheus.CounterVec
	FlowDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlowsValued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cashflowrisk",
				Name:      "flows_valued_total",
				Help:      "Flows evaluated, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		FlowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cashflowrisk",
				Name:      "flow_valuation_seconds",
				Help:      "Time to construct and evaluate one flow.",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"kind"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cashflowrisk",
				Name:      "valuation_runs_total",
				Help:      "Valuation runs, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.FlowsValued, m.FlowDuration, m.Runs)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
