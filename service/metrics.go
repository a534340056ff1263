package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the analysis pipeline collectors. A nil *Metrics records
// nothing.
//
//   - workguard_analyses_total{status}
//   - workguard_degradations_total{stage}
//   - workguard_analysis_duration_seconds
//   - workguard_risky_sentences
type Metrics struct {
	Analyses       *prometheus.CounterVec
	Degradations   *prometheus.CounterVec
	Duration       prometheus.Histogram
	RiskySentences prometheus.Histogram
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workguard_analyses_total",
				Help: "Total number of contract analyses by result status",
			},
			[]string{"status"},
		),
		Degradations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workguard_degradations_total",
				Help: "Total number of pipeline stages that fell back to a degraded path",
			},
			[]string{"stage"}, // "embedding", "summary", "surface", "scatter3d", "mesh3d"
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "workguard_analysis_duration_seconds",
			Help:    "Duration of a full contract analysis in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RiskySentences: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "workguard_risky_sentences",
			Help:    "Number of risky sentences found per analyzed contract",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Analyses, m.Degradations, m.Duration, m.RiskySentences)
	}
	return m
}

func (m *Metrics) observe(status string, risky int, took time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(status).Inc()
	m.Duration.Observe(took.Seconds())
	if status == "success" {
		m.RiskySentences.Observe(float64(risky))
	}
}

func (m *Metrics) degraded(stage string) {
	if m == nil {
		return
	}
	m.Degradations.WithLabelValues(stage).Inc()
}
