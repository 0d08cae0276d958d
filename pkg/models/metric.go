package models

import "math"

// Metric is a computed financial figure that may be unavailable. When the
// inputs for a metric are missing from the source statements, or a
// denominator is zero, Valid is false and Value must be ignored. This keeps
// "couldn't compute" distinct from a genuine zero.
type Metric struct {
	Value      float64 `json:"value"`
	Valid      bool    `json:"valid"`
	Assessment string  `json:"assessment,omitempty"`
}

// NewMetric returns an available metric, demoting NaN or Inf inputs to
// unavailable so they never leak into JSON output.
func NewMetric(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// Assess attaches a qualitative label and returns the metric. Unavailable
// metrics stay unlabeled.
func (m Metric) Assess(label string) Metric {
	if m.Valid {
		m.Assessment = label
	}
	return m
}
