package models

// Prediction is the output of the EPS regression model for one ticker.
type Prediction struct {
	Symbol       string    `json:"symbol"`
	PredictedEPS float64   `json:"predicted_eps"`
	TrailingEPS  *float64  `json:"trailing_eps,omitempty"`
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
	Rescaled     bool      `json:"rescaled,omitempty"` // inputs looked like raw dollars and were scaled to millions
	Warnings     []string  `json:"warnings,omitempty"`
}
