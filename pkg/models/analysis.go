package models

import "time"

// SectionError describes why one dashboard section could not be produced.
// Kind is a stable machine-readable category; Message is for display.
type SectionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Section error kinds.
const (
	ErrKindDataUnavailable     = "data_unavailable"
	ErrKindProviderError       = "provider_error"
	ErrKindRateLimited         = "rate_limited"
	ErrKindInsufficientHistory = "insufficient_history"
	ErrKindPredictionFailed    = "prediction_failed"
)

// CompanyAnalysis aggregates every dashboard section for one ticker. Each
// section carries either data or its own error; a failure in one section
// never blanks out the others.
type CompanyAnalysis struct {
	Symbol      string    `json:"symbol"`
	Provider    string    `json:"provider"`
	GeneratedAt time.Time `json:"generated_at"`

	Profile    *CompanyProfile `json:"profile,omitempty"`
	ProfileErr *SectionError   `json:"profile_error,omitempty"`

	Price    *PriceStats   `json:"price,omitempty"`
	PriceErr *SectionError `json:"price_error,omitempty"`

	Ratios    *RatioFrame   `json:"ratios,omitempty"`
	RatiosErr *SectionError `json:"ratios_error,omitempty"`

	MScore    *MScore       `json:"mscore,omitempty"`
	MScoreErr *SectionError `json:"mscore_error,omitempty"`

	Prediction    *Prediction   `json:"prediction,omitempty"`
	PredictionErr *SectionError `json:"prediction_error,omitempty"`

	News    []NewsItem    `json:"news,omitempty"`
	NewsErr *SectionError `json:"news_error,omitempty"`
}
