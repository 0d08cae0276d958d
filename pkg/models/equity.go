// Package models defines the core data structures used throughout FinVAR.
package models

import "time"

// CompanyProfile holds descriptive company data as reported by a provider.
// Numeric fields are pointers because providers routinely omit them; a nil
// value means "not reported", which is distinct from zero.
type CompanyProfile struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Exchange    string   `json:"exchange,omitempty"`
	Sector      string   `json:"sector,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Country     string   `json:"country,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	PrevClose   *float64 `json:"prev_close,omitempty"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
	TrailingPE  *float64 `json:"trailing_pe,omitempty"`
	TrailingEPS *float64 `json:"trailing_eps,omitempty"`
	Beta        *float64 `json:"beta,omitempty"`
}

// Float returns a pointer to v, for populating optional profile fields.
func Float(v float64) *float64 { return &v }

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close,omitempty"`
}

// EquityQuote represents a delayed or end-of-day quote.
type EquityQuote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	PrevClose float64   `json:"prev_close"`
	Volume    int64     `json:"volume,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceStats summarizes recent price behavior for the dashboard header.
type PriceStats struct {
	Symbol               string  `json:"symbol"`
	Last                 float64 `json:"last"`
	PrevClose            float64 `json:"prev_close"`
	Change               float64 `json:"change"`
	ChangePct            float64 `json:"change_pct"`
	AnnualizedVolatility Metric  `json:"annualized_volatility"`
	Bars                 int     `json:"bars"`
}
