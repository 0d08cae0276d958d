package models

// YearRatios holds the ratio set computed for one fiscal year.
type YearRatios struct {
	Year int `json:"year"`

	// Profitability (percentages).
	ROE         Metric `json:"roe"`
	GrossMargin Metric `json:"gross_margin"`
	NetMargin   Metric `json:"net_margin"`

	// DuPont components.
	AssetTurnover Metric `json:"asset_turnover"`
	Leverage      Metric `json:"leverage"`

	// Solvency and liquidity.
	DebtToEquity Metric `json:"debt_to_equity"`
	DebtToAssets Metric `json:"debt_to_assets"`
	CurrentRatio Metric `json:"current_ratio"`

	// Cash flow (FreeCashFlow and CapEx in reporting currency).
	FreeCashFlow Metric `json:"free_cash_flow"`
	CapEx        Metric `json:"capex"`
	FCFToRevenue Metric `json:"fcf_to_revenue"`

	// Shareholder returns (percentages).
	DividendPayout Metric `json:"dividend_payout"`
	RetentionRate  Metric `json:"retention_rate"`
}

// RatioFrame is the full multi-year ratio table plus year-over-year growth
// computed from the two most recent years that report each line item.
type RatioFrame struct {
	Symbol string       `json:"symbol"`
	Years  []YearRatios `json:"years"` // ascending by fiscal year

	RevenueGrowthYoY   Metric `json:"revenue_growth_yoy"`
	EBITDAGrowthYoY    Metric `json:"ebitda_growth_yoy"`
	NetIncomeGrowthYoY Metric `json:"net_income_growth_yoy"`
	OCFGrowthYoY       Metric `json:"ocf_growth_yoy"`
}

// Latest returns the most recent year's ratios, or nil when the frame is
// empty.
func (f *RatioFrame) Latest() *YearRatios {
	if len(f.Years) == 0 {
		return nil
	}
	return &f.Years[len(f.Years)-1]
}

// MScore holds the Beneish M-Score and its eight sub-indices, computed from
// the two most recent fiscal years. Sub-indices with missing inputs are
// unavailable, and the composite score is only available when all eight are.
type MScore struct {
	Symbol     string `json:"symbol"`
	LatestYear int    `json:"latest_year"`
	PriorYear  int    `json:"prior_year"`

	DSRI Metric `json:"dsri"`
	GMI  Metric `json:"gmi"`
	AQI  Metric `json:"aqi"`
	SGI  Metric `json:"sgi"`
	DEPI Metric `json:"depi"`
	SGAI Metric `json:"sgai"`
	LVGI Metric `json:"lvgi"`
	TATA Metric `json:"tata"`

	Score   Metric `json:"score"`
	Verdict string `json:"verdict,omitempty"`
}
