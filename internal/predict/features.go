// Package predict builds the EPS feature vector and runs it through the
// regression model artifact loaded at startup.
package predict

import (
	"fmt"
	"math"

	"github.com/atuladas/finvar/internal/statement"
)

// FeatureNames lists the model's inputs in wire order. The order is part of
// the model artifact contract and must not change without retraining.
var FeatureNames = []string{
	"eps",
	"eps_avg",
	"roe",
	"npm",
	"opmad_to_npm",
	"revenue_avg",
	"intcov_per_curr",
	"revenue_growth",
	"roa_to_revenue",
	"intcov_ratio",
}

// NumFeatures is the fixed width of the feature vector.
const NumFeatures = 10

// FeatureConfig tunes the unit-rescale heuristic. Providers are inconsistent
// about reporting in dollars versus thousands or millions; values past these
// thresholds are assumed to be mis-scaled and divided by the matching
// factor. The thresholds are heuristic guesses carried over from the trained
// model's data preparation, hence configurable rather than hard-coded.
type FeatureConfig struct {
	EPSRescaleThreshold     float64
	EPSRescaleFactor        float64
	RevenueRescaleThreshold float64
	RevenueRescaleFactor    float64
}

// DefaultFeatureConfig returns the thresholds the model was trained with.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		EPSRescaleThreshold:     1000,
		EPSRescaleFactor:        1000,
		RevenueRescaleThreshold: 1e7,
		RevenueRescaleFactor:    1e6,
	}
}

// Inputs carries everything the feature builder reads. TrailingEPS is nil
// when the provider did not report it.
type Inputs struct {
	TrailingEPS *float64
	Income      *statement.Statement
	Balance     *statement.Statement
}

// clipRange is a hard [min, max] clamp applied to a feature before the
// model sees it.
type clipRange struct{ min, max float64 }

var clips = map[string]clipRange{
	"npm":             {-1, 1},
	"opmad_to_npm":    {-2, 2},
	"roa":             {-1, 1},
	"roe":             {-2, 2},
	"intcov_ratio":    {0, 100},
	"curr_ratio":      {0, 10},
	"intcov_per_curr": {0, 100},
	"roa_to_revenue":  {-1, 1},
	"revenue_growth":  {-1, 1},
}

// BuildFeatures assembles the 10-feature vector from a company's trailing
// EPS and its two most recent fiscal years of statements. Missing inputs
// flow through as NaN and are zeroed in the final sanitize pass, so the
// result is always finite and model-ready. The boolean reports whether the
// unit-rescale heuristic fired.
func BuildFeatures(in Inputs, cfg FeatureConfig) ([]float64, bool) {
	eps := math.NaN()
	if in.TrailingEPS != nil {
		eps = *in.TrailingEPS
	}

	year, hasYear := latestYear(in.Income)
	revenue := itemOrNaN(in.Income, statement.Revenue, year, hasYear)
	netIncome := itemOrNaN(in.Income, statement.NetIncome, year, hasYear)
	opIncome := itemOrNaN(in.Income, statement.OperatingIncome, year, hasYear)
	interest := itemOrNaN(in.Income, statement.InterestExpense, year, hasYear)
	assets := itemOrNaN(in.Balance, statement.TotalAssets, year, hasYear)
	equity := itemOrNaN(in.Balance, statement.TotalEquity, year, hasYear)
	currAssets := itemOrNaN(in.Balance, statement.CurrentAssets, year, hasYear)
	currLiab := itemOrNaN(in.Balance, statement.CurrentLiabilities, year, hasYear)

	prevRevenue := previousValue(in.Income, statement.Revenue)
	revenueAvg := trailingAverage(in.Income, statement.Revenue, 3)
	epsAvg := averageEPSProxy(eps, in.Income)

	// Unit-rescale heuristic: EPS reported in the thousands, or revenue in
	// raw currency units, means the provider skipped the usual scaling
	// convention for this symbol. Every monetary statement value moves by
	// the same factor so the ratio features are unaffected; only the level
	// features (eps, eps_avg, revenue_avg) change.
	rescaled := false
	if !math.IsNaN(eps) && eps > cfg.EPSRescaleThreshold {
		eps /= cfg.EPSRescaleFactor
		epsAvg /= cfg.EPSRescaleFactor
		rescaled = true
	}
	if !math.IsNaN(revenue) && revenue > cfg.RevenueRescaleThreshold {
		for _, v := range []*float64{
			&revenue, &prevRevenue, &revenueAvg,
			&netIncome, &opIncome, &interest,
			&assets, &equity, &currAssets, &currLiab,
		} {
			*v /= cfg.RevenueRescaleFactor
		}
		rescaled = true
	}

	npm := clip("npm", netIncome/revenue)
	opmad := opIncome / revenue
	roa := clip("roa", netIncome/assets)
	roe := clip("roe", netIncome/equity)
	intcov := clip("intcov_ratio", opIncome/interest)
	curr := clip("curr_ratio", currAssets/currLiab)

	features := []float64{
		eps,
		epsAvg,
		roe,
		npm,
		clip("opmad_to_npm", opmad/npm),
		revenueAvg,
		clip("intcov_per_curr", intcov/curr),
		clip("revenue_growth", (revenue-prevRevenue)/prevRevenue),
		clip("roa_to_revenue", roa/revenue),
		intcov,
	}

	// Zero out anything a missing or zero denominator produced.
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			features[i] = 0
		}
	}
	return features, rescaled
}

// implausibleEPS bounds a credible per-share prediction. Outputs beyond it
// almost always mean mis-scaled inputs rather than a real forecast.
const implausibleEPS = 1000

// AdvisoryWarnings screens a model output against the trailing EPS for
// degenerate predictions: negative while the company currently earns, or a
// magnitude no per-share figure plausibly reaches. The prediction is still
// returned; these only annotate it.
func AdvisoryWarnings(predicted float64, trailing *float64) []string {
	var warnings []string
	if trailing != nil && *trailing > 0 && predicted < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"predicted EPS %.2f is negative while trailing EPS is %.2f", predicted, *trailing))
	}
	if math.Abs(predicted) > implausibleEPS {
		warnings = append(warnings, fmt.Sprintf(
			"predicted EPS %.2f is implausibly large; inputs may be mis-scaled", predicted))
	}
	return warnings
}

func clip(name string, v float64) float64 {
	r, ok := clips[name]
	if !ok || math.IsNaN(v) {
		return v
	}
	if v < r.min {
		return r.min
	}
	if v > r.max {
		return r.max
	}
	return v
}

func latestYear(s *statement.Statement) (int, bool) {
	years := s.Years()
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

func itemOrNaN(s *statement.Statement, item statement.LineItem, year int, hasYear bool) float64 {
	if !hasYear {
		return math.NaN()
	}
	v, ok := s.Value(item, year)
	if !ok {
		return math.NaN()
	}
	return v
}

// previousValue returns the second most recent reported value for item.
func previousValue(s *statement.Statement, item statement.LineItem) float64 {
	years := s.YearsWith(item)
	if len(years) < 2 {
		return math.NaN()
	}
	v, _ := s.Value(item, years[1])
	return v
}

// trailingAverage averages the item's n most recent reported values.
func trailingAverage(s *statement.Statement, item statement.LineItem, n int) float64 {
	years := s.YearsWith(item)
	if len(years) == 0 {
		return math.NaN()
	}
	if len(years) > n {
		years = years[:n]
	}
	var sum float64
	for _, y := range years {
		v, _ := s.Value(item, y)
		sum += v
	}
	return sum / float64(len(years))
}

// averageEPSProxy estimates a trailing 3-year EPS average by scaling the
// current EPS with the net-income trend, which assumes a roughly constant
// share count. Without usable net-income history it falls back to the
// current EPS.
func averageEPSProxy(eps float64, income *statement.Statement) float64 {
	if math.IsNaN(eps) {
		return math.NaN()
	}
	years := income.YearsWith(statement.NetIncome)
	if len(years) < 2 {
		return eps
	}
	if len(years) > 3 {
		years = years[:3]
	}
	latest, _ := income.Value(statement.NetIncome, years[0])
	if latest == 0 {
		return eps
	}
	var sum float64
	for _, y := range years {
		v, _ := income.Value(statement.NetIncome, y)
		sum += v
	}
	return eps * (sum / float64(len(years))) / latest
}
