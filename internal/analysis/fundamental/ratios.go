// Package fundamental computes profitability, solvency, liquidity, growth
// and earnings-quality metrics from normalized financial statements. All
// functions are pure: same statements in, same frame out. Missing inputs and
// zero denominators surface as unavailable metrics, never as NaN or a panic.
package fundamental

import (
	"math"

	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

// div builds a ratio metric from two lookups. Unavailable when either side
// is missing or the denominator is zero.
func div(num float64, numOK bool, den float64, denOK bool) models.Metric {
	if !numOK || !denOK || den == 0 {
		return models.Metric{}
	}
	return models.NewMetric(num / den)
}

// scale multiplies an available metric, typically to express it in percent.
func scale(m models.Metric, factor float64) models.Metric {
	if !m.Valid {
		return m
	}
	return models.NewMetric(m.Value * factor)
}

// Ratios computes the per-year ratio table plus year-over-year growth for
// the given normalized statements. Years missing a given input simply carry
// an unavailable metric for the ratios that need it.
func Ratios(symbol string, income, balance, cashflow *statement.Statement) *models.RatioFrame {
	frame := &models.RatioFrame{Symbol: symbol}

	for _, year := range unionYears(income, balance, cashflow) {
		frame.Years = append(frame.Years, yearRatios(year, income, balance, cashflow))
	}

	frame.RevenueGrowthYoY = growthYoY(income, statement.Revenue)
	frame.EBITDAGrowthYoY = growthYoY(income, statement.EBITDA)
	frame.NetIncomeGrowthYoY = growthYoY(income, statement.NetIncome)
	frame.OCFGrowthYoY = growthYoY(cashflow, statement.OperatingCashFlow)

	return frame
}

func yearRatios(year int, income, balance, cashflow *statement.Statement) models.YearRatios {
	revenue, hasRevenue := income.Value(statement.Revenue, year)
	netIncome, hasNetIncome := income.Value(statement.NetIncome, year)
	grossProfit, hasGrossProfit := income.Value(statement.GrossProfit, year)
	assets, hasAssets := balance.Value(statement.TotalAssets, year)
	equity, hasEquity := balance.Value(statement.TotalEquity, year)
	liabilities, hasLiabilities := balance.Value(statement.TotalLiabilities, year)
	currAssets, hasCurrAssets := balance.Value(statement.CurrentAssets, year)
	currLiabilities, hasCurrLiabilities := balance.Value(statement.CurrentLiabilities, year)
	ocf, hasOCF := cashflow.Value(statement.OperatingCashFlow, year)
	capex, hasCapex := cashflow.Value(statement.CapitalExpenditure, year)
	dividends, hasDividends := cashflow.Value(statement.CashDividendsPaid, year)

	r := models.YearRatios{Year: year}

	r.ROE = assessROE(scale(div(netIncome, hasNetIncome, equity, hasEquity), 100))
	r.GrossMargin = assessGrossMargin(scale(div(grossProfit, hasGrossProfit, revenue, hasRevenue), 100))
	r.NetMargin = assessNetMargin(scale(div(netIncome, hasNetIncome, revenue, hasRevenue), 100))

	r.AssetTurnover = assessAssetTurnover(div(revenue, hasRevenue, assets, hasAssets))
	r.Leverage = div(assets, hasAssets, equity, hasEquity)

	r.DebtToEquity = assessDebtToEquity(div(liabilities, hasLiabilities, equity, hasEquity))
	r.DebtToAssets = assessDebtToAssets(div(liabilities, hasLiabilities, assets, hasAssets))
	r.CurrentRatio = assessCurrentRatio(div(currAssets, hasCurrAssets, currLiabilities, hasCurrLiabilities))

	if hasOCF && hasCapex {
		fcf := ocf - capex
		r.FreeCashFlow = assessFCF(models.NewMetric(fcf))
		r.FCFToRevenue = scale(div(fcf, true, revenue, hasRevenue), 100)
	}
	if hasCapex {
		r.CapEx = models.NewMetric(capex)
	}

	// Payout uses the magnitude of dividends: cash flow statements report
	// them as negative outflows.
	if hasDividends && hasNetIncome && netIncome != 0 {
		payout := math.Abs(dividends) / netIncome * 100
		r.DividendPayout = models.NewMetric(payout)
		if r.DividendPayout.Valid {
			r.RetentionRate = models.NewMetric(100 - payout)
		}
	}

	return r
}

// growthYoY computes (current − previous) / previous × 100 over the two most
// recent years that both report the item; the years need not be adjacent.
func growthYoY(s *statement.Statement, item statement.LineItem) models.Metric {
	years := s.YearsWith(item)
	if len(years) < 2 {
		return models.Metric{}
	}
	cur, _ := s.Value(item, years[0])
	prev, _ := s.Value(item, years[1])
	if prev == 0 {
		return models.Metric{}
	}
	return assessGrowth(models.NewMetric((cur - prev) / prev * 100))
}

func unionYears(stmts ...*statement.Statement) []int {
	seen := make(map[int]bool)
	var years []int
	for _, s := range stmts {
		for _, y := range s.Years() {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	// Insertion sort keeps the slice ascending; year counts are tiny.
	for i := 1; i < len(years); i++ {
		for j := i; j > 0 && years[j] < years[j-1]; j-- {
			years[j], years[j-1] = years[j-1], years[j]
		}
	}
	return years
}

// --- Assessment labels ---

func assessROE(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value > 15 {
		return m.Assess("strong")
	}
	return m.Assess("modest")
}

func assessGrossMargin(m models.Metric) models.Metric {
	switch {
	case !m.Valid:
		return m
	case m.Value > 40:
		return m.Assess("excellent")
	case m.Value > 20:
		return m.Assess("moderate")
	default:
		return m.Assess("weak")
	}
}

func assessNetMargin(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value > 10 {
		return m.Assess("healthy")
	}
	return m.Assess("thin")
}

func assessAssetTurnover(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value > 1 {
		return m.Assess("efficient")
	}
	return m.Assess("inefficient")
}

func assessDebtToEquity(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value < 1 {
		return m.Assess("healthy")
	}
	return m.Assess("elevated")
}

func assessDebtToAssets(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value < 0.5 {
		return m.Assess("low")
	}
	return m.Assess("high")
}

func assessCurrentRatio(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value >= 1.5 {
		return m.Assess("strong")
	}
	return m.Assess("tight")
}

func assessFCF(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value > 0 {
		return m.Assess("positive")
	}
	return m.Assess("negative")
}

func assessGrowth(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	if m.Value > 10 {
		return m.Assess("strong")
	}
	return m.Assess("modest")
}
