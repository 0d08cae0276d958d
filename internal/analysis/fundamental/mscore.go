package fundamental

import (
	"errors"

	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

// ErrInsufficientHistory is returned when fewer than two fiscal years with
// the required fields are available, which is distinct from individual line
// items being unavailable within an otherwise computable pair of years.
var ErrInsufficientHistory = errors.New("insufficient history: at least two fiscal years required")

// Beneish M-Score composition. Weights from Beneish (1999).
const (
	mScoreIntercept = -4.84
	weightDSRI      = 0.920
	weightGMI       = 0.528
	weightAQI       = 0.404
	weightSGI       = 0.892
	weightDEPI      = 0.115
	weightSGAI      = -0.172
	weightTATA      = 4.679
	weightLVGI      = -0.327

	// Scores above this threshold suggest likely earnings manipulation.
	mScoreThreshold = -2.22
)

const (
	VerdictLikelyManipulator = "likely manipulator"
	VerdictNotLikely         = "not likely"
)

// MScore computes the Beneish M-Score from the two most recent fiscal years
// that report revenue. Sub-indices with missing inputs come back unavailable,
// and the composite score is only available when all eight sub-indices are.
func MScore(symbol string, income, balance, cashflow *statement.Statement) (*models.MScore, error) {
	years := income.YearsWith(statement.Revenue)
	if len(years) < 2 {
		return nil, ErrInsufficientHistory
	}
	t, p := years[0], years[1]

	m := &models.MScore{Symbol: symbol, LatestYear: t, PriorYear: p}

	m.DSRI = indexOfRatios(
		lookup(balance, statement.NetReceivables, t), lookup(income, statement.Revenue, t),
		lookup(balance, statement.NetReceivables, p), lookup(income, statement.Revenue, p),
	)
	m.GMI = gmi(income, t, p)
	m.AQI = aqi(balance, t, p)
	m.SGI = ratioMetric(lookup(income, statement.Revenue, t), lookup(income, statement.Revenue, p))
	m.DEPI = depi(income, balance, t, p)
	m.SGAI = indexOfRatios(
		lookup(income, statement.SGAExpenses, t), lookup(income, statement.Revenue, t),
		lookup(income, statement.SGAExpenses, p), lookup(income, statement.Revenue, p),
	)
	m.LVGI = indexOfRatios(
		lookup(balance, statement.TotalDebt, t), lookup(balance, statement.TotalAssets, t),
		lookup(balance, statement.TotalDebt, p), lookup(balance, statement.TotalAssets, p),
	)
	m.TATA = tata(income, cashflow, balance, t)

	m.Score = compose(m)
	if m.Score.Valid {
		if m.Score.Value > mScoreThreshold {
			m.Verdict = VerdictLikelyManipulator
		} else {
			m.Verdict = VerdictNotLikely
		}
	}
	return m, nil
}

// value pairs a lookup result with its presence flag so sub-index helpers
// can propagate missingness without repeating the two-return dance.
type value struct {
	v  float64
	ok bool
}

func lookup(s *statement.Statement, item statement.LineItem, year int) value {
	v, ok := s.Value(item, year)
	return value{v, ok}
}

// ratioMetric computes num/den with missing/zero-denominator propagation.
func ratioMetric(num, den value) models.Metric {
	return div(num.v, num.ok, den.v, den.ok)
}

// indexOfRatios computes (n_t/d_t) / (n_p/d_p), the shape shared by DSRI,
// SGAI and LVGI.
func indexOfRatios(nt, dt, np, dp value) models.Metric {
	cur := ratioMetric(nt, dt)
	prior := ratioMetric(np, dp)
	return div(cur.Value, cur.Valid, prior.Value, prior.Valid)
}

// gmi is the prior year's gross margin over the latest year's, where gross
// margin = (sales − cogs) / sales.
func gmi(income *statement.Statement, t, p int) models.Metric {
	cur := grossMarginRatio(income, t)
	prior := grossMarginRatio(income, p)
	return div(prior.Value, prior.Valid, cur.Value, cur.Valid)
}

func grossMarginRatio(income *statement.Statement, year int) models.Metric {
	sales := lookup(income, statement.Revenue, year)
	cogs := lookup(income, statement.CostOfRevenue, year)
	if !sales.ok || !cogs.ok || sales.v == 0 {
		return models.Metric{}
	}
	return models.NewMetric((sales.v - cogs.v) / sales.v)
}

// aqi is the asset-quality index: the non-current, non-PPE share of total
// assets in the latest year over the prior year.
func aqi(balance *statement.Statement, t, p int) models.Metric {
	cur := assetQuality(balance, t)
	prior := assetQuality(balance, p)
	return div(cur.Value, cur.Valid, prior.Value, prior.Valid)
}

func assetQuality(balance *statement.Statement, year int) models.Metric {
	ca := lookup(balance, statement.CurrentAssets, year)
	ppe := lookup(balance, statement.PropertyPlantEquip, year)
	sec := lookup(balance, statement.ShortTermInvestments, year)
	ta := lookup(balance, statement.TotalAssets, year)
	if !ca.ok || !ppe.ok || !sec.ok || !ta.ok || ta.v == 0 {
		return models.Metric{}
	}
	return models.NewMetric(1 - (ca.v+ppe.v+sec.v)/ta.v)
}

// depi is the prior year's depreciation rate over the latest year's, where
// the rate = depreciation / (depreciation + net PPE).
func depi(income, balance *statement.Statement, t, p int) models.Metric {
	cur := depreciationRate(income, balance, t)
	prior := depreciationRate(income, balance, p)
	return div(prior.Value, prior.Valid, cur.Value, cur.Valid)
}

func depreciationRate(income, balance *statement.Statement, year int) models.Metric {
	dep := lookup(income, statement.DepreciationAmort, year)
	ppe := lookup(balance, statement.PropertyPlantEquip, year)
	if !dep.ok || !ppe.ok || dep.v+ppe.v == 0 {
		return models.Metric{}
	}
	return models.NewMetric(dep.v / (dep.v + ppe.v))
}

// tata is total accruals to total assets for the latest year.
func tata(income, cashflow, balance *statement.Statement, t int) models.Metric {
	ni := lookup(income, statement.NetIncome, t)
	ocf := lookup(cashflow, statement.OperatingCashFlow, t)
	ta := lookup(balance, statement.TotalAssets, t)
	if !ni.ok || !ocf.ok {
		return models.Metric{}
	}
	return div(ni.v-ocf.v, true, ta.v, ta.ok)
}

func compose(m *models.MScore) models.Metric {
	parts := []models.Metric{m.DSRI, m.GMI, m.AQI, m.SGI, m.DEPI, m.SGAI, m.LVGI, m.TATA}
	for _, part := range parts {
		if !part.Valid {
			return models.Metric{}
		}
	}
	score := mScoreIntercept +
		weightDSRI*m.DSRI.Value +
		weightGMI*m.GMI.Value +
		weightAQI*m.AQI.Value +
		weightSGI*m.SGI.Value +
		weightDEPI*m.DEPI.Value +
		weightSGAI*m.SGAI.Value +
		weightTATA*m.TATA.Value +
		weightLVGI*m.LVGI.Value
	return models.NewMetric(score)
}
