package fundamental

import (
	"errors"
	"math"
	"testing"

	"github.com/atuladas/finvar/internal/statement"
)

// fullTwoYearInputs builds income/balance/cashflow statements where both
// years are identical except for the latest year's operating cash flow, so
// every ratio-of-ratios sub-index lands at exactly 1.0 and TATA alone moves
// the composite score.
func fullTwoYearInputs(latestOCF float64) (income, balance, cashflow *statement.Statement) {
	income = buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:           {2023: 1000, 2022: 1000},
		statement.CostOfRevenue:     {2023: 600, 2022: 600},
		statement.SGAExpenses:       {2023: 100, 2022: 100},
		statement.DepreciationAmort: {2023: 50, 2022: 50},
		statement.NetIncome:         {2023: 100, 2022: 100},
	})
	balance = buildStatement(statement.TypeBalance, map[statement.LineItem]map[int]float64{
		statement.NetReceivables:       {2023: 150, 2022: 150},
		statement.CurrentAssets:        {2023: 400, 2022: 400},
		statement.PropertyPlantEquip:   {2023: 300, 2022: 300},
		statement.ShortTermInvestments: {2023: 50, 2022: 50},
		statement.TotalAssets:          {2023: 1000, 2022: 1000},
		statement.TotalDebt:            {2023: 400, 2022: 400},
	})
	cashflow = buildStatement(statement.TypeCashFlow, map[statement.LineItem]map[int]float64{
		statement.OperatingCashFlow: {2023: latestOCF, 2022: 100},
	})
	return income, balance, cashflow
}

func TestMScoreSubIndices(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:       {2023: 120, 2022: 100},
		statement.CostOfRevenue: {2023: 60, 2022: 50},
	})
	m, err := MScore("TEST", income, statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))
	if err != nil {
		t.Fatalf("MScore: %v", err)
	}

	if !m.SGI.Valid || math.Abs(m.SGI.Value-1.2) > 1e-9 {
		t.Errorf("SGI = %+v, want 1.2", m.SGI)
	}
	// Gross margin is 50% both years, so GMI is exactly 1.
	if !m.GMI.Valid || math.Abs(m.GMI.Value-1.0) > 1e-9 {
		t.Errorf("GMI = %+v, want 1.0", m.GMI)
	}
	// Balance data absent: DSRI and friends unavailable, so no composite.
	if m.DSRI.Valid {
		t.Error("DSRI should be unavailable without receivables")
	}
	if m.Score.Valid {
		t.Error("composite score should be unavailable when a sub-index is")
	}
	if m.Verdict != "" {
		t.Errorf("verdict = %q, want empty for unavailable score", m.Verdict)
	}
}

func TestMScoreVerdictThreshold(t *testing.T) {
	// Latest OCF of −100 gives TATA = 0.2 and a score of about −1.54,
	// above the −2.22 threshold.
	income, balance, cashflow := fullTwoYearInputs(-100)
	m, err := MScore("TEST", income, balance, cashflow)
	if err != nil {
		t.Fatalf("MScore: %v", err)
	}
	if !m.Score.Valid {
		t.Fatalf("score unavailable: %+v", m)
	}
	if math.Abs(m.TATA.Value-0.2) > 1e-9 {
		t.Errorf("TATA = %v, want 0.2", m.TATA.Value)
	}
	want := -4.84 + 0.920 + 0.528 + 0.404 + 0.892 + 0.115 - 0.172 - 0.327 + 4.679*0.2
	if math.Abs(m.Score.Value-want) > 1e-9 {
		t.Errorf("score = %v, want %v", m.Score.Value, want)
	}
	if m.Verdict != VerdictLikelyManipulator {
		t.Errorf("verdict = %q, want %q", m.Verdict, VerdictLikelyManipulator)
	}

	// Latest OCF of 300 gives TATA = −0.2 and a score around −3.42.
	income, balance, cashflow = fullTwoYearInputs(300)
	m, err = MScore("TEST", income, balance, cashflow)
	if err != nil {
		t.Fatalf("MScore: %v", err)
	}
	if m.Verdict != VerdictNotLikely {
		t.Errorf("verdict = %q, want %q", m.Verdict, VerdictNotLikely)
	}
}

func TestMScoreAllOnesSubIndices(t *testing.T) {
	income, balance, cashflow := fullTwoYearInputs(-100)
	m, err := MScore("TEST", income, balance, cashflow)
	if err != nil {
		t.Fatalf("MScore: %v", err)
	}
	for name, idx := range map[string]float64{
		"DSRI": m.DSRI.Value, "GMI": m.GMI.Value, "AQI": m.AQI.Value,
		"SGI": m.SGI.Value, "DEPI": m.DEPI.Value, "SGAI": m.SGAI.Value,
		"LVGI": m.LVGI.Value,
	} {
		if math.Abs(idx-1.0) > 1e-9 {
			t.Errorf("%s = %v, want 1.0 for identical years", name, idx)
		}
	}
	if m.LatestYear != 2023 || m.PriorYear != 2022 {
		t.Errorf("years = %d/%d, want 2023/2022", m.LatestYear, m.PriorYear)
	}
}

func TestMScoreInsufficientHistory(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue: {2023: 1000},
	})
	_, err := MScore("TEST", income, statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("got %v, want ErrInsufficientHistory", err)
	}

	_, err = MScore("TEST", statement.New(statement.TypeIncome), statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("empty input: got %v, want ErrInsufficientHistory", err)
	}
}
