package fundamental

import (
	"math"
	"reflect"
	"testing"

	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

func buildStatement(t statement.Type, values map[statement.LineItem]map[int]float64) *statement.Statement {
	s := statement.New(t)
	for item, byYear := range values {
		for year, v := range byYear {
			s.Set(item, year, v)
		}
	}
	return s
}

func TestRatiosBasicYear(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:   {2023: 1000},
		statement.NetIncome: {2023: 100},
	})
	balance := buildStatement(statement.TypeBalance, map[statement.LineItem]map[int]float64{
		statement.TotalAssets: {2023: 2000},
		statement.TotalEquity: {2023: 500},
	})
	cashflow := statement.New(statement.TypeCashFlow)

	frame := Ratios("TEST", income, balance, cashflow)
	if len(frame.Years) != 1 {
		t.Fatalf("got %d years, want 1", len(frame.Years))
	}
	y := frame.Years[0]

	if !y.ROE.Valid || y.ROE.Value != 20.0 {
		t.Errorf("ROE = %+v, want 20.0", y.ROE)
	}
	if !y.AssetTurnover.Valid || y.AssetTurnover.Value != 0.5 {
		t.Errorf("AssetTurnover = %+v, want 0.5", y.AssetTurnover)
	}
	if !y.Leverage.Valid || y.Leverage.Value != 4.0 {
		t.Errorf("Leverage = %+v, want 4.0", y.Leverage)
	}
	if y.ROE.Assessment != "strong" {
		t.Errorf("ROE assessment = %q, want strong", y.ROE.Assessment)
	}
}

func TestRatiosMissingDenominator(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:   {2023: 1000},
		statement.NetIncome: {2023: 100},
	})
	// Balance reports current assets but not current liabilities.
	balance := buildStatement(statement.TypeBalance, map[statement.LineItem]map[int]float64{
		statement.TotalAssets:   {2023: 2000},
		statement.TotalEquity:   {2023: 500},
		statement.CurrentAssets: {2023: 800},
	})
	frame := Ratios("TEST", income, balance, statement.New(statement.TypeCashFlow))
	y := frame.Years[0]

	if y.CurrentRatio.Valid {
		t.Error("CurrentRatio should be unavailable without current liabilities")
	}
	// Other ratios stay computable.
	if !y.ROE.Valid || !y.NetMargin.Valid {
		t.Error("ratios not referencing the missing field must remain available")
	}
}

func TestRatiosZeroDenominator(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:   {2023: 0},
		statement.NetIncome: {2023: 100},
	})
	frame := Ratios("TEST", income, statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))
	y := frame.Years[0]

	if y.NetMargin.Valid {
		t.Error("NetMargin with zero revenue should be unavailable")
	}
}

func TestRatiosDividendPayoutRetention(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.NetIncome: {2023: 100},
	})
	cashflow := buildStatement(statement.TypeCashFlow, map[statement.LineItem]map[int]float64{
		statement.CashDividendsPaid: {2023: -40},
	})
	frame := Ratios("TEST", income, statement.New(statement.TypeBalance), cashflow)
	y := frame.Years[0]

	if !y.DividendPayout.Valid || y.DividendPayout.Value != 40.0 {
		t.Errorf("DividendPayout = %+v, want 40.0", y.DividendPayout)
	}
	if !y.RetentionRate.Valid || y.RetentionRate.Value != 60.0 {
		t.Errorf("RetentionRate = %+v, want 60.0", y.RetentionRate)
	}
	if sum := y.DividendPayout.Value + y.RetentionRate.Value; math.Abs(sum-100) > 1e-9 {
		t.Errorf("payout + retention = %v, want 100", sum)
	}
}

func TestRatiosFreeCashFlow(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue: {2023: 1000},
	})
	cashflow := buildStatement(statement.TypeCashFlow, map[statement.LineItem]map[int]float64{
		statement.OperatingCashFlow:  {2023: 300},
		statement.CapitalExpenditure: {2023: 120},
	})
	frame := Ratios("TEST", income, statement.New(statement.TypeBalance), cashflow)
	y := frame.Years[0]

	if !y.FreeCashFlow.Valid || y.FreeCashFlow.Value != 180 {
		t.Errorf("FreeCashFlow = %+v, want 180", y.FreeCashFlow)
	}
	if y.FreeCashFlow.Assessment != "positive" {
		t.Errorf("FCF assessment = %q, want positive", y.FreeCashFlow.Assessment)
	}
	if !y.FCFToRevenue.Valid || y.FCFToRevenue.Value != 18.0 {
		t.Errorf("FCFToRevenue = %+v, want 18.0", y.FCFToRevenue)
	}
}

func TestGrowthUsesNearestReportedYears(t *testing.T) {
	// 2021 is missing revenue: growth must pair 2023 with 2020.
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue: {2023: 1200, 2020: 1000},
	})
	frame := Ratios("TEST", income, statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))

	if !frame.RevenueGrowthYoY.Valid {
		t.Fatal("RevenueGrowthYoY should be available")
	}
	if math.Abs(frame.RevenueGrowthYoY.Value-20.0) > 1e-9 {
		t.Errorf("RevenueGrowthYoY = %v, want 20.0", frame.RevenueGrowthYoY.Value)
	}
	if frame.RevenueGrowthYoY.Assessment != "strong" {
		t.Errorf("growth assessment = %q, want strong", frame.RevenueGrowthYoY.Assessment)
	}
}

func TestGrowthSingleYearUnavailable(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue: {2023: 1200},
	})
	frame := Ratios("TEST", income, statement.New(statement.TypeBalance), statement.New(statement.TypeCashFlow))
	if frame.RevenueGrowthYoY.Valid {
		t.Error("growth with one year of data should be unavailable")
	}
}

func TestRatiosIdempotent(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:     {2023: 1000, 2022: 800},
		statement.NetIncome:   {2023: 100, 2022: 90},
		statement.GrossProfit: {2023: 420},
	})
	balance := buildStatement(statement.TypeBalance, map[statement.LineItem]map[int]float64{
		statement.TotalAssets: {2023: 2000, 2022: 1900},
		statement.TotalEquity: {2023: 500, 2022: 480},
	})
	cashflow := buildStatement(statement.TypeCashFlow, map[statement.LineItem]map[int]float64{
		statement.OperatingCashFlow:  {2023: 250},
		statement.CapitalExpenditure: {2023: 100},
	})

	a := Ratios("TEST", income, balance, cashflow)
	b := Ratios("TEST", income, balance, cashflow)
	if !reflect.DeepEqual(a, b) {
		t.Error("Ratios is not idempotent for identical input")
	}
}

func TestRatiosNeverProduceNaN(t *testing.T) {
	income := buildStatement(statement.TypeIncome, map[statement.LineItem]map[int]float64{
		statement.Revenue:   {2023: 0},
		statement.NetIncome: {2023: 0},
	})
	balance := buildStatement(statement.TypeBalance, map[statement.LineItem]map[int]float64{
		statement.TotalAssets: {2023: 0},
		statement.TotalEquity: {2023: 0},
	})
	frame := Ratios("TEST", income, balance, statement.New(statement.TypeCashFlow))

	for _, y := range frame.Years {
		for _, m := range []models.Metric{
			y.ROE, y.GrossMargin, y.NetMargin, y.AssetTurnover, y.Leverage,
			y.DebtToEquity, y.DebtToAssets, y.CurrentRatio,
			y.FreeCashFlow, y.CapEx, y.FCFToRevenue,
			y.DividendPayout, y.RetentionRate,
		} {
			if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
				t.Errorf("year %d: metric carries %v", y.Year, m.Value)
			}
		}
	}
}
