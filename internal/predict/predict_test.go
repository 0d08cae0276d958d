package predict

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/atuladas/finvar/internal/statement"
)

func incomeWith(values map[statement.LineItem]map[int]float64) *statement.Statement {
	s := statement.New(statement.TypeIncome)
	for item, byYear := range values {
		for year, v := range byYear {
			s.Set(item, year, v)
		}
	}
	return s
}

func balanceWith(values map[statement.LineItem]map[int]float64) *statement.Statement {
	s := statement.New(statement.TypeBalance)
	for item, byYear := range values {
		for year, v := range byYear {
			s.Set(item, year, v)
		}
	}
	return s
}

func eps(v float64) *float64 { return &v }

func TestBuildFeaturesWidthAndOrder(t *testing.T) {
	features, _ := BuildFeatures(Inputs{
		Income:  statement.New(statement.TypeIncome),
		Balance: statement.New(statement.TypeBalance),
	}, DefaultFeatureConfig())

	if len(features) != NumFeatures {
		t.Fatalf("got %d features, want %d", len(features), NumFeatures)
	}
	if len(FeatureNames) != NumFeatures {
		t.Fatalf("FeatureNames has %d entries, want %d", len(FeatureNames), NumFeatures)
	}
	if FeatureNames[0] != "eps" || FeatureNames[9] != "intcov_ratio" {
		t.Errorf("unexpected feature order: %v", FeatureNames)
	}
}

func TestBuildFeaturesAllMissingYieldsZeros(t *testing.T) {
	features, rescaled := BuildFeatures(Inputs{
		Income:  statement.New(statement.TypeIncome),
		Balance: statement.New(statement.TypeBalance),
	}, DefaultFeatureConfig())

	if rescaled {
		t.Error("rescale heuristic fired on empty input")
	}
	for i, f := range features {
		if f != 0 {
			t.Errorf("feature %s = %v, want 0 for missing input", FeatureNames[i], f)
		}
	}
}

func TestBuildFeaturesEPSRescale(t *testing.T) {
	// EPS of 1500 is past the >1000 threshold and must come back as 1.5.
	features, rescaled := BuildFeatures(Inputs{
		TrailingEPS: eps(1500),
		Income:      statement.New(statement.TypeIncome),
		Balance:     statement.New(statement.TypeBalance),
	}, DefaultFeatureConfig())
	if !rescaled {
		t.Fatal("rescale heuristic did not fire for eps=1500")
	}
	if math.Abs(features[0]-1.5) > 1e-12 {
		t.Errorf("eps = %v, want 1.5", features[0])
	}

	// A plausible EPS stays untouched.
	features, rescaled = BuildFeatures(Inputs{
		TrailingEPS: eps(6.42),
		Income:      statement.New(statement.TypeIncome),
		Balance:     statement.New(statement.TypeBalance),
	}, DefaultFeatureConfig())
	if rescaled {
		t.Error("rescale heuristic fired for ordinary eps")
	}
	if features[0] != 6.42 {
		t.Errorf("eps = %v, want 6.42", features[0])
	}
}

func TestBuildFeaturesRevenueRescale(t *testing.T) {
	income := incomeWith(map[statement.LineItem]map[int]float64{
		statement.Revenue:         {2023: 5e9, 2022: 4e9},
		statement.NetIncome:       {2023: 5e8},
		statement.OperatingIncome: {2023: 6e8},
	})
	balance := balanceWith(map[statement.LineItem]map[int]float64{
		statement.TotalAssets: {2023: 1e10},
		statement.TotalEquity: {2023: 2.5e9},
	})
	features, rescaled := BuildFeatures(Inputs{
		TrailingEPS: eps(2.5),
		Income:      income,
		Balance:     balance,
	}, DefaultFeatureConfig())
	if !rescaled {
		t.Fatal("revenue rescale did not fire")
	}
	// revenue_avg = (5000 + 4000) / 2 in millions.
	if math.Abs(features[5]-4500) > 1e-6 {
		t.Errorf("revenue_avg = %v, want 4500", features[5])
	}
	// Growth is scale-invariant: (5−4)/4 = 0.25.
	if math.Abs(features[7]-0.25) > 1e-9 {
		t.Errorf("revenue_growth = %v, want 0.25", features[7])
	}
	// Margins are unit-free and must survive the rescale untouched:
	// npm = 5e8/5e9 = 0.10, roe = 5e8/2.5e9 = 0.20,
	// opmad_to_npm = (6e8/5e9)/0.10 = 1.2.
	if math.Abs(features[3]-0.10) > 1e-9 {
		t.Errorf("npm = %v, want 0.10", features[3])
	}
	if math.Abs(features[2]-0.20) > 1e-9 {
		t.Errorf("roe = %v, want 0.20", features[2])
	}
	if math.Abs(features[4]-1.2) > 1e-9 {
		t.Errorf("opmad_to_npm = %v, want 1.2", features[4])
	}
}

func TestBuildFeaturesRatiosScaleInvariant(t *testing.T) {
	// The same company reported in raw dollars and in millions must produce
	// identical ratio features; only the level features may differ, and
	// those converge once the rescale fires.
	raw := Inputs{
		TrailingEPS: eps(2.5),
		Income: incomeWith(map[statement.LineItem]map[int]float64{
			statement.Revenue:         {2023: 5e9, 2022: 4e9},
			statement.NetIncome:       {2023: 5e8, 2022: 4.5e8},
			statement.OperatingIncome: {2023: 6e8},
			statement.InterestExpense: {2023: 5e7},
		}),
		Balance: balanceWith(map[statement.LineItem]map[int]float64{
			statement.TotalAssets:        {2023: 1e10},
			statement.TotalEquity:        {2023: 2.5e9},
			statement.CurrentAssets:      {2023: 2e9},
			statement.CurrentLiabilities: {2023: 1e9},
		}),
	}
	millions := Inputs{
		TrailingEPS: eps(2.5),
		Income: incomeWith(map[statement.LineItem]map[int]float64{
			statement.Revenue:         {2023: 5000, 2022: 4000},
			statement.NetIncome:       {2023: 500, 2022: 450},
			statement.OperatingIncome: {2023: 600},
			statement.InterestExpense: {2023: 50},
		}),
		Balance: balanceWith(map[statement.LineItem]map[int]float64{
			statement.TotalAssets:        {2023: 10000},
			statement.TotalEquity:        {2023: 2500},
			statement.CurrentAssets:      {2023: 2000},
			statement.CurrentLiabilities: {2023: 1000},
		}),
	}

	fromRaw, rescaled := BuildFeatures(raw, DefaultFeatureConfig())
	if !rescaled {
		t.Fatal("raw-dollar input did not trigger the rescale")
	}
	fromMillions, rescaled := BuildFeatures(millions, DefaultFeatureConfig())
	if rescaled {
		t.Fatal("millions-scale input should not trigger the rescale")
	}
	for i := range fromRaw {
		if math.Abs(fromRaw[i]-fromMillions[i]) > 1e-9 {
			t.Errorf("%s = %v raw vs %v millions", FeatureNames[i], fromRaw[i], fromMillions[i])
		}
	}
}

func TestBuildFeaturesClipping(t *testing.T) {
	// Extreme inputs: revenue collapse and huge margins must clamp to the
	// documented ranges.
	income := incomeWith(map[statement.LineItem]map[int]float64{
		statement.Revenue:         {2023: 10, 2022: 1},
		statement.NetIncome:       {2023: 500},
		statement.OperatingIncome: {2023: 400},
		statement.InterestExpense: {2023: 0.001},
	})
	balance := balanceWith(map[statement.LineItem]map[int]float64{
		statement.TotalAssets:        {2023: 1},
		statement.TotalEquity:        {2023: 0.1},
		statement.CurrentAssets:      {2023: 1000},
		statement.CurrentLiabilities: {2023: 1},
	})
	features, _ := BuildFeatures(Inputs{
		TrailingEPS: eps(3),
		Income:      income,
		Balance:     balance,
	}, DefaultFeatureConfig())

	bounds := map[int][2]float64{
		2: {-2, 2},  // roe
		3: {-1, 1},  // npm
		4: {-2, 2},  // opmad_to_npm
		6: {0, 100}, // intcov_per_curr
		7: {-1, 1},  // revenue_growth
		8: {-1, 1},  // roa_to_revenue
		9: {0, 100}, // intcov_ratio
	}
	for i, b := range bounds {
		if features[i] < b[0] || features[i] > b[1] {
			t.Errorf("%s = %v outside [%v, %v]", FeatureNames[i], features[i], b[0], b[1])
		}
	}
	// revenue_growth raw is 9.0 and must clip to exactly 1.0.
	if features[7] != 1.0 {
		t.Errorf("revenue_growth = %v, want 1.0", features[7])
	}
	if features[9] != 100.0 {
		t.Errorf("intcov_ratio = %v, want clip ceiling 100", features[9])
	}
}

func TestBuildFeaturesFinite(t *testing.T) {
	// Zero denominators everywhere must never leak NaN or Inf.
	income := incomeWith(map[statement.LineItem]map[int]float64{
		statement.Revenue:   {2023: 0},
		statement.NetIncome: {2023: 0},
	})
	balance := balanceWith(map[statement.LineItem]map[int]float64{
		statement.TotalAssets: {2023: 0},
	})
	features, _ := BuildFeatures(Inputs{Income: income, Balance: balance}, DefaultFeatureConfig())
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("feature %s = %v, must be finite", FeatureNames[i], f)
		}
	}
}

func TestAdvisoryWarnings(t *testing.T) {
	tests := []struct {
		name      string
		predicted float64
		trailing  *float64
		want      int
	}{
		{"plausible", 7.1, eps(6.42), 0},
		{"negative vs positive trailing", -3.2, eps(6.42), 1},
		{"negative without trailing", -3.2, nil, 0},
		{"negative vs negative trailing", -3.2, eps(-1.5), 0},
		{"implausibly large", 250000, eps(6.42), 1},
		{"implausibly negative and profitable", -250000, eps(6.42), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvisoryWarnings(tt.predicted, tt.trailing)
			if len(got) != tt.want {
				t.Errorf("got %d warnings %v, want %d", len(got), got, tt.want)
			}
		})
	}
}

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModelAndPredict(t *testing.T) {
	path := writeModel(t, `{
		"feature_names": ["a", "b"],
		"scaler_mean": [1, 2],
		"scaler_scale": [2, 4],
		"coefficients": [3, 5],
		"intercept": 0.5
	}`)
	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if m.NumFeatures() != 2 {
		t.Errorf("NumFeatures = %d, want 2", m.NumFeatures())
	}

	// (3−1)/2·3 + (6−2)/4·5 + 0.5 = 3 + 5 + 0.5
	got, err := m.Predict([]float64{3, 6})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(got-8.5) > 1e-9 {
		t.Errorf("Predict = %v, want 8.5", got)
	}
}

func TestPredictWrongWidth(t *testing.T) {
	m := &LinearModel{Coefficients: []float64{1, 2, 3}}
	_, err := m.Predict([]float64{1})
	if _, ok := err.(*Error); !ok {
		t.Errorf("got %T (%v), want *Error", err, err)
	}
}

func TestLoadModelRejectsBadArtifacts(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing artifact")
	}
	if _, err := LoadModel(writeModel(t, `not json`)); err == nil {
		t.Error("expected error for malformed artifact")
	}
	if _, err := LoadModel(writeModel(t, `{"coefficients": []}`)); err == nil {
		t.Error("expected error for empty coefficients")
	}
	if _, err := LoadModel(writeModel(t, `{"coefficients": [1, 2], "scaler_mean": [1]}`)); err == nil {
		t.Error("expected error for mismatched scaler length")
	}
}
