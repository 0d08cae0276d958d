package technical

import (
	"math"
	"testing"
	"time"

	"github.com/atuladas/finvar/pkg/models"
)

func barsFromCloses(closes ...float64) []models.OHLCV {
	bars := make([]models.OHLCV, len(closes))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.OHLCV{Date: day.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns(barsFromCloses(100, 110, 99))
	if len(returns) != 2 {
		t.Fatalf("got %d returns, want 2", len(returns))
	}
	if math.Abs(returns[0]-0.1) > 1e-9 {
		t.Errorf("returns[0] = %v, want 0.1", returns[0])
	}
	if math.Abs(returns[1]+0.1) > 1e-9 {
		t.Errorf("returns[1] = %v, want -0.1", returns[1])
	}
}

func TestDailyReturnsSkipsZeroClose(t *testing.T) {
	returns := DailyReturns(barsFromCloses(100, 0, 50))
	for _, r := range returns {
		if math.IsInf(r, 0) || math.IsNaN(r) {
			t.Errorf("return %v is not finite", r)
		}
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	// Alternating ±1% daily moves: daily stddev slightly above 1%.
	closes := []float64{100}
	for i := 0; i < 20; i++ {
		last := closes[len(closes)-1]
		if i%2 == 0 {
			closes = append(closes, last*1.01)
		} else {
			closes = append(closes, last*0.99)
		}
	}
	vol := AnnualizedVolatility(barsFromCloses(closes...))
	if !vol.Valid {
		t.Fatal("volatility unavailable")
	}
	// Rough bounds: 1% daily ≈ 15.9% annualized.
	if vol.Value < 10 || vol.Value > 25 {
		t.Errorf("annualized volatility = %v%%, expected near 16%%", vol.Value)
	}
}

func TestAnnualizedVolatilityInsufficientData(t *testing.T) {
	if vol := AnnualizedVolatility(barsFromCloses(100, 101)); vol.Valid {
		t.Error("expected unavailable volatility for a single return")
	}
	if vol := AnnualizedVolatility(nil); vol.Valid {
		t.Error("expected unavailable volatility for no bars")
	}
}

func TestAnnualizedVolatilityConstantPrice(t *testing.T) {
	vol := AnnualizedVolatility(barsFromCloses(100, 100, 100, 100))
	if !vol.Valid || vol.Value != 0 {
		t.Errorf("constant price volatility = %+v, want 0", vol)
	}
}

func TestSMA(t *testing.T) {
	got := SMA(barsFromCloses(1, 2, 3, 4, 5), 3)
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("SMA = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("SMA = %v, want %v", got, want)
		}
	}
	if SMA(barsFromCloses(1, 2), 3) != nil {
		t.Error("expected nil SMA when period exceeds data")
	}
}

func TestPriceStats(t *testing.T) {
	stats := PriceStats("TEST", barsFromCloses(100, 104))
	if stats.Last != 104 || stats.PrevClose != 100 {
		t.Errorf("last/prev = %v/%v, want 104/100", stats.Last, stats.PrevClose)
	}
	if math.Abs(stats.ChangePct-4.0) > 1e-9 {
		t.Errorf("ChangePct = %v, want 4.0", stats.ChangePct)
	}
	if stats.AnnualizedVolatility.Valid {
		t.Error("volatility should be unavailable with a single return")
	}

	empty := PriceStats("TEST", nil)
	if empty.Last != 0 || empty.Bars != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}
