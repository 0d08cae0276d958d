// Package technical implements price-series analytics for daily OHLCV bars:
// simple returns, annualized volatility, and moving averages.
package technical

import (
	"math"

	"github.com/atuladas/finvar/pkg/models"
)

// tradingDaysPerYear is the conventional annualization factor for daily
// return volatility.
const tradingDaysPerYear = 252

// DailyReturns computes simple day-over-day close returns. Bars with a zero
// previous close are skipped rather than producing an infinite return.
func DailyReturns(bars []models.OHLCV) []float64 {
	if len(bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	return returns
}

// AnnualizedVolatility is the sample standard deviation of daily returns
// scaled by √252, expressed as a percentage. Unavailable with fewer than
// two returns.
func AnnualizedVolatility(bars []models.OHLCV) models.Metric {
	returns := DailyReturns(bars)
	if len(returns) < 2 {
		return models.Metric{}
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return models.NewMetric(math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100)
}

// SMA computes the simple moving average of closes over the given period.
// Returns one value per bar from index period−1 on; nil when there is not
// enough data.
func SMA(bars []models.OHLCV, period int) []float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}
	out := make([]float64, 0, len(bars)-period+1)
	var window float64
	for i, b := range bars {
		window += b.Close
		if i >= period {
			window -= bars[i-period].Close
		}
		if i >= period-1 {
			out = append(out, window/float64(period))
		}
	}
	return out
}

// PriceStats summarizes the most recent bar against the prior close and
// attaches annualized volatility over the full window.
func PriceStats(symbol string, bars []models.OHLCV) *models.PriceStats {
	stats := &models.PriceStats{Symbol: symbol, Bars: len(bars)}
	if len(bars) == 0 {
		return stats
	}
	last := bars[len(bars)-1]
	stats.Last = last.Close
	if len(bars) > 1 {
		stats.PrevClose = bars[len(bars)-2].Close
		stats.Change = stats.Last - stats.PrevClose
		if stats.PrevClose != 0 {
			stats.ChangePct = stats.Change / stats.PrevClose * 100
		}
	}
	stats.AnnualizedVolatility = AnnualizedVolatility(bars)
	return stats
}
