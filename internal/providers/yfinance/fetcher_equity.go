package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/pkg/models"
)

// --- EquityHistorical fetcher ---

type equityHistoricalFetcher struct {
	provider.BaseFetcher
}

func newEquityHistoricalFetcher() *equityHistoricalFetcher {
	return &equityHistoricalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityHistorical,
			"Historical daily OHLCV from Yahoo Finance",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute, 5, time.Second,
		),
	}
}

func (f *equityHistoricalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	period1, period2 := chartRange(params)
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div",
		queryBaseURL, symbol, period1, period2,
	)

	var resp yfChartResponse
	if err := fetchJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}
	q := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.OHLCV, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		// Null entries mark sessions Yahoo has no data for.
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		bar := models.OHLCV{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			bar.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			bar.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			bar.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		if i < len(adj) && adj[i] != nil {
			bar.AdjClose = *adj[i]
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	f.CacheSetTTL(cacheKey, bars, 15*time.Minute)
	return newResult(bars), nil
}

// chartRange converts the optional date params to unix bounds, defaulting to
// the trailing year.
func chartRange(params provider.QueryParams) (int64, int64) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	if v := params[provider.ParamStartDate]; v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			start = t
		}
	}
	if v := params[provider.ParamEndDate]; v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end = t.AddDate(0, 0, 1)
		}
	}
	return start.Unix(), end.Unix()
}

// --- EquityQuote fetcher ---

type equityQuoteFetcher struct {
	provider.BaseFetcher
}

func newEquityQuoteFetcher() *equityQuoteFetcher {
	return &equityQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Real-time equity quote from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Minute, 5, time.Second,
		),
	}
}

func (f *equityQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", queryBaseURL, symbol)
	var resp yfQuoteResponse
	if err := fetchJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", symbol, err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := resp.QuoteResponse.Result[0]
	quote := &models.EquityQuote{
		Symbol:    r.Symbol,
		Price:     r.RegularMarketPrice,
		Change:    r.RegularMarketChange,
		ChangePct: r.RegularMarketChangePercent,
		Open:      r.RegularMarketOpen,
		High:      r.RegularMarketDayHigh,
		Low:       r.RegularMarketDayLow,
		PrevClose: r.RegularMarketPreviousClose,
		Volume:    r.RegularMarketVolume,
		Timestamp: time.Unix(r.RegularMarketTime, 0).UTC(),
	}

	f.CacheSetTTL(cacheKey, quote, 1*time.Minute)
	return newResult(quote), nil
}

// --- CompanyProfile fetcher ---

type companyProfileFetcher struct {
	provider.BaseFetcher
}

func newCompanyProfileFetcher() *companyProfileFetcher {
	return &companyProfileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyProfile,
			"Company profile and key statistics from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			24*time.Hour, 5, time.Second,
		),
	}
}

func (f *companyProfileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail,defaultKeyStatistics,price",
		queryBaseURL, symbol,
	)
	var resp yfQuoteSummaryResponse
	if err := fetchJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("yfinance profile %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := resp.QuoteSummary.Result[0]
	profile := &models.CompanyProfile{Symbol: symbol}
	if p := r.Price; p != nil {
		profile.Name = p.LongName
		if profile.Name == "" {
			profile.Name = p.ShortName
		}
		profile.Exchange = p.ExchangeName
		profile.Currency = p.Currency
		if p.RegularMarketPrice.Raw != 0 {
			profile.Price = models.Float(p.RegularMarketPrice.Raw)
		}
	}
	if a := r.AssetProfile; a != nil {
		profile.Sector = a.Sector
		profile.Industry = a.Industry
		profile.Country = a.Country
		profile.Website = a.Website
		profile.Description = a.LongBusinessSummary
	}
	if d := r.SummaryDetail; d != nil {
		if d.PreviousClose.Raw != 0 {
			profile.PrevClose = models.Float(d.PreviousClose.Raw)
		}
		if d.MarketCap.Raw != 0 {
			profile.MarketCap = models.Float(d.MarketCap.Raw)
		}
		if d.TrailingPE.Raw != 0 {
			profile.TrailingPE = models.Float(d.TrailingPE.Raw)
		}
		if d.Beta.Raw != 0 {
			profile.Beta = models.Float(d.Beta.Raw)
		}
	}
	if k := r.DefaultKeyStatistics; k != nil {
		if k.TrailingEps.Raw != 0 {
			profile.TrailingEPS = models.Float(k.TrailingEps.Raw)
		}
		if profile.Beta == nil && k.Beta.Raw != 0 {
			profile.Beta = models.Float(k.Beta.Raw)
		}
	}

	f.CacheSetTTL(cacheKey, profile, 24*time.Hour)
	return newResult(profile), nil
}
