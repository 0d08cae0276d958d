package fmp

import (
	"context"
	"fmt"
	"sort"
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
			"Historical daily OHLCV from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute, 5, time.Second,
		),
	}
}

func (f *equityHistoricalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	from, to := defaultDateRange(params)
	path := fmt.Sprintf("/historical-price-full/%s?from=%s&to=%s", symbol, from, to)
	var resp fmpHistoricalResponse
	if err := fetchFMPJSON(ctx, path, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("fmp historical %s: %w", symbol, err)
	}
	if len(resp.Historical) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	bars := make([]models.OHLCV, 0, len(resp.Historical))
	for _, b := range resp.Historical {
		d, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		bars = append(bars, models.OHLCV{
			Date:     d,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}

	// FMP returns newest first; downstream consumers expect ascending dates.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	f.CacheSetTTL(cacheKey, bars, 15*time.Minute)
	return newResult(bars), nil
}

// defaultDateRange returns the requested date range, defaulting to the
// trailing year.
func defaultDateRange(params provider.QueryParams) (string, string) {
	from := params[provider.ParamStartDate]
	to := params[provider.ParamEndDate]
	if to == "" {
		to = time.Now().Format("2006-01-02")
	}
	if from == "" {
		from = time.Now().AddDate(-1, 0, 0).Format("2006-01-02")
	}
	return from, to
}

// --- EquityQuote fetcher ---

type equityQuoteFetcher struct {
	provider.BaseFetcher
}

func newEquityQuoteFetcher() *equityQuoteFetcher {
	return &equityQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Delayed equity quote from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Minute, 5, time.Second,
		),
	}
}

func (f *equityQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var results []fmpQuote
	if err := fetchFMPJSON(ctx, "/quote/"+symbol, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := results[0]
	quote := &models.EquityQuote{
		Symbol:    r.Symbol,
		Price:     r.Price,
		Change:    r.Change,
		ChangePct: r.ChangePct,
		Open:      r.Open,
		High:      r.DayHigh,
		Low:       r.DayLow,
		PrevClose: r.PreviousClose,
		Volume:    r.Volume,
		Timestamp: time.Unix(r.Timestamp, 0).UTC(),
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
			"Company profile from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			24*time.Hour, 5, time.Second,
		),
	}
}

func (f *companyProfileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var results []fmpProfile
	if err := fetchFMPJSON(ctx, "/profile/"+symbol, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := results[0]
	profile := &models.CompanyProfile{
		Symbol:      r.Symbol,
		Name:        r.CompanyName,
		Exchange:    r.Exchange,
		Sector:      r.Sector,
		Industry:    r.Industry,
		Country:     r.Country,
		Currency:    r.Currency,
		Website:     r.Website,
		Description: r.Description,
	}
	if r.Price != 0 {
		profile.Price = models.Float(r.Price)
	}
	if r.MktCap != 0 {
		profile.MarketCap = models.Float(r.MktCap)
	}
	if r.Beta != 0 {
		profile.Beta = models.Float(r.Beta)
	}

	f.CacheSetTTL(cacheKey, profile, 24*time.Hour)
	return newResult(profile), nil
}
