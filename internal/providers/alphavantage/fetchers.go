package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

// avError surfaces throttle notes and error messages the API returns with a
// 200 status.
func avError(note, information string) error {
	if note != "" {
		return fmt.Errorf("alphavantage throttled: %s", note)
	}
	if information != "" {
		return fmt.Errorf("alphavantage: %s", information)
	}
	return nil
}

// --- Statement fetchers ---

type statementFetcher struct {
	provider.BaseFetcher
	function string
	stmt     statement.Type
	aliases  statement.AliasMap
}

func newIncomeStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Minute,
		),
		function: "INCOME_STATEMENT",
		stmt:     statement.TypeIncome,
		aliases:  avIncomeAliases(),
	}
}

func newBalanceSheetFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Minute,
		),
		function: "BALANCE_SHEET",
		stmt:     statement.TypeBalance,
		aliases:  avBalanceAliases(),
	}
}

func newCashFlowStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Minute,
		),
		function: "CASH_FLOW",
		stmt:     statement.TypeCashFlow,
		aliases:  avCashFlowAliases(),
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avStatementResponse
	if err := fetchAVJSON(ctx, f.function, symbol, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage %s %s: %w", f.stmt, symbol, err)
	}
	if err := avError(resp.Note, resp.Information); err != nil {
		return nil, err
	}

	rows := make([]statement.Row, 0, len(resp.AnnualReports))
	for _, rec := range resp.AnnualReports {
		date, _ := rec["fiscalDateEnding"].(string)
		rows = append(rows, statement.Row{Date: date, Fields: rec})
	}

	stmt := statement.Normalize(f.stmt, rows, f.aliases)
	if stmt.Empty() {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	f.CacheSetTTL(cacheKey, stmt, 1*time.Hour)
	return newResult(stmt), nil
}

// --- CompanyProfile fetcher ---

type companyProfileFetcher struct {
	provider.BaseFetcher
}

func newCompanyProfileFetcher() *companyProfileFetcher {
	return &companyProfileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyProfile,
			"Company overview from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			24*time.Hour, 5, time.Minute,
		),
	}
}

func (f *companyProfileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avOverview
	if err := fetchAVJSON(ctx, "OVERVIEW", symbol, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, err)
	}
	if err := avError(resp.Note, resp.Information); err != nil {
		return nil, err
	}
	if resp.Symbol == "" {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	profile := &models.CompanyProfile{
		Symbol:      resp.Symbol,
		Name:        resp.Name,
		Exchange:    resp.Exchange,
		Sector:      resp.Sector,
		Industry:    resp.Industry,
		Country:     resp.Country,
		Currency:    resp.Currency,
		Description: resp.Description,
	}
	if v, ok := statement.Coerce(resp.MarketCapitalization); ok {
		profile.MarketCap = models.Float(v)
	}
	if v, ok := statement.Coerce(resp.PERatio); ok {
		profile.TrailingPE = models.Float(v)
	}
	if v, ok := statement.Coerce(resp.EPS); ok {
		profile.TrailingEPS = models.Float(v)
	}
	if v, ok := statement.Coerce(resp.Beta); ok {
		profile.Beta = models.Float(v)
	}

	f.CacheSetTTL(cacheKey, profile, 24*time.Hour)
	return newResult(profile), nil
}

// --- EquityQuote fetcher ---

type equityQuoteFetcher struct {
	provider.BaseFetcher
}

func newEquityQuoteFetcher() *equityQuoteFetcher {
	return &equityQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Global quote from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Minute, 5, time.Minute,
		),
	}
}

func (f *equityQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avGlobalQuoteResponse
	if err := fetchAVJSON(ctx, "GLOBAL_QUOTE", symbol, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}
	if err := avError(resp.Note, resp.Information); err != nil {
		return nil, err
	}
	if resp.GlobalQuote.Symbol == "" {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	g := resp.GlobalQuote
	quote := &models.EquityQuote{Symbol: g.Symbol}
	if v, ok := statement.Coerce(g.Price); ok {
		quote.Price = v
	}
	if v, ok := statement.Coerce(g.Change); ok {
		quote.Change = v
	}
	if v, ok := statement.Coerce(strings.TrimSuffix(g.ChangePercent, "%")); ok {
		quote.ChangePct = v
	}
	if v, ok := statement.Coerce(g.Open); ok {
		quote.Open = v
	}
	if v, ok := statement.Coerce(g.High); ok {
		quote.High = v
	}
	if v, ok := statement.Coerce(g.Low); ok {
		quote.Low = v
	}
	if v, ok := statement.Coerce(g.PreviousClose); ok {
		quote.PrevClose = v
	}
	if v, ok := statement.Coerce(g.Volume); ok {
		quote.Volume = int64(v)
	}
	if t, err := time.Parse("2006-01-02", g.LatestDay); err == nil {
		quote.Timestamp = t
	}

	f.CacheSetTTL(cacheKey, quote, 1*time.Minute)
	return newResult(quote), nil
}

// --- EquityHistorical fetcher ---

type equityHistoricalFetcher struct {
	provider.BaseFetcher
}

func newEquityHistoricalFetcher() *equityHistoricalFetcher {
	return &equityHistoricalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityHistorical,
			"Daily price series from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute, 5, time.Minute,
		),
	}
}

func (f *equityHistoricalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avDailySeriesResponse
	if err := fetchAVJSON(ctx, "TIME_SERIES_DAILY", symbol, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage daily %s: %w", symbol, err)
	}
	if err := avError(resp.Note, resp.Information); err != nil {
		return nil, err
	}
	if len(resp.Series) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	start := params[provider.ParamStartDate]
	end := params[provider.ParamEndDate]

	bars := make([]models.OHLCV, 0, len(resp.Series))
	for date, bar := range resp.Series {
		if start != "" && date < start {
			continue
		}
		if end != "" && date > end {
			continue
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		b := models.OHLCV{Date: d}
		if v, ok := statement.Coerce(bar.Open); ok {
			b.Open = v
		}
		if v, ok := statement.Coerce(bar.High); ok {
			b.High = v
		}
		if v, ok := statement.Coerce(bar.Low); ok {
			b.Low = v
		}
		if v, ok := statement.Coerce(bar.Close); ok {
			b.Close = v
		}
		if v, ok := statement.Coerce(bar.Volume); ok {
			b.Volume = int64(v)
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	f.CacheSetTTL(cacheKey, bars, 15*time.Minute)
	return newResult(bars), nil
}
