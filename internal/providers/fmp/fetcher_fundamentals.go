package fmp

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
)

// statementFetcher handles one of the three annual statement endpoints. The
// endpoints are structurally identical, so one fetcher parameterized by path
// and statement type covers all of them.
type statementFetcher struct {
	provider.BaseFetcher
	path    string
	stmt    statement.Type
	aliases statement.AliasMap
}

func newIncomeStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			1*time.Hour, 5, time.Second,
		),
		path:    "/income-statement/%s?limit=%s",
		stmt:    statement.TypeIncome,
		aliases: fmpIncomeAliases(),
	}
}

func newBalanceSheetFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			1*time.Hour, 5, time.Second,
		),
		path:    "/balance-sheet-statement/%s?limit=%s",
		stmt:    statement.TypeBalance,
		aliases: fmpBalanceAliases(),
	}
}

func newCashFlowStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			1*time.Hour, 5, time.Second,
		),
		path:    "/cash-flow-statement/%s?limit=%s",
		stmt:    statement.TypeCashFlow,
		aliases: fmpCashFlowAliases(),
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	limit := params[provider.ParamLimit]
	if limit == "" {
		limit = "10"
	}

	var raw []map[string]any
	path := fmt.Sprintf(f.path, symbol, limit)
	if err := fetchFMPJSON(ctx, path, apiKey, &raw); err != nil {
		return nil, fmt.Errorf("fmp %s %s: %w", f.stmt, symbol, err)
	}

	rows := make([]statement.Row, 0, len(raw))
	for _, rec := range raw {
		date, _ := rec["date"].(string)
		rows = append(rows, statement.Row{Date: date, Fields: rec})
	}

	stmt := statement.Normalize(f.stmt, rows, f.aliases)
	if stmt.Empty() {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	f.CacheSetTTL(cacheKey, stmt, 1*time.Hour)
	return newResult(stmt), nil
}
