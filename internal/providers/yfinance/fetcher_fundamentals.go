package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
)

// statementFetcher handles one quoteSummary statement module. The three
// modules share request and parse logic and differ only in module name,
// statement type and alias map.
type statementFetcher struct {
	provider.BaseFetcher
	module  string
	stmt    statement.Type
	aliases statement.AliasMap
}

func newIncomeStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
		module:  "incomeStatementHistory",
		stmt:    statement.TypeIncome,
		aliases: yfIncomeAliases(),
	}
}

func newBalanceSheetFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
		module:  "balanceSheetHistory",
		stmt:    statement.TypeBalance,
		aliases: yfBalanceAliases(),
	}
}

func newCashFlowStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
		module:  "cashflowStatementHistory",
		stmt:    statement.TypeCashFlow,
		aliases: yfCashFlowAliases(),
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", queryBaseURL, symbol, f.module)
	var resp yfQuoteSummaryResponse
	if err := fetchJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("yfinance %s %s: %w", f.stmt, symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	r := resp.QuoteSummary.Result[0]
	var container *yfStatementContainer
	switch f.stmt {
	case statement.TypeIncome:
		container = r.IncomeStatementHistory
	case statement.TypeBalance:
		container = r.BalanceSheetHistory
	default:
		container = r.CashflowStatementHistory
	}

	rows := make([]statement.Row, 0, 4)
	for _, raw := range container.rows() {
		rows = append(rows, statement.Row{Date: statementDate(raw), Fields: raw})
	}

	stmt := statement.Normalize(f.stmt, rows, f.aliases)
	if stmt.Empty() {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	f.CacheSetTTL(cacheKey, stmt, 1*time.Hour)
	return newResult(stmt), nil
}
