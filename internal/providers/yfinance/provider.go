// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public APIs (v7 quote, v8 chart, v10 quoteSummary)
// into the standard provider/fetcher framework.
//
// Yahoo Finance is a free, no-API-key provider. Statement payloads wrap
// every figure in a {"raw": n, "fmt": "..."} container, which the statement
// normalizer unwraps.
package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/internal/provider"
)

const providerName = "yfinance"

// queryBaseURL is a var so tests can point the provider at a local server.
var queryBaseURL = "https://query1.finance.yahoo.com"

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
}

// New creates a new YFinance provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global financial data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
	}

	// --- Equity / Price ---
	p.RegisterFetcher(newEquityHistoricalFetcher())
	p.RegisterFetcher(newEquityQuoteFetcher())
	p.RegisterFetcher(newCompanyProfileFetcher())

	// --- Fundamentals ---
	p.RegisterFetcher(newIncomeStatementFetcher())
	p.RegisterFetcher(newBalanceSheetFetcher())
	p.RegisterFetcher(newCashFlowStatementFetcher())

	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	url := queryBaseURL + "/v7/finance/quote?symbols=AAPL"
	if _, err := infra.DoGet(ctx, url, jsonHeaders()); err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Mozilla/5.0 (compatible; finvar/1.0)",
	}
}

// fetchJSON performs a GET request and decodes the response into dest.
func fetchJSON(ctx context.Context, url string, dest any) error {
	return infra.GetJSON(ctx, url, jsonHeaders(), dest)
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Provider:  providerName,
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a FetchResult marked as cached.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Provider:  providerName,
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
