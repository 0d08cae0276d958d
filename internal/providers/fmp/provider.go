// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// FMP offers company profiles, quotes, historical prices, and annual
// financial statements via a REST API with API key authentication.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/internal/provider"
)

const (
	providerName = "fmp"
	credAPIKey   = "api_key"
)

// baseURL is a var so tests can point the provider at a local server.
var baseURL = "https://financialmodelingprep.com/api/v3"

// Provider implements provider.Provider for FMP.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new FMP provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - profiles, prices and financial statements",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
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

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity to FMP.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmpURL("/quote/AAPL", p.apiKey)
	if _, err := infra.DoGet(ctx, url, jsonHeaders()); err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the FMP API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the FMP API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	// Inject API key so fetchers don't need to know about credential management.
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_fmp_api_key"] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fmpURL builds a full FMP API URL with the API key appended.
func fmpURL(path, apiKey string) string {
	sep := "?"
	if containsQuery(path) {
		sep = "&"
	}
	return baseURL + path + sep + "apikey=" + apiKey
}

func containsQuery(s string) bool {
	for _, c := range s {
		if c == '?' {
			return true
		}
	}
	return false
}

// fetchFMPJSON performs a GET request to FMP and decodes the response.
func fetchFMPJSON(ctx context.Context, path, apiKey string, dest any) error {
	return infra.GetJSON(ctx, fmpURL(path, apiKey), jsonHeaders(), dest)
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Provider:  providerName,
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Provider:  providerName,
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
