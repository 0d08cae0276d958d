// Package alphavantage implements the Alpha Vantage data provider.
// Alpha Vantage serves company overviews, quotes, daily price series, and
// annual financial statements. Every numeric field arrives as a string and
// missing figures arrive as the literal "None", both of which the statement
// normalizer handles.
//
// Free tier: 25 requests/day, 5 requests/minute.
// Docs: https://www.alphavantage.co/documentation
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/internal/provider"
)

const (
	providerName = "alphavantage"
	credAPIKey   = "api_key"
)

// baseURL is a var so tests can point the provider at a local server.
var baseURL = "https://www.alphavantage.co"

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new Alpha Vantage provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - fundamentals and daily price series",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key from alphavantage.co",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newEquityHistoricalFetcher())
	p.RegisterFetcher(newEquityQuoteFetcher())
	p.RegisterFetcher(newCompanyProfileFetcher())
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

// Ping checks connectivity to Alpha Vantage.
func (p *Provider) Ping(ctx context.Context) error {
	u := queryURL("GLOBAL_QUOTE", "IBM", p.apiKey)
	if _, err := infra.DoGet(ctx, u, jsonHeaders()); err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the Alpha Vantage API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_av_api_key"] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// queryURL builds an Alpha Vantage query URL.
func queryURL(function, symbol, apiKey string) string {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", apiKey)
	return baseURL + "/query?" + q.Encode()
}

// fetchAVJSON performs a GET request to Alpha Vantage and decodes the
// response.
func fetchAVJSON(ctx context.Context, function, symbol, apiKey string, dest any) error {
	return infra.GetJSON(ctx, queryURL(function, symbol, apiKey), jsonHeaders(), dest)
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
