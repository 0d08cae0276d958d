// Package edgar implements the SEC EDGAR filings provider.
// EDGAR provides free access to company filings via REST APIs.
//
// No API key required. Requests must carry a User-Agent header per SEC
// policy. Rate limit: 10 requests/second per user-agent.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
package edgar

import (
	"context"
	"fmt"
	"time"

	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/internal/provider"
)

const (
	providerName = "edgar"

	// ParamForm filters filings by form type ("10-K", "10-Q", "8-K", ...).
	ParamForm = "form"

	defaultUserAgent = "finvar/1.0 (github.com/atuladas/finvar)"
)

// Base URLs are vars so tests can point the provider at local servers.
var (
	dataBaseURL  = "https://data.sec.gov"
	filesBaseURL = "https://www.sec.gov"
)

// Provider implements provider.Provider for SEC EDGAR.
type Provider struct {
	provider.BaseProvider
	userAgent string
}

// New creates a new EDGAR provider with the default user agent.
func New() *Provider {
	return NewWithUserAgent(defaultUserAgent)
}

// NewWithUserAgent creates an EDGAR provider identifying itself with the
// given user agent. The SEC asks for a contact address in it.
func NewWithUserAgent(userAgent string) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"SEC EDGAR - US securities filings",
			"https://www.sec.gov/edgar",
			nil, // no credentials required
		),
		userAgent: userAgent,
	}

	p.RegisterFetcher(newCompanyFilingsFetcher(p))

	return p
}

// Ping checks connectivity to SEC EDGAR.
func (p *Provider) Ping(ctx context.Context) error {
	url := dataBaseURL + "/submissions/CIK0000320193.json" // Apple
	if _, err := infra.DoGet(ctx, url, p.headers()); err != nil {
		return fmt.Errorf("edgar ping: %w", err)
	}
	return nil
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     "application/json",
	}
}

// fetchJSON performs a GET request to an EDGAR endpoint and decodes JSON.
func (p *Provider) fetchJSON(ctx context.Context, url string, dest any) error {
	return infra.GetJSON(ctx, url, p.headers(), dest)
}

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
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
