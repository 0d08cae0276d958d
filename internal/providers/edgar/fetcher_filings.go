package edgar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/pkg/models"
)

// edgarSubmissionsResponse is the response from the company submissions
// endpoint.
type edgarSubmissionsResponse struct {
	CIK     string       `json:"cik"`
	Name    string       `json:"name"`
	Tickers []string     `json:"tickers"`
	Filings edgarFilings `json:"filings"`
}

type edgarFilings struct {
	Recent edgarFilingSet `json:"recent"`
}

// EDGAR returns filings as parallel arrays.
type edgarFilingSet struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

type edgarTickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// ---- CompanyFilings fetcher ----
// Lists a company's recent EDGAR filings, optionally filtered by form type.

type companyFilingsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCompanyFilingsFetcher(p *Provider) *companyFilingsFetcher {
	return &companyFilingsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyFilings,
			"Company filings from SEC EDGAR",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit, ParamForm},
			10*time.Minute, 8, time.Second,
		),
		p: p,
	}
}

func (f *companyFilingsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	cik, err := f.resolveCIK(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("edgar resolve CIK for %s: %w", symbol, err)
	}

	u := fmt.Sprintf("%s/submissions/CIK%s.json", dataBaseURL, padCIK(cik))
	var resp edgarSubmissionsResponse
	if err := f.p.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("edgar submissions %s: %w", symbol, err)
	}

	limit := 100
	if lim := params[provider.ParamLimit]; lim != "" {
		if n, err := strconv.Atoi(lim); err == nil && n > 0 {
			limit = n
		}
	}
	formFilter := strings.ToUpper(strings.TrimSpace(params[ParamForm]))

	recent := resp.Filings.Recent
	var filings []models.Filing
	for i := range recent.AccessionNumber {
		if len(filings) >= limit {
			break
		}
		form := ""
		if i < len(recent.Form) {
			form = recent.Form[i]
		}
		if formFilter != "" && !strings.EqualFold(form, formFilter) {
			continue
		}

		accNo := recent.AccessionNumber[i]
		primaryDoc := ""
		if i < len(recent.PrimaryDocument) {
			primaryDoc = recent.PrimaryDocument[i]
		}

		filing := models.Filing{
			Symbol:      strings.ToUpper(symbol),
			CIK:         resp.CIK,
			FormType:    form,
			AccessionNo: accNo,
			PrimaryDoc:  primaryDoc,
		}
		if i < len(recent.FilingDate) {
			if t, err := time.Parse("2006-01-02", recent.FilingDate[i]); err == nil {
				filing.FiledAt = t
			}
		}
		if primaryDoc != "" {
			accNoClean := strings.ReplaceAll(accNo, "-", "")
			filing.URL = fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
				filesBaseURL, resp.CIK, accNoClean, primaryDoc)
		}
		filings = append(filings, filing)
	}

	if len(filings) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Model: f.ModelType()}
	}

	f.CacheSet(cacheKey, filings)
	return newResult(filings), nil
}

// resolveCIK resolves a ticker symbol to a CIK number using the SEC ticker
// map. A numeric symbol is treated as a CIK already.
func (f *companyFilingsFetcher) resolveCIK(ctx context.Context, symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if _, err := strconv.Atoi(sym); err == nil {
		return sym, nil
	}

	u := filesBaseURL + "/files/company_tickers.json"
	var tickers map[string]edgarTickerEntry
	if err := f.p.fetchJSON(ctx, u, &tickers); err != nil {
		return "", fmt.Errorf("fetch company tickers: %w", err)
	}

	for _, entry := range tickers {
		if strings.EqualFold(entry.Ticker, sym) {
			return strconv.Itoa(entry.CIK), nil
		}
	}
	return "", fmt.Errorf("CIK not found for symbol %s", symbol)
}
