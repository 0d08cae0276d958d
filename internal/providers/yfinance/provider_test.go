package yfinance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "yfinance" {
		t.Errorf("expected name yfinance, got %s", info.Name)
	}
	if len(info.Credentials) != 0 {
		t.Errorf("yfinance should require no credentials, got %d", len(info.Credentials))
	}
}

func TestProviderInitNoCredentials(t *testing.T) {
	p := New()
	if err := p.Init(nil); err != nil {
		t.Fatalf("Init with no credentials: %v", err)
	}
}

func TestProviderSupportedModels(t *testing.T) {
	p := New()
	supported := p.SupportedModels()

	expected := []provider.ModelType{
		provider.ModelEquityHistorical,
		provider.ModelEquityQuote,
		provider.ModelCompanyProfile,
		provider.ModelIncomeStatement,
		provider.ModelBalanceSheet,
		provider.ModelCashFlowStatement,
	}

	modelSet := make(map[provider.ModelType]bool)
	for _, m := range supported {
		modelSet[m] = true
	}
	for _, m := range expected {
		if !modelSet[m] {
			t.Errorf("missing expected model: %s", m)
		}
	}
}

func withMockServer(t *testing.T, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	old := queryBaseURL
	queryBaseURL = srv.URL
	t.Cleanup(func() {
		queryBaseURL = old
		srv.Close()
	})
}

func TestBalanceSheetFetchUnwrapsContainers(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"balanceSheetHistory": {
						"balanceSheetStatements": [
							{
								"endDate": {"raw": 1703980800, "fmt": "2023-12-31"},
								"totalAssets": {"raw": 5000, "fmt": "5K"},
								"totalStockholderEquity": {"raw": 2000, "fmt": "2K"},
								"totalLiab": {"raw": 3000, "fmt": "3K"}
							},
							{
								"endDate": {"raw": 1672444800, "fmt": "2022-12-31"},
								"totalAssets": {"raw": 4000, "fmt": "4K"}
							}
						]
					}
				}],
				"error": null
			}
		}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelBalanceSheet)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	stmt, ok := res.Data.(*statement.Statement)
	if !ok {
		t.Fatalf("expected *statement.Statement, got %T", res.Data)
	}
	if v, ok := stmt.Value(statement.TotalAssets, 2023); !ok || v != 5000 {
		t.Errorf("totalAssets 2023 = %v %v, want 5000 true", v, ok)
	}
	if v, ok := stmt.Value(statement.TotalEquity, 2023); !ok || v != 2000 {
		t.Errorf("totalStockholderEquity alias broken: %v %v", v, ok)
	}
	if v, ok := stmt.Value(statement.TotalLiabilities, 2023); !ok || v != 3000 {
		t.Errorf("totalLiab alias broken: %v %v", v, ok)
	}
	if v, ok := stmt.Value(statement.TotalAssets, 2022); !ok || v != 4000 {
		t.Errorf("totalAssets 2022 = %v %v, want 4000 true", v, ok)
	}
}

func TestIncomeStatementFetchAliases(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"incomeStatementHistory": {
						"incomeStatementHistory": [
							{
								"endDate": {"raw": 1703980800, "fmt": "2023-12-31"},
								"totalRevenue": {"raw": 1000},
								"ebit": {"raw": 250},
								"netIncome": {"raw": 100},
								"sellingGeneralAdministrative": {"raw": 80}
							}
						]
					}
				}],
				"error": null
			}
		}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelIncomeStatement)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "MSFT"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	stmt := res.Data.(*statement.Statement)
	if v, ok := stmt.Value(statement.Revenue, 2023); !ok || v != 1000 {
		t.Errorf("totalRevenue alias broken: %v %v", v, ok)
	}
	if v, ok := stmt.Value(statement.OperatingIncome, 2023); !ok || v != 250 {
		t.Errorf("ebit alias broken: %v %v", v, ok)
	}
	if v, ok := stmt.Value(statement.SGAExpenses, 2023); !ok || v != 80 {
		t.Errorf("sellingGeneralAdministrative alias broken: %v %v", v, ok)
	}
	if _, ok := stmt.Value(statement.EBITDA, 2023); ok {
		t.Error("ebitda should be missing from yfinance payloads")
	}
}

func TestStatementFetchEmptyResult(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteSummary": {"result": [], "error": null}}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelCashFlowStatement)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "ZZZZ"})

	var noData *provider.ErrNoData
	if !errors.As(err, &noData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestQuoteFetch(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "AAPL",
					"regularMarketPrice": 190.5,
					"regularMarketChange": 2.5,
					"regularMarketChangePercent": 1.33,
					"regularMarketPreviousClose": 188.0,
					"regularMarketVolume": 55000000,
					"regularMarketTime": 1700000000
				}],
				"error": null
			}
		}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelEquityQuote)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	q, ok := res.Data.(*models.EquityQuote)
	if !ok {
		t.Fatalf("expected *models.EquityQuote, got %T", res.Data)
	}
	if q.Price != 190.5 || q.PrevClose != 188.0 {
		t.Errorf("unexpected quote: %+v", q)
	}
}

func TestHistoricalFetchSkipsNulls(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {"symbol": "AAPL", "currency": "USD"},
					"timestamp": [1704153600, 1704240000, 1704326400],
					"indicators": {
						"quote": [{
							"open": [100.0, null, 102.0],
							"high": [101.0, null, 103.0],
							"low": [99.0, null, 101.0],
							"close": [100.5, null, 102.5],
							"volume": [1000, null, 2000]
						}],
						"adjclose": [{"adjclose": [100.5, null, 102.5]}]
					}
				}],
				"error": null
			}
		}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelEquityHistorical)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	bars, ok := res.Data.([]models.OHLCV)
	if !ok {
		t.Fatalf("expected []models.OHLCV, got %T", res.Data)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars after null skip, got %d", len(bars))
	}
	if bars[0].Close != 100.5 || bars[1].Close != 102.5 {
		t.Errorf("unexpected closes: %v, %v", bars[0].Close, bars[1].Close)
	}
}

func TestProfileFetchTrailingEPS(t *testing.T) {
	withMockServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"assetProfile": {"sector": "Technology", "industry": "Consumer Electronics", "country": "United States"},
					"summaryDetail": {
						"previousClose": {"raw": 188.0, "fmt": "188.00"},
						"marketCap": {"raw": 2900000000000, "fmt": "2.9T"},
						"trailingPE": {"raw": 29.5, "fmt": "29.50"}
					},
					"defaultKeyStatistics": {
						"trailingEps": {"raw": 6.42, "fmt": "6.42"}
					},
					"price": {
						"longName": "Apple Inc.",
						"exchangeName": "NasdaqGS",
						"currency": "USD",
						"regularMarketPrice": {"raw": 190.5, "fmt": "190.50"}
					}
				}],
				"error": null
			}
		}`))
	}))

	p := New()
	_ = p.Init(nil)

	f := p.Fetcher(provider.ModelCompanyProfile)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	prof, ok := res.Data.(*models.CompanyProfile)
	if !ok {
		t.Fatalf("expected *models.CompanyProfile, got %T", res.Data)
	}
	if prof.Name != "Apple Inc." || prof.Sector != "Technology" {
		t.Errorf("unexpected profile: %+v", prof)
	}
	if prof.TrailingEPS == nil || *prof.TrailingEPS != 6.42 {
		t.Error("trailingEps not populated")
	}
	if prof.TrailingPE == nil || *prof.TrailingPE != 29.5 {
		t.Error("trailingPE not populated")
	}
}

func TestStatementDate(t *testing.T) {
	if d := statementDate(map[string]any{"endDate": map[string]any{"fmt": "2023-09-30"}}); d != "2023-09-30" {
		t.Errorf("fmt date = %q", d)
	}
	if d := statementDate(map[string]any{"endDate": map[string]any{"raw": 1696032000.0}}); d == "" {
		t.Error("raw timestamp should yield a date")
	}
	if d := statementDate(map[string]any{}); d != "" {
		t.Errorf("missing endDate should yield empty, got %q", d)
	}
}
