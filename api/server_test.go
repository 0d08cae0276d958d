package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atuladas/finvar/internal/config"
	"github.com/atuladas/finvar/internal/dashboard"
	"github.com/atuladas/finvar/internal/news"
	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
)

type fixedFetcher struct {
	provider.BaseFetcher
	data any
	err  error
}

func (f *fixedFetcher) Fetch(_ context.Context, _ provider.QueryParams) (*provider.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.FetchResult{Provider: "test", Data: f.data, FetchedAt: time.Now()}, nil
}

type fixedProvider struct {
	provider.BaseProvider
}

func (p *fixedProvider) Ping(context.Context) error { return nil }

func fixture(model provider.ModelType, data any, err error) *fixedFetcher {
	return &fixedFetcher{
		BaseFetcher: provider.NewBaseFetcher(model, "test", []string{provider.ParamSymbol}, nil),
		data:        data,
		err:         err,
	}
}

func testStatements() (income, balance, cashflow *statement.Statement) {
	income = statement.New(statement.TypeIncome)
	balance = statement.New(statement.TypeBalance)
	cashflow = statement.New(statement.TypeCashFlow)
	for _, year := range []int{2022, 2023} {
		income.Set(statement.Revenue, year, 2000)
		income.Set(statement.CostOfRevenue, year, 1200)
		income.Set(statement.GrossProfit, year, 800)
		income.Set(statement.NetIncome, year, 300)
		balance.Set(statement.TotalAssets, year, 3000)
		balance.Set(statement.TotalEquity, year, 1500)
		cashflow.Set(statement.OperatingCashFlow, year, 350)
	}
	return income, balance, cashflow
}

func testBars() []models.OHLCV {
	base := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.OHLCV, 0, 20)
	price := 50.0
	for i := 0; i < 20; i++ {
		price += 0.25
		bars = append(bars, models.OHLCV{
			Date: base.AddDate(0, 0, i), Open: price - 0.2, High: price + 0.3,
			Low: price - 0.4, Close: price, Volume: 100000,
		})
	}
	return bars
}

func testServer(t *testing.T) *Server {
	t.Helper()

	income, balance, cashflow := testStatements()
	eps := 3.10
	p := &fixedProvider{BaseProvider: provider.NewBaseProvider("test", "test provider", "", nil)}
	p.RegisterFetcher(fixture(provider.ModelCompanyProfile, &models.CompanyProfile{
		Symbol: "TSLA", Name: "Tesla, Inc.", TrailingEPS: &eps,
	}, nil))
	p.RegisterFetcher(fixture(provider.ModelEquityHistorical, testBars(), nil))
	p.RegisterFetcher(fixture(provider.ModelIncomeStatement, income, nil))
	p.RegisterFetcher(fixture(provider.ModelBalanceSheet, balance, nil))
	p.RegisterFetcher(fixture(provider.ModelCashFlowStatement, cashflow, nil))

	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
			<item><title>Tesla headline</title><link>https://example.com</link>
			<pubDate>Mon, 02 Feb 2026 10:00:00 GMT</pubDate></item></channel></rss>`))
	}))
	t.Cleanup(feedSrv.Close)

	svc := dashboard.New(reg, dashboard.WithNews(news.NewWithFeed(feedSrv.URL+"/rss?s=%s")))
	cfg := &config.Config{}
	return NewServer(cfg, svc)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("health should report success")
	}
}

func TestProfileEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/profile/tsla")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["name"] != "Tesla, Inc." {
		t.Errorf("profile name = %v", data["name"])
	}
}

func TestRatiosEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/ratios/TSLA")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
}

func TestMScoreEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/mscore/TSLA")
	// The fixture statements miss several M-Score inputs, so either outcome
	// must still be a well-formed envelope.
	resp := decodeEnvelope(t, rec)
	if rec.Code == http.StatusOK && !resp.Success {
		t.Error("200 with success=false")
	}
	if rec.Code != http.StatusOK && resp.Kind == "" {
		t.Errorf("error response without kind, status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPredictWithoutModelIs422(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/predict/TSLA")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Kind != models.ErrKindPredictionFailed {
		t.Errorf("kind = %q, want prediction_failed", resp.Kind)
	}
}

func TestAnalysisEndpointSectionIsolation(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/analysis/TSLA")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["symbol"] != "TSLA" {
		t.Errorf("symbol = %v", data["symbol"])
	}
	if data["profile"] == nil {
		t.Error("profile section missing")
	}
	// No predictor configured; the section fails without failing the request.
	if data["prediction_error"] == nil {
		t.Error("prediction_error section missing")
	}
}

func TestAnalysisInvalidTicker(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/analysis/%21bad%21")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChartEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/chart/TSLA")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rec.Body.String(); len(body) == 0 || body[0] != '<' {
		t.Error("chart body is not SVG")
	}
}

func TestMetricChartEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/chart/TSLA/roe")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/chart/TSLA/bogus")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown metric status = %d, want 404", rec.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/report/TSLA")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestProvidersEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/providers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	list, _ := resp.Data.([]any)
	if len(list) != 1 {
		t.Errorf("got %d providers, want 1", len(list))
	}
}

func TestConfigKeysEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/config/keys")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	list, _ := resp.Data.([]any)
	if len(list) == 0 {
		t.Error("expected key statuses")
	}
}

func TestNewsEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/news/TSLA?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	list, _ := resp.Data.([]any)
	if len(list) != 1 {
		t.Errorf("got %d news items, want 1", len(list))
	}
}
