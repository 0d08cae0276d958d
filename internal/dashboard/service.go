// Package dashboard assembles the per-company analysis out of provider
// data, ratio and M-Score computation, the EPS predictor, and news.
//
// Every dashboard section is produced independently: a provider outage or a
// company with too little history degrades that one section to an error
// while the rest of the analysis still renders.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/atuladas/finvar/internal/analysis/fundamental"
	"github.com/atuladas/finvar/internal/analysis/technical"
	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/internal/news"
	"github.com/atuladas/finvar/internal/predict"
	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/statement"
	"github.com/atuladas/finvar/pkg/models"
	"github.com/atuladas/finvar/pkg/utils"
)

const defaultNewsLimit = 10

// Service orchestrates all dashboard sections for a ticker.
type Service struct {
	registry   *provider.Registry
	news       *news.Service
	predictor  predict.Predictor
	featureCfg predict.FeatureConfig

	// statements caches the three-statement bundle per symbol; group
	// collapses concurrent fetches of the same bundle.
	statements *infra.Cache
	group      singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithNews sets the news source.
func WithNews(n *news.Service) Option {
	return func(s *Service) { s.news = n }
}

// WithPredictor sets the EPS prediction model. Without one, the prediction
// section reports prediction_failed.
func WithPredictor(p predict.Predictor) Option {
	return func(s *Service) { s.predictor = p }
}

// WithFeatureConfig overrides the feature builder thresholds.
func WithFeatureConfig(cfg predict.FeatureConfig) Option {
	return func(s *Service) { s.featureCfg = cfg }
}

// WithStatementTTL overrides how long statement bundles are cached.
func WithStatementTTL(ttl time.Duration) Option {
	return func(s *Service) { s.statements = infra.NewCache(ttl) }
}

// New creates a dashboard service on top of a provider registry.
func New(registry *provider.Registry, opts ...Option) *Service {
	s := &Service{
		registry:   registry,
		news:       news.New(),
		featureCfg: predict.DefaultFeatureConfig(),
		statements: infra.NewCache(30 * time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// statementBundle holds a company's three statements. Statements a provider
// could not supply are empty, not nil, so downstream math sees them as
// missing line items.
type statementBundle struct {
	income   *statement.Statement
	balance  *statement.Statement
	cashflow *statement.Statement
}

// Analyze produces the full dashboard for one ticker. Sections run
// concurrently; each failure is confined to its own section.
func (s *Service) Analyze(ctx context.Context, ticker string) (*models.CompanyAnalysis, error) {
	symbol := utils.NormalizeTicker(ticker)
	if err := utils.ValidateTicker(symbol); err != nil {
		return nil, err
	}

	out := &models.CompanyAnalysis{
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.Profile(gctx, symbol)
		if err != nil {
			out.ProfileErr = ClassifyError(err)
			return nil
		}
		out.Profile = profile
		out.Provider = s.profileProvider()
		return nil
	})

	g.Go(func() error {
		stats, err := s.PriceStats(gctx, symbol)
		if err != nil {
			out.PriceErr = ClassifyError(err)
			return nil
		}
		out.Price = stats
		return nil
	})

	g.Go(func() error {
		frame, err := s.Ratios(gctx, symbol)
		if err != nil {
			out.RatiosErr = ClassifyError(err)
			return nil
		}
		out.Ratios = frame
		return nil
	})

	g.Go(func() error {
		score, err := s.MScore(gctx, symbol)
		if err != nil {
			out.MScoreErr = ClassifyError(err)
			return nil
		}
		out.MScore = score
		return nil
	})

	g.Go(func() error {
		pred, err := s.Predict(gctx, symbol)
		if err != nil {
			out.PredictionErr = ClassifyError(err)
			return nil
		}
		out.Prediction = pred
		return nil
	})

	g.Go(func() error {
		items, err := s.news.CompanyNews(gctx, symbol, defaultNewsLimit)
		if err != nil {
			out.NewsErr = ClassifyError(err)
			return nil
		}
		out.News = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the company profile section.
func (s *Service) Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	symbol := utils.NormalizeTicker(ticker)
	res, err := s.registry.FetchWithFallback(ctx, provider.ModelCompanyProfile, provider.QueryParams{
		provider.ParamSymbol: symbol,
	})
	if err != nil {
		return nil, err
	}
	profile, ok := res.Data.(*models.CompanyProfile)
	if !ok {
		return nil, fmt.Errorf("unexpected profile payload %T", res.Data)
	}
	return profile, nil
}

// PriceStats returns recent price behavior for the dashboard header.
func (s *Service) PriceStats(ctx context.Context, ticker string) (*models.PriceStats, error) {
	symbol := utils.NormalizeTicker(ticker)
	res, err := s.registry.FetchWithFallback(ctx, provider.ModelEquityHistorical, provider.QueryParams{
		provider.ParamSymbol: symbol,
	})
	if err != nil {
		return nil, err
	}
	bars, ok := res.Data.([]models.OHLCV)
	if !ok {
		return nil, fmt.Errorf("unexpected price payload %T", res.Data)
	}
	return technical.PriceStats(symbol, bars), nil
}

// History returns the raw daily bars for charting.
func (s *Service) History(ctx context.Context, ticker, startDate, endDate string) ([]models.OHLCV, error) {
	symbol := utils.NormalizeTicker(ticker)
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if startDate != "" {
		params[provider.ParamStartDate] = startDate
	}
	if endDate != "" {
		params[provider.ParamEndDate] = endDate
	}
	res, err := s.registry.FetchWithFallback(ctx, provider.ModelEquityHistorical, params)
	if err != nil {
		return nil, err
	}
	bars, ok := res.Data.([]models.OHLCV)
	if !ok {
		return nil, fmt.Errorf("unexpected price payload %T", res.Data)
	}
	return bars, nil
}

// Ratios returns the multi-year ratio frame section.
func (s *Service) Ratios(ctx context.Context, ticker string) (*models.RatioFrame, error) {
	symbol := utils.NormalizeTicker(ticker)
	b, err := s.fetchStatements(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fundamental.Ratios(symbol, b.income, b.balance, b.cashflow), nil
}

// MScore returns the Beneish M-Score section.
func (s *Service) MScore(ctx context.Context, ticker string) (*models.MScore, error) {
	symbol := utils.NormalizeTicker(ticker)
	b, err := s.fetchStatements(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fundamental.MScore(symbol, b.income, b.balance, b.cashflow)
}

// Predict returns the EPS prediction section.
func (s *Service) Predict(ctx context.Context, ticker string) (*models.Prediction, error) {
	symbol := utils.NormalizeTicker(ticker)
	if s.predictor == nil {
		return nil, &predict.Error{Hint: "no prediction model configured"}
	}

	b, err := s.fetchStatements(ctx, symbol)
	if err != nil {
		return nil, err
	}

	in := predict.Inputs{Income: b.income, Balance: b.balance}
	var warnings []string
	profile, err := s.Profile(ctx, symbol)
	if err != nil {
		warnings = append(warnings, "trailing EPS unavailable: "+err.Error())
	} else {
		in.TrailingEPS = profile.TrailingEPS
		if profile.TrailingEPS == nil {
			warnings = append(warnings, "profile carries no trailing EPS")
		}
	}

	features, rescaled := predict.BuildFeatures(in, s.featureCfg)
	eps, err := s.predictor.Predict(features)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, predict.AdvisoryWarnings(eps, in.TrailingEPS)...)

	return &models.Prediction{
		Symbol:       symbol,
		PredictedEPS: eps,
		TrailingEPS:  in.TrailingEPS,
		Features:     features,
		FeatureNames: predict.FeatureNames,
		Rescaled:     rescaled,
		Warnings:     warnings,
	}, nil
}

// News returns recent headlines for a ticker.
func (s *Service) News(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return s.news.CompanyNews(ctx, utils.NormalizeTicker(ticker), limit)
}

// Filings returns recent SEC filings for a ticker, optionally filtered by
// form type.
func (s *Service) Filings(ctx context.Context, ticker, form string, limit int) ([]models.Filing, error) {
	symbol := utils.NormalizeTicker(ticker)
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if form != "" {
		params["form"] = form
	}
	if limit > 0 {
		params[provider.ParamLimit] = fmt.Sprintf("%d", limit)
	}
	res, err := s.registry.FetchWithFallback(ctx, provider.ModelCompanyFilings, params)
	if err != nil {
		return nil, err
	}
	filings, ok := res.Data.([]models.Filing)
	if !ok {
		return nil, fmt.Errorf("unexpected filings payload %T", res.Data)
	}
	return filings, nil
}

// fetchStatements loads the three-statement bundle for a symbol, caching it
// and collapsing concurrent loads. Individual statements a provider cannot
// supply come back empty rather than failing the bundle; the bundle fails
// only when the income statement itself is unavailable, since nothing
// downstream works without it.
func (s *Service) fetchStatements(ctx context.Context, symbol string) (*statementBundle, error) {
	if cached, ok := s.statements.Get(symbol); ok {
		return cached.(*statementBundle), nil
	}

	v, err, _ := s.group.Do(symbol, func() (any, error) {
		income, err := s.fetchStatement(ctx, symbol, provider.ModelIncomeStatement)
		if err != nil {
			return nil, err
		}
		b := &statementBundle{
			income:   income,
			balance:  statement.New(statement.TypeBalance),
			cashflow: statement.New(statement.TypeCashFlow),
		}
		if balance, err := s.fetchStatement(ctx, symbol, provider.ModelBalanceSheet); err == nil {
			b.balance = balance
		}
		if cashflow, err := s.fetchStatement(ctx, symbol, provider.ModelCashFlowStatement); err == nil {
			b.cashflow = cashflow
		}
		s.statements.Set(symbol, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*statementBundle), nil
}

func (s *Service) fetchStatement(ctx context.Context, symbol string, model provider.ModelType) (*statement.Statement, error) {
	res, err := s.registry.FetchWithFallback(ctx, model, provider.QueryParams{
		provider.ParamSymbol: symbol,
	})
	if err != nil {
		return nil, err
	}
	stmt, ok := res.Data.(*statement.Statement)
	if !ok {
		return nil, fmt.Errorf("unexpected %s payload %T", model, res.Data)
	}
	return stmt, nil
}

// Providers lists the registered data providers and their model coverage.
func (s *Service) Providers() []provider.ProviderInfo {
	return s.registry.List()
}

// profileProvider reports which provider is first in line for profiles,
// for display in the dashboard header.
func (s *Service) profileProvider() string {
	if name, ok := s.registry.DefaultProvider(provider.ModelCompanyProfile); ok {
		return name
	}
	return ""
}

// ClassifyError folds an error into the dashboard error taxonomy.
func ClassifyError(err error) *models.SectionError {
	if err == nil {
		return nil
	}

	kind := models.ErrKindProviderError
	var noData *provider.ErrNoData
	var notFound *provider.ErrProviderNotFound
	var notSupported *provider.ErrModelNotSupported
	var predErr *predict.Error
	switch {
	case infra.IsRateLimited(err):
		kind = models.ErrKindRateLimited
	case errors.As(err, &noData):
		kind = models.ErrKindDataUnavailable
	case errors.Is(err, fundamental.ErrInsufficientHistory):
		kind = models.ErrKindInsufficientHistory
	case errors.As(err, &predErr):
		kind = models.ErrKindPredictionFailed
	case errors.As(err, &notFound), errors.As(err, &notSupported):
		kind = models.ErrKindDataUnavailable
	}

	return &models.SectionError{Kind: kind, Message: err.Error()}
}
