// Package api provides the HTTP REST API server for FinVAR.
//
// It exposes the dashboard sections (profile, price, ratios, M-Score, EPS
// prediction, news, filings) as JSON endpoints plus HTML report and SVG
// chart rendering.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atuladas/finvar/internal/config"
	"github.com/atuladas/finvar/internal/dashboard"
	"github.com/atuladas/finvar/internal/providers/edgar"
	"github.com/atuladas/finvar/internal/report"
	"github.com/atuladas/finvar/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *dashboard.Service
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, svc *dashboard.Service) *Server {
	srv := &Server{cfg: cfg, svc: svc}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown on SIGINT or
// SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Full dashboard analysis with per-section error isolation.
		r.Get("/analysis/{ticker}", s.handleAnalysis)

		// Individual sections.
		r.Get("/profile/{ticker}", s.handleProfile)
		r.Get("/price/{ticker}", s.handlePrice)
		r.Get("/history/{ticker}", s.handleHistory)
		r.Get("/ratios/{ticker}", s.handleRatios)
		r.Get("/mscore/{ticker}", s.handleMScore)
		r.Get("/predict/{ticker}", s.handlePredict)
		r.Get("/news/{ticker}", s.handleNews)
		r.Get("/filings/{ticker}", s.handleFilings)
		r.Get("/tenk/{ticker}", s.handleTenK)

		// Rendered output.
		r.Get("/report/{ticker}", s.handleReport)
		r.Get("/chart/{ticker}", s.handleChart)
		r.Get("/chart/{ticker}/{metric}", s.handleMetricChart)

		// Introspection.
		r.Get("/providers", s.handleProviders)
		r.Get("/config/keys", s.handleConfigKeys)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"` // section error taxonomy kind
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	analysis, err := s.svc.Analyze(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Profile(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: profile})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.PriceStats(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	bars, err := s.svc.History(r.Context(), chi.URLParam(r, "ticker"),
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: bars})
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	frame, err := s.svc.Ratios(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: frame})
}

func (s *Server) handleMScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.MScore(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: score})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	pred, err := s.svc.Predict(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: pred})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	items, err := s.svc.News(r.Context(), chi.URLParam(r, "ticker"), limit)
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleFilings(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	form := r.URL.Query().Get("form")
	filings, err := s.svc.Filings(r.Context(), chi.URLParam(r, "ticker"), form, limit)
	if err != nil {
		writeSectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: filings})
}

func (s *Server) handleTenK(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	filings, err := s.svc.Filings(r.Context(), ticker, "10-K", 1)
	if err != nil {
		writeSectionError(w, err)
		return
	}
	if len(filings) == 0 {
		writeError(w, http.StatusNotFound, "no 10-K filing found for "+ticker)
		return
	}

	maxRunes := queryInt(r, "max", edgar.DefaultDocumentRunes)
	text, truncated, err := edgar.DocumentText(r.Context(), filings[0].URL,
		s.cfg.Providers.EdgarUserAgent, maxRunes)
	if err != nil {
		writeSectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: models.FilingDocument{
		Filing:    filings[0],
		Text:      text,
		Truncated: truncated,
	}})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	analysis, err := s.svc.Analyze(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := report.DefaultReportConfig()
	// Price history is best-effort; the report renders without it.
	if bars, err := s.svc.History(r.Context(), ticker, "", ""); err == nil {
		cfg.History = bars
	}

	html, err := report.GenerateHTML(analysis, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html)) //nolint:errcheck
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	bars, err := s.svc.History(r.Context(), ticker,
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeSectionError(w, err)
		return
	}

	cfg := report.DefaultChartConfig()
	cfg.Title = ticker + " Price"
	svg := report.CandlestickChart(bars, nil, cfg)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

func (s *Server) handleMetricChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	metric := chi.URLParam(r, "metric")

	cfg := report.DefaultChartConfig()
	cfg.Title = ticker + " " + metric

	if metric == "price" {
		s.handleChart(w, r)
		return
	}

	frame, err := s.svc.Ratios(r.Context(), ticker)
	if err != nil {
		writeSectionError(w, err)
		return
	}

	svg, err := report.MetricChart(frame, metric, cfg)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error()+
			"; known metrics: price, "+strings.Join(report.ChartableMetrics(), ", "))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.svc.Providers(),
	})
}

func (s *Server) handleConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// ============================================================
// Helpers
// ============================================================

// Version is stamped at build time via -ldflags.
var Version = "dev"

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// writeSectionError maps the dashboard error taxonomy to HTTP status codes
// and carries the kind in the response envelope.
func writeSectionError(w http.ResponseWriter, err error) {
	se := dashboard.ClassifyError(err)
	status := http.StatusBadGateway
	switch se.Kind {
	case models.ErrKindDataUnavailable:
		status = http.StatusNotFound
	case models.ErrKindRateLimited:
		status = http.StatusTooManyRequests
	case models.ErrKindInsufficientHistory, models.ErrKindPredictionFailed:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   se.Message,
		Kind:    se.Kind,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
