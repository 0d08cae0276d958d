// FinVAR — Financial Valuation, Analysis & Reporting
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atuladas/finvar/api"
	"github.com/atuladas/finvar/internal/config"
	"github.com/atuladas/finvar/internal/dashboard"
	"github.com/atuladas/finvar/internal/news"
	"github.com/atuladas/finvar/internal/predict"
	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/providers"
	"github.com/atuladas/finvar/internal/providers/edgar"
	"github.com/atuladas/finvar/internal/report"
	"github.com/atuladas/finvar/pkg/models"
	"github.com/atuladas/finvar/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finvar",
	Short: "FinVAR — Financial Valuation, Analysis & Reporting",
	Long: `FinVAR (Financial Valuation, Analysis & Reporting)
A financial dashboard pipeline for US equities: company profiles, price
statistics, fundamental ratios, Beneish M-Score earnings-quality screening,
EPS prediction, SEC filings and news, with HTML/PDF report output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(ratiosCmd)
	rootCmd.AddCommand(mscoreCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(tenkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildService wires the provider registry and dashboard service from the
// loaded config.
func buildService() (*dashboard.Service, error) {
	keys := providers.Keys{
		FMP:            cfg.Providers.FMPKey,
		AlphaVantage:   cfg.Providers.AlphaVantage,
		EdgarUserAgent: cfg.Providers.EdgarUserAgent,
	}

	reg, err := providers.NewRegistry(keys)
	if err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}

	if pref := cfg.Providers.Preferred; pref != "" {
		// Route every model the preferred provider covers through it. SetDefault
		// errors just mean the provider doesn't carry that model.
		for _, m := range []provider.ModelType{
			provider.ModelCompanyProfile,
			provider.ModelEquityQuote,
			provider.ModelEquityHistorical,
			provider.ModelIncomeStatement,
			provider.ModelBalanceSheet,
			provider.ModelCashFlowStatement,
		} {
			reg.SetDefault(m, pref) //nolint:errcheck
		}
	}

	opts := []dashboard.Option{}
	if cfg.Cache.StatementTTL > 0 {
		opts = append(opts, dashboard.WithStatementTTL(time.Duration(cfg.Cache.StatementTTL)*time.Second))
	}

	if cfg.News.FeedURL != "" {
		opts = append(opts, dashboard.WithNews(news.NewWithFeed(cfg.News.FeedURL)))
	} else {
		opts = append(opts, dashboard.WithNews(news.New()))
	}

	if cfg.Predictor.ModelPath != "" {
		model, err := predict.LoadModel(cfg.Predictor.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("loading prediction model: %w", err)
		}
		opts = append(opts,
			dashboard.WithPredictor(model),
			dashboard.WithFeatureConfig(predict.FeatureConfig{
				EPSRescaleThreshold:     cfg.Predictor.EPSRescaleThreshold,
				EPSRescaleFactor:        cfg.Predictor.EPSRescaleFactor,
				RevenueRescaleThreshold: cfg.Predictor.RevenueRescaleThreshold,
				RevenueRescaleFactor:    cfg.Predictor.RevenueRescaleFactor,
			}),
		)
	}

	return dashboard.New(reg, opts...), nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("FinVAR %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Run the full dashboard analysis on a stock",
	Long: `Run all dashboard sections on a stock: profile, price statistics,
financial ratios, Beneish M-Score, EPS prediction and recent news. Sections
fail independently; one bad upstream never blanks the rest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}

		ticker := utils.NormalizeTicker(args[0])
		fmt.Printf("🔍 Analyzing %s...\n\n", ticker)

		analysis, err := svc.Analyze(cmd.Context(), ticker)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		pdf, _ := cmd.Flags().GetBool("pdf")
		pdf = pdf || strings.HasSuffix(output, ".pdf")

		rcfg := report.DefaultReportConfig()
		if pdf || strings.HasSuffix(output, ".html") {
			// Charts want price history; best-effort.
			if bars, err := svc.History(cmd.Context(), ticker, "", ""); err == nil {
				rcfg.History = bars
			}
			html, err := report.GenerateHTML(analysis, rcfg)
			if err != nil {
				return err
			}
			if pdf {
				if output == "" {
					output = strings.ToLower(ticker) + "_report.pdf"
				}
				pcfg := report.DefaultPDFConfig()
				pcfg.OutputPath = output
				if err := report.GeneratePDF(html, pcfg); err != nil {
					return err
				}
				fmt.Printf("📄 Report written to %s\n", output)
				return nil
			}
			if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
				return err
			}
			fmt.Printf("📄 Report written to %s\n", output)
			return nil
		}

		text, err := report.GenerateText(analysis, rcfg)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("output", "o", "", "write report to file (.html or .pdf)")
	analyzeCmd.Flags().Bool("pdf", false, "generate PDF report")
}

// --- Profile Command ---

var profileCmd = &cobra.Command{
	Use:   "profile [ticker]",
	Short: "Show the company profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		p, err := svc.Profile(cmd.Context(), args[0])
		if err != nil {
			return sectionErr(err)
		}
		fmt.Printf("🏢 %s (%s)\n", p.Name, p.Symbol)
		if p.Sector != "" {
			fmt.Printf("   Sector:     %s / %s\n", p.Sector, p.Industry)
		}
		if p.MarketCap != nil {
			fmt.Printf("   Market Cap: %s\n", utils.FormatUSDCompact(*p.MarketCap))
		}
		if p.TrailingPE != nil {
			fmt.Printf("   P/E:        %.2f\n", *p.TrailingPE)
		}
		if p.TrailingEPS != nil {
			fmt.Printf("   EPS (ttm):  %.2f\n", *p.TrailingEPS)
		}
		if p.Beta != nil {
			fmt.Printf("   Beta:       %.2f\n", *p.Beta)
		}
		if p.Description != "" {
			fmt.Printf("\n%s\n", p.Description)
		}
		return nil
	},
}

// --- Price Command ---

var priceCmd = &cobra.Command{
	Use:   "price [ticker]",
	Short: "Show recent price statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		st, err := svc.PriceStats(cmd.Context(), args[0])
		if err != nil {
			return sectionErr(err)
		}
		fmt.Printf("💹 %s\n", st.Symbol)
		fmt.Printf("   Last:       %s\n", utils.FormatUSD(st.Last))
		fmt.Printf("   Change:     %+.2f (%+.2f%%)\n", st.Change, st.ChangePct)
		fmt.Printf("   Volatility: %s (annualized)\n", fmtMetric(st.AnnualizedVolatility, "%.1f%%"))
		fmt.Printf("   Bars:       %d\n", st.Bars)
		return nil
	},
}

// --- Ratios Command ---

var ratiosCmd = &cobra.Command{
	Use:   "ratios [ticker]",
	Short: "Show multi-year financial ratios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		frame, err := svc.Ratios(cmd.Context(), args[0])
		if err != nil {
			return sectionErr(err)
		}

		fmt.Printf("📈 Financial Ratios: %s\n\n", frame.Symbol)
		fmt.Printf("   %-18s", "")
		for _, y := range frame.Years {
			fmt.Printf("%10s", fmt.Sprintf("FY%d", y.Year))
		}
		fmt.Println()

		rows := []struct {
			label  string
			format string
			pick   func(models.YearRatios) models.Metric
		}{
			{"ROE", "%.1f%%", func(y models.YearRatios) models.Metric { return y.ROE }},
			{"Gross Margin", "%.1f%%", func(y models.YearRatios) models.Metric { return y.GrossMargin }},
			{"Net Margin", "%.1f%%", func(y models.YearRatios) models.Metric { return y.NetMargin }},
			{"Asset Turnover", "%.2f", func(y models.YearRatios) models.Metric { return y.AssetTurnover }},
			{"Leverage", "%.2f", func(y models.YearRatios) models.Metric { return y.Leverage }},
			{"Debt/Equity", "%.2f", func(y models.YearRatios) models.Metric { return y.DebtToEquity }},
			{"Current Ratio", "%.2f", func(y models.YearRatios) models.Metric { return y.CurrentRatio }},
			{"FCF/Revenue", "%.1f%%", func(y models.YearRatios) models.Metric { return y.FCFToRevenue }},
			{"Dividend Payout", "%.1f%%", func(y models.YearRatios) models.Metric { return y.DividendPayout }},
		}
		for _, row := range rows {
			fmt.Printf("   %-18s", row.label)
			for _, y := range frame.Years {
				fmt.Printf("%10s", fmtMetric(row.pick(y), row.format))
			}
			fmt.Println()
		}

		fmt.Println("\n   Growth (YoY):")
		fmt.Printf("   %-18s%10s\n", "Revenue", fmtMetric(frame.RevenueGrowthYoY, "%.1f%%"))
		fmt.Printf("   %-18s%10s\n", "Net Income", fmtMetric(frame.NetIncomeGrowthYoY, "%.1f%%"))
		fmt.Printf("   %-18s%10s\n", "EBITDA", fmtMetric(frame.EBITDAGrowthYoY, "%.1f%%"))
		fmt.Printf("   %-18s%10s\n", "Operating CF", fmtMetric(frame.OCFGrowthYoY, "%.1f%%"))
		return nil
	},
}

// --- M-Score Command ---

var mscoreCmd = &cobra.Command{
	Use:   "mscore [ticker]",
	Short: "Compute the Beneish M-Score earnings-quality screen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		m, err := svc.MScore(cmd.Context(), args[0])
		if err != nil {
			return sectionErr(err)
		}

		fmt.Printf("🧮 Beneish M-Score: %s (FY%d vs FY%d)\n\n", m.Symbol, m.LatestYear, m.PriorYear)
		sub := []struct {
			name string
			m    models.Metric
		}{
			{"DSRI (receivables)", m.DSRI},
			{"GMI  (gross margin)", m.GMI},
			{"AQI  (asset quality)", m.AQI},
			{"SGI  (sales growth)", m.SGI},
			{"DEPI (depreciation)", m.DEPI},
			{"SGAI (SG&A)", m.SGAI},
			{"LVGI (leverage)", m.LVGI},
			{"TATA (accruals)", m.TATA},
		}
		for _, s := range sub {
			fmt.Printf("   %-22s %s\n", s.name, fmtMetric(s.m, "%.3f"))
		}
		fmt.Printf("\n   Score:   %s (threshold -2.22)\n", fmtMetric(m.Score, "%.2f"))
		fmt.Printf("   Verdict: %s\n", m.Verdict)
		return nil
	},
}

// --- Predict Command ---

var predictCmd = &cobra.Command{
	Use:   "predict [ticker]",
	Short: "Predict next-year EPS from fundamentals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		pred, err := svc.Predict(cmd.Context(), args[0])
		if err != nil {
			return sectionErr(err)
		}

		fmt.Printf("🔮 EPS Prediction: %s\n\n", pred.Symbol)
		fmt.Printf("   Predicted EPS: %.2f\n", pred.PredictedEPS)
		if pred.TrailingEPS != nil {
			direction := "↑"
			if pred.PredictedEPS < *pred.TrailingEPS {
				direction = "↓"
			}
			fmt.Printf("   Trailing EPS:  %.2f %s\n", *pred.TrailingEPS, direction)
		}
		if pred.Rescaled {
			fmt.Println("   (inputs looked like raw dollars; rescaled to millions)")
		}
		for _, w := range pred.Warnings {
			fmt.Printf("   ⚠️  %s\n", w)
		}
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show recent headlines for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		items, err := svc.News(cmd.Context(), args[0], limit)
		if err != nil {
			return sectionErr(err)
		}

		fmt.Printf("📰 Recent News: %s\n\n", utils.NormalizeTicker(args[0]))
		if len(items) == 0 {
			fmt.Println("   No recent headlines.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("   %s  %s\n", item.PublishedAt.Format("2006-01-02"), item.Title)
			if item.Link != "" {
				fmt.Printf("              %s\n", item.Link)
			}
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum number of headlines")
}

// --- Filings Command ---

var filingsCmd = &cobra.Command{
	Use:   "filings [ticker]",
	Short: "List recent SEC filings for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		form, _ := cmd.Flags().GetString("form")
		limit, _ := cmd.Flags().GetInt("limit")
		filings, err := svc.Filings(cmd.Context(), args[0], form, limit)
		if err != nil {
			return sectionErr(err)
		}

		fmt.Printf("🗂  SEC Filings: %s\n\n", utils.NormalizeTicker(args[0]))
		for _, f := range filings {
			fmt.Printf("   %s  %-8s %s\n", f.FiledAt.Format("2006-01-02"), f.FormType, f.URL)
		}
		if len(filings) == 0 {
			fmt.Println("   No filings found.")
		}
		return nil
	},
}

func init() {
	filingsCmd.Flags().String("form", "", "filter by form type (10-K, 10-Q, 8-K, ...)")
	filingsCmd.Flags().Int("limit", 20, "maximum number of filings")
}

// --- 10-K Command ---

var tenkCmd = &cobra.Command{
	Use:   "tenk [ticker]",
	Short: "Fetch and extract the latest 10-K filing text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}

		filings, err := svc.Filings(cmd.Context(), args[0], "10-K", 1)
		if err != nil {
			return sectionErr(err)
		}
		if len(filings) == 0 {
			return fmt.Errorf("no 10-K filing found for %s", utils.NormalizeTicker(args[0]))
		}

		maxRunes, _ := cmd.Flags().GetInt("max")
		text, truncated, err := edgar.DocumentText(cmd.Context(), filings[0].URL,
			cfg.Providers.EdgarUserAgent, maxRunes)
		if err != nil {
			return err
		}

		f := filings[0]
		fmt.Printf("🗂  %s 10-K filed %s (%s)\n\n", f.Symbol, f.FiledAt.Format("2006-01-02"), f.AccessionNo)
		fmt.Println(text)
		if truncated {
			fmt.Println("\n[truncated]")
		}

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Printf("\n📄 Text written to %s\n", output)
		}
		return nil
	},
}

func init() {
	tenkCmd.Flags().Int("max", edgar.DefaultDocumentRunes, "maximum extracted text length (runes)")
	tenkCmd.Flags().StringP("output", "o", "", "also write extracted text to a file")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting FinVAR API server on %s\n", addr)

		srv := api.NewServer(cfg, svc)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  FinVAR — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):  %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Preferred Provider: %s\n", orDash(cfg.Providers.Preferred))
		fmt.Printf("    Prediction Model:   %s\n", orDash(cfg.Predictor.ModelPath))
		fmt.Printf("    Statement Cache:    %ds\n", cfg.Cache.StatementTTL)
		fmt.Printf("    API Server:         %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println()

		// Registered providers
		fmt.Println("  Providers:")
		if svc, err := buildService(); err == nil {
			for _, p := range svc.Providers() {
				fmt.Printf("    %-15s %d models\n", p.Name, len(p.Models))
			}
		} else {
			fmt.Printf("    registry error: %v\n", err)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Helpers ---

// sectionErr translates a dashboard error into a readable CLI error with its
// taxonomy kind.
func sectionErr(err error) error {
	se := dashboard.ClassifyError(err)
	if se == nil {
		return err
	}
	return fmt.Errorf("[%s] %s", se.Kind, se.Message)
}

func fmtMetric(m models.Metric, format string) string {
	if !m.Valid {
		return "—"
	}
	return fmt.Sprintf(format, m.Value)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
