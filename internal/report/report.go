package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/atuladas/finvar/pkg/models"
	"github.com/atuladas/finvar/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator — Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

// ReportSection identifies a dashboard section to include or exclude.
type ReportSection string

const (
	SectionProfile    ReportSection = "profile"
	SectionPrice      ReportSection = "price"
	SectionRatios     ReportSection = "ratios"
	SectionMScore     ReportSection = "mscore"
	SectionPrediction ReportSection = "prediction"
	SectionNews       ReportSection = "news"
)

// AllSections returns all report sections in display order.
func AllSections() []ReportSection {
	return []ReportSection{
		SectionProfile,
		SectionPrice,
		SectionRatios,
		SectionMScore,
		SectionPrediction,
		SectionNews,
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format   ReportFormat    // output format (default: HTML)
	Sections []ReportSection // sections to include (default: all)
	Title    string          // custom report title (optional)
	History  []models.OHLCV  // daily bars for the price chart (optional)
	ChartCfg ChartConfig     // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatHTML,
		Sections: AllSections(),
		ChartCfg: DefaultChartConfig(),
	}
}

func (rc ReportConfig) hasSection(s ReportSection) bool {
	for _, sec := range rc.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Data — Flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template. Every field
// is preformatted so the template stays free of logic.
type ReportData struct {
	// Header
	Title       string
	Ticker      string
	CompanyName string
	Exchange    string
	Sector      string
	Industry    string
	Provider    string
	GeneratedAt string

	// Price
	LastPrice  string
	Change     string
	ChangePct  string
	ChangeUp   bool
	Volatility string
	MarketCap  string
	PE         string
	Beta       string

	// Ratios
	RatioRows  []RatioRow
	GrowthRows []RatioRow

	// M-Score
	MScoreValue   string
	MScoreVerdict string
	MScoreFlagged bool
	MScoreRows    []RatioRow

	// Prediction
	PredictedEPS string
	TrailingEPS  string
	EPSDirection string // "above" or "below" trailing
	Warnings     []string

	// News
	NewsRows []NewsRow

	// Section errors — non-empty when the section failed to build.
	ProfileErr    string
	PriceErr      string
	RatiosErr     string
	MScoreErr     string
	PredictionErr string
	NewsErr       string

	// Charts (embedded SVG)
	PriceChart  template.HTML
	RatioChart  template.HTML
	MScoreChart template.HTML
	MScoreDial  template.HTML

	// Section visibility flags
	ShowProfile    bool
	ShowPrice      bool
	ShowRatios     bool
	ShowMScore     bool
	ShowPrediction bool
	ShowNews       bool
}

// RatioRow is a label/value pair for metric tables.
type RatioRow struct {
	Label      string
	Value      string
	Assessment string
}

// NewsRow is a flattened headline for template rendering.
type NewsRow struct {
	Title     string
	Link      string
	Source    string
	Published string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateHTML renders the dashboard analysis as a standalone HTML page.
func GenerateHTML(analysis *models.CompanyAnalysis, cfg ReportConfig) (string, error) {
	if analysis == nil {
		return "", fmt.Errorf("analysis is nil")
	}

	data := buildReportData(analysis, cfg)

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// GenerateText renders the dashboard analysis as plain text for the CLI.
func GenerateText(analysis *models.CompanyAnalysis, cfg ReportConfig) (string, error) {
	if analysis == nil {
		return "", fmt.Errorf("analysis is nil")
	}
	return renderTextReport(buildReportData(analysis, cfg)), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal — Build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(a *models.CompanyAnalysis, cfg ReportConfig) ReportData {
	data := ReportData{
		Title:       cfg.Title,
		Ticker:      a.Symbol,
		Provider:    a.Provider,
		GeneratedAt: a.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),

		ShowProfile:    cfg.hasSection(SectionProfile),
		ShowPrice:      cfg.hasSection(SectionPrice),
		ShowRatios:     cfg.hasSection(SectionRatios),
		ShowMScore:     cfg.hasSection(SectionMScore),
		ShowPrediction: cfg.hasSection(SectionPrediction),
		ShowNews:       cfg.hasSection(SectionNews),
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("%s — Company Analysis", a.Symbol)
	}

	data.ProfileErr = sectionErrMessage(a.ProfileErr)
	data.PriceErr = sectionErrMessage(a.PriceErr)
	data.RatiosErr = sectionErrMessage(a.RatiosErr)
	data.MScoreErr = sectionErrMessage(a.MScoreErr)
	data.PredictionErr = sectionErrMessage(a.PredictionErr)
	data.NewsErr = sectionErrMessage(a.NewsErr)

	if p := a.Profile; p != nil {
		data.CompanyName = p.Name
		data.Exchange = p.Exchange
		data.Sector = p.Sector
		data.Industry = p.Industry
		if p.MarketCap != nil {
			data.MarketCap = utils.FormatUSDCompact(*p.MarketCap)
		}
		if p.TrailingPE != nil {
			data.PE = fmt.Sprintf("%.2f", *p.TrailingPE)
		}
		if p.Beta != nil {
			data.Beta = fmt.Sprintf("%.2f", *p.Beta)
		}
	}

	if q := a.Price; q != nil {
		data.LastPrice = utils.FormatUSD(q.Last)
		data.Change = utils.FormatUSD(q.Change)
		data.ChangePct = utils.FormatPercent(q.ChangePct)
		data.ChangeUp = q.Change >= 0
		if q.AnnualizedVolatility.Valid {
			data.Volatility = utils.FormatPercent(q.AnnualizedVolatility.Value)
		}
	}

	if a.Ratios != nil {
		data.RatioRows = buildRatioRows(a.Ratios)
		data.GrowthRows = buildGrowthRows(a.Ratios)
		chartCfg := cfg.ChartCfg
		chartCfg.Title = fmt.Sprintf("%s Profitability Trend", a.Symbol)
		data.RatioChart = template.HTML(ratioTrendChart(a.Ratios, chartCfg))
	}

	if m := a.MScore; m != nil {
		if m.Score.Valid {
			data.MScoreValue = fmt.Sprintf("%.2f", m.Score.Value)
			data.MScoreFlagged = m.Score.Value > -2.22
			data.MScoreDial = template.HTML(ScoreDial(m.Score.Value, -5, 1, -2.22, "Beneish M-Score", 180))
		}
		data.MScoreVerdict = m.Verdict
		data.MScoreRows = buildMScoreRows(m)
		chartCfg := cfg.ChartCfg
		chartCfg.Title = fmt.Sprintf("M-Score Sub-Indices (FY%d vs FY%d)", m.LatestYear, m.PriorYear)
		data.MScoreChart = template.HTML(HorizontalBarChart(mscoreBars(m), chartCfg))
	}

	if pr := a.Prediction; pr != nil {
		data.PredictedEPS = fmt.Sprintf("%.2f", pr.PredictedEPS)
		data.Warnings = pr.Warnings
		if pr.TrailingEPS != nil {
			data.TrailingEPS = fmt.Sprintf("%.2f", *pr.TrailingEPS)
			if pr.PredictedEPS >= *pr.TrailingEPS {
				data.EPSDirection = "above"
			} else {
				data.EPSDirection = "below"
			}
		}
	}

	for _, item := range a.News {
		data.NewsRows = append(data.NewsRows, NewsRow{
			Title:     item.Title,
			Link:      item.Link,
			Source:    item.Source,
			Published: item.PublishedAt.Format("02 Jan 2006"),
		})
	}

	if len(cfg.History) > 0 {
		chartCfg := cfg.ChartCfg
		chartCfg.Title = fmt.Sprintf("%s Price", a.Symbol)
		data.PriceChart = template.HTML(CandlestickChart(cfg.History, nil, chartCfg))
	}

	return data
}

func sectionErrMessage(e *models.SectionError) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func metricCell(m models.Metric, format string) string {
	if !m.Valid {
		return "—"
	}
	return fmt.Sprintf(format, m.Value)
}

func buildRatioRows(f *models.RatioFrame) []RatioRow {
	latest := f.Latest()
	if latest == nil {
		return nil
	}
	return []RatioRow{
		{Label: "ROE", Value: metricCell(latest.ROE, "%.1f%%"), Assessment: latest.ROE.Assessment},
		{Label: "Gross Margin", Value: metricCell(latest.GrossMargin, "%.1f%%"), Assessment: latest.GrossMargin.Assessment},
		{Label: "Net Margin", Value: metricCell(latest.NetMargin, "%.1f%%"), Assessment: latest.NetMargin.Assessment},
		{Label: "Asset Turnover", Value: metricCell(latest.AssetTurnover, "%.2f")},
		{Label: "Leverage", Value: metricCell(latest.Leverage, "%.2f")},
		{Label: "Debt/Equity", Value: metricCell(latest.DebtToEquity, "%.2f"), Assessment: latest.DebtToEquity.Assessment},
		{Label: "Current Ratio", Value: metricCell(latest.CurrentRatio, "%.2f"), Assessment: latest.CurrentRatio.Assessment},
		{Label: "FCF/Revenue", Value: metricCell(latest.FCFToRevenue, "%.1f%%")},
		{Label: "Dividend Payout", Value: metricCell(latest.DividendPayout, "%.1f%%")},
	}
}

func buildGrowthRows(f *models.RatioFrame) []RatioRow {
	return []RatioRow{
		{Label: "Revenue Growth YoY", Value: metricCell(f.RevenueGrowthYoY, "%.1f%%")},
		{Label: "EBITDA Growth YoY", Value: metricCell(f.EBITDAGrowthYoY, "%.1f%%")},
		{Label: "Net Income Growth YoY", Value: metricCell(f.NetIncomeGrowthYoY, "%.1f%%")},
		{Label: "OCF Growth YoY", Value: metricCell(f.OCFGrowthYoY, "%.1f%%")},
	}
}

func buildMScoreRows(m *models.MScore) []RatioRow {
	return []RatioRow{
		{Label: "DSRI (Receivables)", Value: metricCell(m.DSRI, "%.3f")},
		{Label: "GMI (Gross Margin)", Value: metricCell(m.GMI, "%.3f")},
		{Label: "AQI (Asset Quality)", Value: metricCell(m.AQI, "%.3f")},
		{Label: "SGI (Sales Growth)", Value: metricCell(m.SGI, "%.3f")},
		{Label: "DEPI (Depreciation)", Value: metricCell(m.DEPI, "%.3f")},
		{Label: "SGAI (SG&A)", Value: metricCell(m.SGAI, "%.3f")},
		{Label: "LVGI (Leverage)", Value: metricCell(m.LVGI, "%.3f")},
		{Label: "TATA (Accruals)", Value: metricCell(m.TATA, "%.3f")},
	}
}

func mscoreBars(m *models.MScore) []BarItem {
	indices := []struct {
		label string
		v     models.Metric
	}{
		{"DSRI", m.DSRI}, {"GMI", m.GMI}, {"AQI", m.AQI}, {"SGI", m.SGI},
		{"DEPI", m.DEPI}, {"SGAI", m.SGAI}, {"LVGI", m.LVGI}, {"TATA", m.TATA},
	}
	items := make([]BarItem, 0, len(indices))
	for _, idx := range indices {
		if !idx.v.Valid {
			continue
		}
		items = append(items, BarItem{Label: idx.label, Value: idx.v.Value, Color: "#2196f3"})
	}
	return items
}

// ratioTrendChart plots ROE, gross margin and net margin across fiscal
// years. Unavailable years render as gaps.
func ratioTrendChart(f *models.RatioFrame, cfg ChartConfig) string {
	if len(f.Years) == 0 {
		return emptySVG(cfg, "No ratio history")
	}
	labels := make([]string, len(f.Years))
	roe := make([]float64, len(f.Years))
	gross := make([]float64, len(f.Years))
	net := make([]float64, len(f.Years))
	for i, yr := range f.Years {
		labels[i] = fmt.Sprintf("FY%d", yr.Year)
		roe[i] = metricOrNaN(yr.ROE)
		gross[i] = metricOrNaN(yr.GrossMargin)
		net[i] = metricOrNaN(yr.NetMargin)
	}
	return LineChart([]LineChartSeries{
		{Name: "ROE %", Values: roe},
		{Name: "Gross Margin %", Values: gross},
		{Name: "Net Margin %", Values: net},
	}, labels, cfg)
}

func metricOrNaN(m models.Metric) float64 {
	if !m.Valid {
		return math.NaN()
	}
	return m.Value
}

// metricPickers maps chartable metric names to their per-year accessor and
// display label.
var metricPickers = map[string]struct {
	label string
	pick  func(models.YearRatios) models.Metric
}{
	"roe":            {"ROE %", func(y models.YearRatios) models.Metric { return y.ROE }},
	"gross_margin":   {"Gross Margin %", func(y models.YearRatios) models.Metric { return y.GrossMargin }},
	"net_margin":     {"Net Margin %", func(y models.YearRatios) models.Metric { return y.NetMargin }},
	"asset_turnover": {"Asset Turnover", func(y models.YearRatios) models.Metric { return y.AssetTurnover }},
	"leverage":       {"Leverage", func(y models.YearRatios) models.Metric { return y.Leverage }},
	"debt_to_equity": {"Debt/Equity", func(y models.YearRatios) models.Metric { return y.DebtToEquity }},
	"debt_to_assets": {"Debt/Assets", func(y models.YearRatios) models.Metric { return y.DebtToAssets }},
	"current_ratio":  {"Current Ratio", func(y models.YearRatios) models.Metric { return y.CurrentRatio }},
	"fcf":            {"Free Cash Flow", func(y models.YearRatios) models.Metric { return y.FreeCashFlow }},
	"capex":          {"CapEx", func(y models.YearRatios) models.Metric { return y.CapEx }},
	"fcf_to_revenue": {"FCF/Revenue %", func(y models.YearRatios) models.Metric { return y.FCFToRevenue }},
}

// ChartableMetrics lists the metric names MetricChart accepts, sorted.
func ChartableMetrics() []string {
	names := make([]string, 0, len(metricPickers)+1)
	for name := range metricPickers {
		names = append(names, name)
	}
	names = append(names, "payout")
	sort.Strings(names)
	return names
}

// MetricChart renders one named ratio metric across fiscal years as SVG.
// Dollar-denominated metrics (fcf, capex) render as bars, "payout" renders
// payout and retention as paired lines, everything else as a single line.
func MetricChart(f *models.RatioFrame, metric string, cfg ChartConfig) (string, error) {
	if f == nil || len(f.Years) == 0 {
		return emptySVG(cfg, "No ratio history"), nil
	}

	labels := make([]string, len(f.Years))
	for i, yr := range f.Years {
		labels[i] = fmt.Sprintf("FY%d", yr.Year)
	}

	if metric == "payout" {
		payout := make([]float64, len(f.Years))
		retention := make([]float64, len(f.Years))
		for i, yr := range f.Years {
			payout[i] = metricOrNaN(yr.DividendPayout)
			retention[i] = metricOrNaN(yr.RetentionRate)
		}
		return LineChart([]LineChartSeries{
			{Name: "Dividend Payout %", Values: payout},
			{Name: "Retention %", Values: retention},
		}, labels, cfg), nil
	}

	p, ok := metricPickers[metric]
	if !ok {
		return "", fmt.Errorf("unknown chart metric %q", metric)
	}

	switch metric {
	case "fcf", "capex":
		items := make([]BarItem, 0, len(f.Years))
		for i, yr := range f.Years {
			m := p.pick(yr)
			if !m.Valid {
				continue
			}
			items = append(items, BarItem{Label: labels[i], Value: m.Value})
		}
		return HorizontalBarChart(items, cfg), nil
	}

	values := make([]float64, len(f.Years))
	for i, yr := range f.Years {
		values[i] = metricOrNaN(p.pick(yr))
	}
	return LineChart([]LineChartSeries{{Name: p.label, Values: values}}, labels, cfg), nil
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s", d.GeneratedAt))
	if d.Provider != "" {
		sb.WriteString(" | Source: " + d.Provider)
	}
	sb.WriteString("\n" + line + "\n\n")

	if d.ShowProfile {
		if d.ProfileErr != "" {
			sb.WriteString(fmt.Sprintf("  Profile unavailable: %s\n", d.ProfileErr))
		} else if d.CompanyName != "" {
			sb.WriteString(fmt.Sprintf("  %s (%s)", d.CompanyName, d.Ticker))
			if d.Exchange != "" {
				sb.WriteString(" — " + d.Exchange)
			}
			sb.WriteString("\n")
			if d.Sector != "" || d.Industry != "" {
				sb.WriteString(fmt.Sprintf("  Sector: %s | Industry: %s\n", d.Sector, d.Industry))
			}
			if d.MarketCap != "" {
				sb.WriteString(fmt.Sprintf("  Market Cap: %s | P/E: %s | Beta: %s\n", d.MarketCap, orDash(d.PE), orDash(d.Beta)))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowPrice {
		if d.PriceErr != "" {
			sb.WriteString(fmt.Sprintf("  Price unavailable: %s\n", d.PriceErr))
		} else if d.LastPrice != "" {
			sb.WriteString(fmt.Sprintf("  Last: %s (%s, %s)", d.LastPrice, d.Change, d.ChangePct))
			if d.Volatility != "" {
				sb.WriteString(" | Ann. Volatility: " + d.Volatility)
			}
			sb.WriteString("\n")
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowRatios {
		sb.WriteString("\n  ■ FINANCIAL RATIOS\n")
		if d.RatiosErr != "" {
			sb.WriteString(fmt.Sprintf("  Unavailable: %s\n", d.RatiosErr))
		} else {
			for _, r := range d.RatioRows {
				sb.WriteString(fmt.Sprintf("    %-22s %10s", r.Label, r.Value))
				if r.Assessment != "" {
					sb.WriteString("  (" + r.Assessment + ")")
				}
				sb.WriteString("\n")
			}
			for _, r := range d.GrowthRows {
				sb.WriteString(fmt.Sprintf("    %-22s %10s\n", r.Label, r.Value))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowMScore {
		sb.WriteString("\n  ■ BENEISH M-SCORE\n")
		if d.MScoreErr != "" {
			sb.WriteString(fmt.Sprintf("  Unavailable: %s\n", d.MScoreErr))
		} else {
			if d.MScoreValue != "" {
				sb.WriteString(fmt.Sprintf("    Score: %s (threshold -2.22)\n", d.MScoreValue))
			}
			if d.MScoreVerdict != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", d.MScoreVerdict))
			}
			for _, r := range d.MScoreRows {
				sb.WriteString(fmt.Sprintf("    %-22s %10s\n", r.Label, r.Value))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowPrediction {
		sb.WriteString("\n  ■ EPS PREDICTION\n")
		if d.PredictionErr != "" {
			sb.WriteString(fmt.Sprintf("  Unavailable: %s\n", d.PredictionErr))
		} else if d.PredictedEPS != "" {
			sb.WriteString(fmt.Sprintf("    Predicted EPS: %s", d.PredictedEPS))
			if d.TrailingEPS != "" {
				sb.WriteString(fmt.Sprintf(" (%s trailing %s)", d.EPSDirection, d.TrailingEPS))
			}
			sb.WriteString("\n")
			for _, w := range d.Warnings {
				sb.WriteString(fmt.Sprintf("    ! %s\n", w))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowNews {
		sb.WriteString("\n  ■ RECENT NEWS\n")
		if d.NewsErr != "" {
			sb.WriteString(fmt.Sprintf("  Unavailable: %s\n", d.NewsErr))
		} else {
			for _, n := range d.NewsRows {
				sb.WriteString(fmt.Sprintf("    [%s] %s\n", n.Published, n.Title))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Generated for research purposes. Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// FormatDuration formats a duration for display in report footers.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
