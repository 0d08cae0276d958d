package report

// ReportTemplate is the HTML template for the company analysis page.
// It is embedded as a Go constant, so reports have no external file
// dependencies and can be written anywhere or piped to a PDF engine.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-left h1 { color: var(--accent); }
  .header-right { text-align: right; }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    font-size: 1.1rem;
    margin-right: 8px;
  }

  .quote-strip {
    display: flex;
    gap: 24px;
    flex-wrap: wrap;
    background: var(--section-bg);
    border: 1px solid var(--border);
    border-radius: 8px;
    padding: 12px 16px;
    margin-bottom: 16px;
  }
  .quote-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .quote-item .value { font-size: 1.05rem; font-weight: 600; }
  .up { color: var(--green); }
  .down { color: var(--red); }

  table {
    width: 100%;
    border-collapse: collapse;
    margin: 8px 0 16px;
    font-size: 0.9rem;
  }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid var(--border); }
  th { background: var(--section-bg); font-weight: 600; }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }

  .section-error {
    background: #fef2f2;
    border: 1px solid #fecaca;
    color: var(--red);
    border-radius: 6px;
    padding: 10px 14px;
    margin: 8px 0 16px;
    font-size: 0.9rem;
  }
  .flag {
    display: inline-block;
    padding: 2px 10px;
    border-radius: 999px;
    font-size: 0.8rem;
    font-weight: 600;
  }
  .flag.red { background: #fef2f2; color: var(--red); }
  .flag.green { background: #f0fdf4; color: var(--green); }
  .warning { color: var(--orange); font-size: 0.85rem; }

  .chart { margin: 12px 0; text-align: center; }
  .chart svg { max-width: 100%; height: auto; }
  .dial-row { display: flex; align-items: flex-start; gap: 24px; flex-wrap: wrap; }

  .news-item { padding: 8px 0; border-bottom: 1px solid var(--border); }
  .news-item a { color: var(--accent); text-decoration: none; }
  .news-item a:hover { text-decoration: underline; }

  .footer {
    margin-top: 32px;
    padding-top: 12px;
    border-top: 1px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
  @media print {
    body { padding: 0; }
    .section-error { border: 1px solid #ccc; }
  }
</style>
</head>
<body>

<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    {{if .CompanyName}}<p>{{.CompanyName}}{{if .Exchange}} · {{.Exchange}}{{end}}</p>{{end}}
    {{if .Sector}}<p class="muted">{{.Sector}}{{if .Industry}} · {{.Industry}}{{end}}</p>{{end}}
  </div>
  <div class="header-right">
    <span class="ticker-badge">{{.Ticker}}</span>
    <p class="muted">{{.GeneratedAt}}</p>
    {{if .Provider}}<p class="muted">Source: {{.Provider}}</p>{{end}}
  </div>
</div>

{{if .ShowProfile}}{{if .ProfileErr}}<div class="section-error">Profile unavailable: {{.ProfileErr}}</div>{{end}}{{end}}

{{if .ShowPrice}}
  {{if .PriceErr}}
    <div class="section-error">Price data unavailable: {{.PriceErr}}</div>
  {{else if .LastPrice}}
  <div class="quote-strip">
    <div class="quote-item"><div class="label">Last</div><div class="value">{{.LastPrice}}</div></div>
    <div class="quote-item"><div class="label">Change</div>
      <div class="value {{if .ChangeUp}}up{{else}}down{{end}}">{{.Change}} ({{.ChangePct}})</div></div>
    {{if .Volatility}}<div class="quote-item"><div class="label">Ann. Volatility</div><div class="value">{{.Volatility}}</div></div>{{end}}
    {{if .MarketCap}}<div class="quote-item"><div class="label">Market Cap</div><div class="value">{{.MarketCap}}</div></div>{{end}}
    {{if .PE}}<div class="quote-item"><div class="label">P/E</div><div class="value">{{.PE}}</div></div>{{end}}
    {{if .Beta}}<div class="quote-item"><div class="label">Beta</div><div class="value">{{.Beta}}</div></div>{{end}}
  </div>
  {{end}}
  {{if .PriceChart}}<div class="chart">{{.PriceChart}}</div>{{end}}
{{end}}

{{if .ShowRatios}}
<h2>Financial Ratios</h2>
  {{if .RatiosErr}}
    <div class="section-error">{{.RatiosErr}}</div>
  {{else}}
    <table>
      <tr><th>Metric</th><th class="num">Value</th><th>Assessment</th></tr>
      {{range .RatioRows}}<tr><td>{{.Label}}</td><td class="num">{{.Value}}</td><td>{{.Assessment}}</td></tr>{{end}}
    </table>
    {{if .GrowthRows}}
    <table>
      <tr><th>Growth</th><th class="num">YoY</th></tr>
      {{range .GrowthRows}}<tr><td>{{.Label}}</td><td class="num">{{.Value}}</td></tr>{{end}}
    </table>
    {{end}}
    {{if .RatioChart}}<div class="chart">{{.RatioChart}}</div>{{end}}
  {{end}}
{{end}}

{{if .ShowMScore}}
<h2>Earnings Quality (Beneish M-Score)</h2>
  {{if .MScoreErr}}
    <div class="section-error">{{.MScoreErr}}</div>
  {{else}}
    <div class="dial-row">
      {{if .MScoreDial}}<div class="chart">{{.MScoreDial}}</div>{{end}}
      <div>
        {{if .MScoreValue}}
          <p>Score: <strong>{{.MScoreValue}}</strong>
          {{if .MScoreFlagged}}<span class="flag red">Above -2.22 threshold</span>
          {{else}}<span class="flag green">Below -2.22 threshold</span>{{end}}</p>
        {{end}}
        {{if .MScoreVerdict}}<p class="muted">{{.MScoreVerdict}}</p>{{end}}
      </div>
    </div>
    <table>
      <tr><th>Sub-Index</th><th class="num">Value</th></tr>
      {{range .MScoreRows}}<tr><td>{{.Label}}</td><td class="num">{{.Value}}</td></tr>{{end}}
    </table>
    {{if .MScoreChart}}<div class="chart">{{.MScoreChart}}</div>{{end}}
  {{end}}
{{end}}

{{if .ShowPrediction}}
<h2>EPS Prediction</h2>
  {{if .PredictionErr}}
    <div class="section-error">{{.PredictionErr}}</div>
  {{else if .PredictedEPS}}
    <p>Predicted next-year EPS: <strong>{{.PredictedEPS}}</strong>
    {{if .TrailingEPS}} ({{.EPSDirection}} trailing EPS of {{.TrailingEPS}}){{end}}</p>
    {{range .Warnings}}<p class="warning">⚠ {{.}}</p>{{end}}
  {{end}}
{{end}}

{{if .ShowNews}}
<h2>Recent News</h2>
  {{if .NewsErr}}
    <div class="section-error">{{.NewsErr}}</div>
  {{else}}
    {{range .NewsRows}}
    <div class="news-item">
      <a href="{{.Link}}">{{.Title}}</a>
      <p class="muted">{{.Published}}{{if .Source}} · {{.Source}}{{end}}</p>
    </div>
    {{end}}
  {{end}}
{{end}}

<div class="footer">
  Generated for research purposes. Not financial advice.
</div>

</body>
</html>`
