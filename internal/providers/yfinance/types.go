package yfinance

import (
	"time"

	"github.com/atuladas/finvar/internal/statement"
)

// --- Yahoo Finance API response types ---

// yfQuoteResponse wraps the v7 quote API response.
type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	LongName                   string  `json:"longName"`
	FullExchangeName           string  `json:"fullExchangeName"`
	Currency                   string  `json:"currency"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketOpen          float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        int64   `json:"regularMarketVolume"`
	MarketCap                  float64 `json:"marketCap"`
	TrailingPE                 float64 `json:"trailingPE"`
	EpsTrailingTwelveMonths    float64 `json:"epsTrailingTwelveMonths"`
	RegularMarketTime          int64   `json:"regularMarketTime"`
}

// yfChartResponse wraps the v8 chart API response.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

// Chart arrays carry nulls for missing sessions, hence the pointer slices.
type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	IncomeStatementHistory   *yfStatementContainer `json:"incomeStatementHistory"`
	BalanceSheetHistory      *yfStatementContainer `json:"balanceSheetHistory"`
	CashflowStatementHistory *yfStatementContainer `json:"cashflowStatementHistory"`

	AssetProfile         *yfAssetProfile         `json:"assetProfile"`
	SummaryDetail        *yfSummaryDetail        `json:"summaryDetail"`
	DefaultKeyStatistics *yfDefaultKeyStatistics `json:"defaultKeyStatistics"`
	Price                *yfPrice                `json:"price"`
}

// yfStatementContainer holds the statement array, whose key differs per
// module. Statements are kept as raw maps; each figure is a {"raw","fmt"}
// container that statement.Coerce unwraps.
type yfStatementContainer struct {
	IncomeStatements   []map[string]any `json:"incomeStatementHistory"`
	BalanceStatements  []map[string]any `json:"balanceSheetStatements"`
	CashflowStatements []map[string]any `json:"cashflowStatements"`
}

func (c *yfStatementContainer) rows() []map[string]any {
	if c == nil {
		return nil
	}
	switch {
	case len(c.IncomeStatements) > 0:
		return c.IncomeStatements
	case len(c.BalanceStatements) > 0:
		return c.BalanceStatements
	default:
		return c.CashflowStatements
	}
}

type yfFinVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yfAssetProfile struct {
	Industry            string `json:"industry"`
	Sector              string `json:"sector"`
	Country             string `json:"country"`
	Website             string `json:"website"`
	LongBusinessSummary string `json:"longBusinessSummary"`
}

type yfSummaryDetail struct {
	PreviousClose yfFinVal `json:"previousClose"`
	MarketCap     yfFinVal `json:"marketCap"`
	TrailingPE    yfFinVal `json:"trailingPE"`
	Beta          yfFinVal `json:"beta"`
	Currency      string   `json:"currency"`
}

type yfDefaultKeyStatistics struct {
	TrailingEps yfFinVal `json:"trailingEps"`
	ForwardEps  yfFinVal `json:"forwardEps"`
	Beta        yfFinVal `json:"beta"`
}

type yfPrice struct {
	ShortName          string   `json:"shortName"`
	LongName           string   `json:"longName"`
	ExchangeName       string   `json:"exchangeName"`
	Currency           string   `json:"currency"`
	RegularMarketPrice yfFinVal `json:"regularMarketPrice"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// statementDate extracts the period end date from a YF statement map.
func statementDate(stmt map[string]any) string {
	end, ok := stmt["endDate"].(map[string]any)
	if !ok {
		return ""
	}
	if f, ok := end["fmt"].(string); ok && f != "" {
		return f
	}
	if raw, ok := statement.Coerce(end["raw"]); ok && raw > 0 {
		return time.Unix(int64(raw), 0).UTC().Format("2006-01-02")
	}
	return ""
}

// Yahoo statement field names differ from the canonical line items almost
// everywhere, so each statement type gets an explicit alias map. Yahoo
// carries no ebitda, totalDebt, or depreciation line in these modules;
// those items simply come back missing.

func yfIncomeAliases() statement.AliasMap {
	return statement.AliasMap{
		"totalRevenue":                 statement.Revenue,
		"costOfRevenue":                statement.CostOfRevenue,
		"grossProfit":                  statement.GrossProfit,
		"ebit":                         statement.OperatingIncome,
		"operatingIncome":              statement.OperatingIncome,
		"netIncome":                    statement.NetIncome,
		"interestExpense":              statement.InterestExpense,
		"sellingGeneralAdministrative": statement.SGAExpenses,
	}
}

func yfBalanceAliases() statement.AliasMap {
	return statement.AliasMap{
		"totalAssets":             statement.TotalAssets,
		"totalStockholderEquity":  statement.TotalEquity,
		"totalLiab":               statement.TotalLiabilities,
		"totalCurrentAssets":      statement.CurrentAssets,
		"totalCurrentLiabilities": statement.CurrentLiabilities,
		"netReceivables":          statement.NetReceivables,
		"propertyPlantEquipment":  statement.PropertyPlantEquip,
		"shortTermInvestments":    statement.ShortTermInvestments,
	}
}

func yfCashFlowAliases() statement.AliasMap {
	return statement.AliasMap{
		"totalCashFromOperatingActivities": statement.OperatingCashFlow,
		"capitalExpenditures":              statement.CapitalExpenditure,
		"dividendsPaid":                    statement.CashDividendsPaid,
	}
}
