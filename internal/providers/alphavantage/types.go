package alphavantage

import "github.com/atuladas/finvar/internal/statement"

// Alpha Vantage wire types. Numbers arrive as strings and missing values as
// "None"; both pass through statement.Coerce downstream.

// avStatementResponse wraps the three *_STATEMENT endpoints. A throttled or
// invalid request returns a "Note" or "Information" field instead of data.
type avStatementResponse struct {
	Symbol        string           `json:"symbol"`
	AnnualReports []map[string]any `json:"annualReports"`
	Note          string           `json:"Note"`
	Information   string           `json:"Information"`
}

type avOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Exchange             string `json:"Exchange"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Country              string `json:"Country"`
	Currency             string `json:"Currency"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	EPS                  string `json:"EPS"`
	Beta                 string `json:"Beta"`
	Note                 string `json:"Note"`
	Information          string `json:"Information"`
}

type avGlobalQuoteResponse struct {
	GlobalQuote avGlobalQuote `json:"Global Quote"`
	Note        string        `json:"Note"`
	Information string        `json:"Information"`
}

type avGlobalQuote struct {
	Symbol        string `json:"01. symbol"`
	Open          string `json:"02. open"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	LatestDay     string `json:"07. latest trading day"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type avDailySeriesResponse struct {
	Series      map[string]avDailyBar `json:"Time Series (Daily)"`
	Note        string                `json:"Note"`
	Information string                `json:"Information"`
}

type avDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func avIncomeAliases() statement.AliasMap {
	return statement.AliasMap{
		"totalRevenue":                    statement.Revenue,
		"costOfRevenue":                   statement.CostOfRevenue,
		"grossProfit":                     statement.GrossProfit,
		"operatingIncome":                 statement.OperatingIncome,
		"ebitda":                          statement.EBITDA,
		"netIncome":                       statement.NetIncome,
		"depreciationAndAmortization":     statement.DepreciationAmort,
		"interestExpense":                 statement.InterestExpense,
		"sellingGeneralAndAdministrative": statement.SGAExpenses,
	}
}

func avBalanceAliases() statement.AliasMap {
	return statement.AliasMap{
		"totalAssets":             statement.TotalAssets,
		"totalShareholderEquity":  statement.TotalEquity,
		"totalLiabilities":        statement.TotalLiabilities,
		"totalCurrentAssets":      statement.CurrentAssets,
		"totalCurrentLiabilities": statement.CurrentLiabilities,
		"currentNetReceivables":   statement.NetReceivables,
		"propertyPlantEquipment":  statement.PropertyPlantEquip,
		"shortTermInvestments":    statement.ShortTermInvestments,
		"shortLongTermDebtTotal":  statement.TotalDebt,
	}
}

func avCashFlowAliases() statement.AliasMap {
	return statement.AliasMap{
		"operatingCashflow":   statement.OperatingCashFlow,
		"capitalExpenditures": statement.CapitalExpenditure,
		"dividendPayout":      statement.CashDividendsPaid,
	}
}
