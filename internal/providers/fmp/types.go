package fmp

import "github.com/atuladas/finvar/internal/statement"

// FMP wire types. Only the fields FinVAR consumes are declared; the decoder
// drops the rest.

type fmpProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Exchange    string  `json:"exchangeShortName"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Country     string  `json:"country"`
	Currency    string  `json:"currency"`
	Website     string  `json:"website"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	MktCap      float64 `json:"mktCap"`
	Beta        float64 `json:"beta"`
}

type fmpQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePct     float64 `json:"changesPercentage"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	PreviousClose float64 `json:"previousClose"`
	Volume        int64   `json:"volume"`
	PE            float64 `json:"pe"`
	EPS           float64 `json:"eps"`
	Timestamp     int64   `json:"timestamp"`
}

type fmpHistoricalResponse struct {
	Symbol     string        `json:"symbol"`
	Historical []fmpDailyBar `json:"historical"`
}

type fmpDailyBar struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   int64   `json:"volume"`
}

// FMP statement payloads already carry canonical field names for most line
// items; the alias maps add the handful of spellings that differ.

func fmpIncomeAliases() statement.AliasMap {
	return statement.CanonicalAliases(statement.TypeIncome)
}

func fmpBalanceAliases() statement.AliasMap {
	m := statement.CanonicalAliases(statement.TypeBalance)
	m["propertyPlantEquipmentNet"] = statement.PropertyPlantEquip
	return m
}

func fmpCashFlowAliases() statement.AliasMap {
	m := statement.CanonicalAliases(statement.TypeCashFlow)
	m["dividendsPaid"] = statement.CashDividendsPaid
	return m
}
