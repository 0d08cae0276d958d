package provider

// ModelType represents a standard data model type. Each ModelType maps to a
// specific data structure in pkg/models/, regardless of which provider
// produced it.
type ModelType string

const (
	// Equity / price.
	ModelEquityHistorical ModelType = "EquityHistorical"
	ModelEquityQuote      ModelType = "EquityQuote"
	ModelCompanyProfile   ModelType = "CompanyProfile"

	// Fundamentals. Statement fetchers return *statement.Statement with
	// provider field names already normalized to the canonical schema.
	ModelIncomeStatement   ModelType = "IncomeStatement"
	ModelBalanceSheet      ModelType = "BalanceSheet"
	ModelCashFlowStatement ModelType = "CashFlowStatement"

	// News and regulatory.
	ModelCompanyNews    ModelType = "CompanyNews"
	ModelCompanyFilings ModelType = "CompanyFilings"
)

// AllModels returns all defined model types.
func AllModels() []ModelType {
	return []ModelType{
		ModelEquityHistorical, ModelEquityQuote, ModelCompanyProfile,
		ModelIncomeStatement, ModelBalanceSheet, ModelCashFlowStatement,
		ModelCompanyNews, ModelCompanyFilings,
	}
}

// ModelCategory maps model types to their category for grouping in status
// output.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelEquityHistorical, ModelEquityQuote, ModelCompanyProfile:
		return "Equity"
	case ModelIncomeStatement, ModelBalanceSheet, ModelCashFlowStatement:
		return "Fundamentals"
	case ModelCompanyNews:
		return "News"
	case ModelCompanyFilings:
		return "Regulatory"
	default:
		return "Other"
	}
}
