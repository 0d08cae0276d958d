// Package statement defines the canonical financial statement schema and the
// normalizer that maps heterogeneous provider payloads onto it. Providers
// name the same concept differently ("Total Liab", "totalLiabilities",
// "Total Liabilities Net Minority Interest"); everything downstream of this
// package only ever sees the canonical line items, indexed by fiscal year.
package statement

import "sort"

// Type identifies which of the three statements a Statement holds.
type Type string

const (
	TypeIncome   Type = "income"
	TypeBalance  Type = "balance"
	TypeCashFlow Type = "cashflow"
)

// LineItem is a canonical line-item name. The set is closed: unknown provider
// fields are dropped during normalization rather than invented here.
type LineItem string

const (
	// Income statement.
	Revenue           LineItem = "revenue"
	CostOfRevenue     LineItem = "costOfRevenue"
	GrossProfit       LineItem = "grossProfit"
	OperatingIncome   LineItem = "operatingIncome"
	EBITDA            LineItem = "ebitda"
	NetIncome         LineItem = "netIncome"
	DepreciationAmort LineItem = "depreciationAndAmortization"
	InterestExpense   LineItem = "interestExpense"
	SGAExpenses       LineItem = "sellingGeneralAndAdministrativeExpenses"

	// Balance sheet.
	TotalAssets          LineItem = "totalAssets"
	TotalEquity          LineItem = "totalStockholdersEquity"
	TotalLiabilities     LineItem = "totalLiabilities"
	CurrentAssets        LineItem = "totalCurrentAssets"
	CurrentLiabilities   LineItem = "totalCurrentLiabilities"
	NetReceivables       LineItem = "netReceivables"
	PropertyPlantEquip   LineItem = "propertyPlantEquipmentNet"
	ShortTermInvestments LineItem = "shortTermInvestments"
	TotalDebt            LineItem = "totalDebt"

	// Cash flow statement.
	OperatingCashFlow  LineItem = "operatingCashFlow"
	CapitalExpenditure LineItem = "capitalExpenditure"
	CashDividendsPaid  LineItem = "cashDividendsPaid"
)

// allowed is the per-statement allow-list. Fields mapped to a canonical item
// that does not belong to the statement type are dropped, so a provider
// echoing income fields inside a balance payload cannot pollute the result.
var allowed = map[Type][]LineItem{
	TypeIncome: {
		Revenue, CostOfRevenue, GrossProfit, OperatingIncome, EBITDA,
		NetIncome, DepreciationAmort, InterestExpense, SGAExpenses,
	},
	TypeBalance: {
		TotalAssets, TotalEquity, TotalLiabilities, CurrentAssets,
		CurrentLiabilities, NetReceivables, PropertyPlantEquip,
		ShortTermInvestments, TotalDebt,
	},
	TypeCashFlow: {
		OperatingCashFlow, CapitalExpenditure, CashDividendsPaid,
	},
}

// Items returns the canonical line items belonging to a statement type, in
// presentation order.
func Items(t Type) []LineItem {
	items := allowed[t]
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func itemAllowed(t Type, item LineItem) bool {
	for _, it := range allowed[t] {
		if it == item {
			return true
		}
	}
	return false
}

// Statement is a normalized financial statement: canonical line items mapped
// to per-fiscal-year values. At most one value exists per (item, year) pair.
// Absent pairs mean the provider did not report the figure; consumers must
// treat them as unavailable, never as zero.
type Statement struct {
	typ    Type
	values map[LineItem]map[int]float64
}

// New returns an empty statement of the given type.
func New(t Type) *Statement {
	return &Statement{
		typ:    t,
		values: make(map[LineItem]map[int]float64),
	}
}

// Type returns the statement type.
func (s *Statement) Type() Type { return s.typ }

// Set records a value for (item, year). Items outside the statement's
// allow-list are ignored. The first value recorded for a pair wins; provider
// payloads occasionally repeat a period and the earlier row is the canonical
// one.
func (s *Statement) Set(item LineItem, year int, v float64) {
	if !itemAllowed(s.typ, item) {
		return
	}
	byYear, ok := s.values[item]
	if !ok {
		byYear = make(map[int]float64)
		s.values[item] = byYear
	}
	if _, exists := byYear[year]; !exists {
		byYear[year] = v
	}
}

// Value returns the value for (item, year) and whether it is present.
func (s *Statement) Value(item LineItem, year int) (float64, bool) {
	byYear, ok := s.values[item]
	if !ok {
		return 0, false
	}
	v, ok := byYear[year]
	return v, ok
}

// Years returns every fiscal year with at least one value, ascending.
func (s *Statement) Years() []int {
	seen := make(map[int]bool)
	for _, byYear := range s.values {
		for y := range byYear {
			seen[y] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// YearsWith returns the fiscal years for which item has a value, descending
// (most recent first).
func (s *Statement) YearsWith(item LineItem) []int {
	byYear := s.values[item]
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Empty reports whether the statement holds no values at all.
func (s *Statement) Empty() bool {
	for _, byYear := range s.values {
		if len(byYear) > 0 {
			return false
		}
	}
	return true
}

// Len returns the number of (item, year) pairs present.
func (s *Statement) Len() int {
	n := 0
	for _, byYear := range s.values {
		n += len(byYear)
	}
	return n
}
