package reports

import (
	"errors"
	"sort"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

var ErrUnsupportedReportType = errors.New("unsupported report type")

// Category values per report type. Line items of a report must use the
// categories declared for the report's type; grouped report types (savings,
// receivables, NPL, SHU) group on dedicated columns instead.
const (
	CategoryAsset     = "asset"
	CategoryLiability = "liability"
	CategoryEquity    = "equity"

	CategoryRevenue      = "revenue"
	CategoryExpense      = "expense"
	CategoryOtherIncome  = "other_income"
	CategoryOtherExpense = "other_expense"

	CategoryOperating = "operating"
	CategoryInvesting = "investing"
	CategoryFinancing = "financing"

	CategoryInvestment = "investment"

	CategoryOpeningBalance = "opening_balance"
	CategoryAdditions      = "additions"
	CategoryReductions     = "reductions"
	CategoryClosingBalance = "closing_balance"
)

// Derived scalar keys.
const (
	DerivedBalanceCheck        = "balance_check"
	DerivedNetIncome           = "net_income"
	DerivedProfitMargin        = "profit_margin"
	DerivedNetCashFlow         = "net_cash_flow"
	DerivedBeginningCash       = "beginning_cash"
	DerivedEndingCash          = "ending_cash"
	DerivedCashDiscrepancy     = "cash_discrepancy"
	DerivedNetChange           = "net_change"
	DerivedNetBudget           = "net_budget"
	DerivedTotalOutstanding    = "total_outstanding"
	DerivedAverageInterestRate = "average_interest_rate"
	DerivedTotalProvision      = "total_provision"
	DerivedAverageDaysPastDue  = "average_days_past_due"
	DerivedTotalDistributed    = "total_distributed"
	DerivedTotalMembers        = "total_members"
	DerivedAveragePerMember    = "average_per_member"

	DerivedTotalBeginning   = "total_beginning"
	DerivedTotalDeposits    = "total_deposits"
	DerivedTotalWithdrawals = "total_withdrawals"
	DerivedTotalInterest    = "total_interest"
	DerivedTotalEnding      = "total_ending"
)

// Group measure keys for the grouped report types.
const (
	MeasureBeginning   = "beginning"
	MeasureDeposits    = "deposits"
	MeasureWithdrawals = "withdrawals"
	MeasureInterest    = "interest"
	MeasureEnding      = "ending"
	MeasureOutstanding = "outstanding"
	MeasureProvision   = "provision"
	MeasureDistributed = "distributed"
	MeasureMemberCount = "member_count"
	MeasureAmount      = "amount"
	MeasureCount       = "count"
)

// AggregationResult is the rolled-up view of one financial report. Totals and
// Derived are pure functions of the report's line items (plus the cash flow
// metadata) and are never mutated after Aggregate returns.
type AggregationResult struct {
	ReportType models.ReportType `json:"report_type"`

	// Category rollups (categorised report types).
	CategoryOrder  []string                   `json:"category_order"`
	Totals         map[string]decimal.Decimal `json:"totals"`
	PreviousTotals map[string]decimal.Decimal `json:"previous_totals"`

	// Grouped rollups (savings, receivables, NPL, SHU, budget priorities).
	// Keys are prefixed with the grouping dimension, e.g. "loan:Modal Kerja"
	// or "status:lancar", in first-seen order of the sorted line items.
	GroupOrder []string                              `json:"group_order"`
	Groups     map[string]map[string]decimal.Decimal `json:"groups"`

	Derived map[string]decimal.Decimal `json:"derived"`
}

func (a *AggregationResult) Total(category string) decimal.Decimal {
	return a.Totals[category]
}

func (a *AggregationResult) DerivedValue(key string) decimal.Decimal {
	return a.Derived[key]
}

type aggregateFunc func(*models.FinancialReport) *AggregationResult

// aggregators is the closed strategy table; one entry per member of
// models.AllReportTypes. TestAggregatorRegistryComplete keeps it honest.
var aggregators = map[models.ReportType]aggregateFunc{
	models.ReportTypeBalanceSheet:      aggregateBalanceSheet,
	models.ReportTypeIncomeStatement:   aggregateIncomeStatement,
	models.ReportTypeCashFlow:          aggregateCashFlow,
	models.ReportTypeEquityChanges:     aggregateEquityChanges,
	models.ReportTypeMemberSavings:     aggregateMemberSavings,
	models.ReportTypeMemberReceivables: aggregateMemberReceivables,
	models.ReportTypeNplReceivables:    aggregateNplReceivables,
	models.ReportTypeShuDistribution:   aggregateShuDistribution,
	models.ReportTypeBudgetPlan:        aggregateBudgetPlan,
}

// CategoriesFor returns the declared category set of a report type, in
// rendering order. Grouped report types have no category set.
func CategoriesFor(t models.ReportType) []string {
	switch t {
	case models.ReportTypeBalanceSheet:
		return []string{CategoryAsset, CategoryLiability, CategoryEquity}
	case models.ReportTypeIncomeStatement:
		return []string{CategoryRevenue, CategoryExpense, CategoryOtherIncome, CategoryOtherExpense}
	case models.ReportTypeCashFlow:
		return []string{CategoryOperating, CategoryInvesting, CategoryFinancing}
	case models.ReportTypeEquityChanges:
		return []string{CategoryOpeningBalance, CategoryAdditions, CategoryReductions, CategoryClosingBalance}
	case models.ReportTypeBudgetPlan:
		return []string{CategoryRevenue, CategoryExpense, CategoryInvestment, CategoryFinancing}
	default:
		return nil
	}
}

// Aggregate rolls a report's line items up into category/group totals and
// derived scalars. It never mutates the input report.
func Aggregate(report *models.FinancialReport) (*AggregationResult, error) {
	if report == nil {
		return nil, errors.New("report is required")
	}
	fn, ok := aggregators[report.ReportType]
	if !ok {
		return nil, ErrUnsupportedReportType
	}
	return fn(report), nil
}

// SortedLineItems returns a copy of the report's line items sorted by
// sort_order; ties keep stable input order. The report itself is untouched.
func SortedLineItems(report *models.FinancialReport) []*models.ReportLineItem {
	items := make([]*models.ReportLineItem, len(report.LineItems))
	copy(items, report.LineItems)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortOrder < items[j].SortOrder
	})
	return items
}

func newResult(t models.ReportType) *AggregationResult {
	return &AggregationResult{
		ReportType:     t,
		Totals:         map[string]decimal.Decimal{},
		PreviousTotals: map[string]decimal.Decimal{},
		Groups:         map[string]map[string]decimal.Decimal{},
		Derived:        map[string]decimal.Decimal{},
	}
}

// rollupCategories fills the category totals for one report. Subtotal rows
// are excluded from every sum (they only display a running subtotal).
func rollupCategories(res *AggregationResult, report *models.FinancialReport) {
	res.CategoryOrder = CategoriesFor(report.ReportType)
	for _, c := range res.CategoryOrder {
		res.Totals[c] = decimal.Zero
		res.PreviousTotals[c] = decimal.Zero
	}
	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		if _, ok := res.Totals[item.Category]; !ok {
			// Category outside the declared set: keep the amount visible
			// rather than silently dropping it.
			res.CategoryOrder = append(res.CategoryOrder, item.Category)
			res.Totals[item.Category] = decimal.Zero
			res.PreviousTotals[item.Category] = decimal.Zero
		}
		res.Totals[item.Category] = res.Totals[item.Category].Add(item.Amount)
		res.PreviousTotals[item.Category] = res.PreviousTotals[item.Category].Add(item.PreviousAmount)
	}
}

func (a *AggregationResult) group(key string) map[string]decimal.Decimal {
	g, ok := a.Groups[key]
	if !ok {
		g = map[string]decimal.Decimal{}
		a.Groups[key] = g
		a.GroupOrder = append(a.GroupOrder, key)
	}
	return g
}

func addToGroup(g map[string]decimal.Decimal, measure string, v decimal.Decimal) {
	g[measure] = g[measure].Add(v)
}
