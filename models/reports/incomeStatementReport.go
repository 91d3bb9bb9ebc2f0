package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Income statement rollup: revenue / expense / other income / other expense.
// net_income = revenue - expense + other_income - other_expense.
// profit_margin = net_income / revenue * 100, zero when revenue is zero.
func aggregateIncomeStatement(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeIncomeStatement)
	rollupCategories(res, report)

	revenue := res.Totals[CategoryRevenue]
	expense := res.Totals[CategoryExpense]
	otherIncome := res.Totals[CategoryOtherIncome]
	otherExpense := res.Totals[CategoryOtherExpense]

	netIncome := revenue.Sub(expense).Add(otherIncome).Sub(otherExpense)
	res.Derived[DerivedNetIncome] = netIncome

	if revenue.IsZero() {
		res.Derived[DerivedProfitMargin] = decimal.Zero
	} else {
		res.Derived[DerivedProfitMargin] = netIncome.Div(revenue).Mul(oneHundred)
	}
	return res
}
