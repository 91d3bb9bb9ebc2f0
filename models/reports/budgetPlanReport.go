package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
)

// Budget plan rollup: revenue / expense / investment / financing totals,
// net_budget = revenue - expense, plus per-priority totals.
func aggregateBudgetPlan(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeBudgetPlan)
	rollupCategories(res, report)

	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal || item.Priority == "" {
			continue
		}
		g := res.group(GroupKeyPriority(item.Priority))
		addToGroup(g, MeasureAmount, item.Amount)
	}

	res.Derived[DerivedNetBudget] = res.Totals[CategoryRevenue].Sub(res.Totals[CategoryExpense])
	return res
}
