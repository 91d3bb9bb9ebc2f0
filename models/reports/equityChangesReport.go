package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
)

// Equity changes rollup: opening balance / additions / reductions / closing
// balance. net_change = additions - reductions.
func aggregateEquityChanges(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeEquityChanges)
	rollupCategories(res, report)

	res.Derived[DerivedNetChange] = res.Totals[CategoryAdditions].Sub(res.Totals[CategoryReductions])
	return res
}
