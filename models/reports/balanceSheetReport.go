package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
)

// Balance sheet rollup: asset / liability / equity totals plus the balance
// check. balance_check == 0 exactly when assets equal liabilities + equity;
// a non-zero value is surfaced as-is (the engine never rejects an unbalanced
// report, it only reports the discrepancy).
func aggregateBalanceSheet(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeBalanceSheet)
	rollupCategories(res, report)

	totalAssets := res.Totals[CategoryAsset]
	totalLiabilities := res.Totals[CategoryLiability]
	totalEquity := res.Totals[CategoryEquity]

	res.Derived[DerivedBalanceCheck] = totalAssets.Sub(totalLiabilities.Add(totalEquity))
	return res
}
