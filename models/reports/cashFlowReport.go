package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

// Cash flow rollup: operating / investing / financing activity totals.
// net_cash_flow is the sum over all non-subtotal amounts, reconciled against
// the beginning/ending cash metadata carried on the report header:
// cash_discrepancy = (beginning + net_cash_flow) - ending. A non-zero
// discrepancy is surfaced, never treated as an error.
func aggregateCashFlow(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeCashFlow)
	rollupCategories(res, report)

	netCashFlow := decimal.Zero
	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		netCashFlow = netCashFlow.Add(item.Amount)
	}

	res.Derived[DerivedNetCashFlow] = netCashFlow
	res.Derived[DerivedBeginningCash] = report.BeginningCash
	res.Derived[DerivedEndingCash] = report.EndingCash
	res.Derived[DerivedCashDiscrepancy] = report.BeginningCash.Add(netCashFlow).Sub(report.EndingCash)
	return res
}
