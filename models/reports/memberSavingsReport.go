package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
)

// GroupKeySavings prefixes a savings-type grouping key.
func GroupKeySavings(savingsType string) string { return "savings:" + savingsType }

// Member savings rollup: one group per savings type (simpanan pokok, wajib,
// sukarela, ...) with beginning / deposits / withdrawals / interest / ending
// totals, plus grand totals across all types.
func aggregateMemberSavings(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeMemberSavings)

	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		g := res.group(GroupKeySavings(item.SavingsType))
		addToGroup(g, MeasureBeginning, item.Beginning)
		addToGroup(g, MeasureDeposits, item.Deposits)
		addToGroup(g, MeasureWithdrawals, item.Withdrawals)
		addToGroup(g, MeasureInterest, item.Interest)
		addToGroup(g, MeasureEnding, item.Ending)

		res.Derived[DerivedTotalBeginning] = res.Derived[DerivedTotalBeginning].Add(item.Beginning)
		res.Derived[DerivedTotalDeposits] = res.Derived[DerivedTotalDeposits].Add(item.Deposits)
		res.Derived[DerivedTotalWithdrawals] = res.Derived[DerivedTotalWithdrawals].Add(item.Withdrawals)
		res.Derived[DerivedTotalInterest] = res.Derived[DerivedTotalInterest].Add(item.Interest)
		res.Derived[DerivedTotalEnding] = res.Derived[DerivedTotalEnding].Add(item.Ending)
	}
	return res
}
