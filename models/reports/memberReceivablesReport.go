package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

func GroupKeyLoanType(loanType string) string     { return "loan:" + loanType }
func GroupKeyPaymentStatus(status string) string  { return "status:" + status }
func GroupKeyClassification(bucket string) string { return "classification:" + bucket }
func GroupKeyMemberType(memberType string) string { return "member:" + memberType }
func GroupKeyPriority(priority string) string     { return "priority:" + priority }

// Member receivables rollup: outstanding per loan type and per payment
// status, total outstanding, and the plain mean of the item interest rates
// (zero when the report has no countable rows).
func aggregateMemberReceivables(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeMemberReceivables)

	totalOutstanding := decimal.Zero
	rateSum := decimal.Zero
	count := 0

	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		byLoan := res.group(GroupKeyLoanType(item.LoanType))
		addToGroup(byLoan, MeasureOutstanding, item.Amount)
		addToGroup(byLoan, MeasureCount, decimal.NewFromInt(1))

		byStatus := res.group(GroupKeyPaymentStatus(item.PaymentStatus))
		addToGroup(byStatus, MeasureOutstanding, item.Amount)
		addToGroup(byStatus, MeasureCount, decimal.NewFromInt(1))

		totalOutstanding = totalOutstanding.Add(item.Amount)
		rateSum = rateSum.Add(item.InterestRate)
		count++
	}

	res.Derived[DerivedTotalOutstanding] = totalOutstanding
	if count > 0 {
		res.Derived[DerivedAverageInterestRate] = rateSum.Div(decimal.NewFromInt(int64(count)))
	} else {
		res.Derived[DerivedAverageInterestRate] = decimal.Zero
	}
	return res
}
