package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

// Non-performing-loan rollup: outstanding and provision per classification
// bucket (kurang lancar / diragukan / macet), total outstanding, total
// provision, and the mean days-past-due across items.
func aggregateNplReceivables(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeNplReceivables)

	totalOutstanding := decimal.Zero
	totalProvision := decimal.Zero
	daysSum := decimal.Zero
	count := 0

	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		g := res.group(GroupKeyClassification(item.Classification))
		addToGroup(g, MeasureOutstanding, item.Amount)
		addToGroup(g, MeasureProvision, item.Provision)
		addToGroup(g, MeasureCount, decimal.NewFromInt(1))

		totalOutstanding = totalOutstanding.Add(item.Amount)
		totalProvision = totalProvision.Add(item.Provision)
		daysSum = daysSum.Add(decimal.NewFromInt(int64(item.DaysPastDue)))
		count++
	}

	res.Derived[DerivedTotalOutstanding] = totalOutstanding
	res.Derived[DerivedTotalProvision] = totalProvision
	if count > 0 {
		res.Derived[DerivedAverageDaysPastDue] = daysSum.Div(decimal.NewFromInt(int64(count)))
	} else {
		res.Derived[DerivedAverageDaysPastDue] = decimal.Zero
	}
	return res
}
