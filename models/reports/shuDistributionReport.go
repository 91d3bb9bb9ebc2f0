package reports

import (
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

// SHU (Sisa Hasil Usaha) distribution rollup: distributed amount and member
// count per member type and per payment status, plus total distributed and
// the average distribution per member.
func aggregateShuDistribution(report *models.FinancialReport) *AggregationResult {
	res := newResult(models.ReportTypeShuDistribution)

	totalDistributed := decimal.Zero
	totalMembers := 0

	for _, item := range SortedLineItems(report) {
		if item.IsSubtotal {
			continue
		}
		members := decimal.NewFromInt(int64(item.MemberCount))

		byMember := res.group(GroupKeyMemberType(item.MemberType))
		addToGroup(byMember, MeasureDistributed, item.Amount)
		addToGroup(byMember, MeasureMemberCount, members)

		byStatus := res.group(GroupKeyPaymentStatus(item.PaymentStatus))
		addToGroup(byStatus, MeasureDistributed, item.Amount)
		addToGroup(byStatus, MeasureMemberCount, members)

		totalDistributed = totalDistributed.Add(item.Amount)
		totalMembers += item.MemberCount
	}

	res.Derived[DerivedTotalDistributed] = totalDistributed
	res.Derived[DerivedTotalMembers] = decimal.NewFromInt(int64(totalMembers))
	if totalMembers > 0 {
		res.Derived[DerivedAveragePerMember] = totalDistributed.Div(decimal.NewFromInt(int64(totalMembers)))
	} else {
		res.Derived[DerivedAveragePerMember] = decimal.Zero
	}
	return res
}
