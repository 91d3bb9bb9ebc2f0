package reports

import (
	"context"
	"sort"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/shopspring/decimal"
)

// ComparisonMetrics is the fixed metric subset extracted from one prior-year
// report for trend display.
type ComparisonMetrics map[string]decimal.Decimal

// ApprovedReportLookup resolves the approved report of a cooperative for one
// type and year. A nil report (no error) means "no approved report exists".
type ApprovedReportLookup interface {
	GetApprovedReport(ctx context.Context, cooperativeId int, reportType models.ReportType, year int) (*models.FinancialReport, error)
}

// Compare assembles cross-year metrics for the window
// [reportYear-windowYears, reportYear-1]. Years with no approved report of
// the same cooperative and type are omitted, never zero-filled.
func Compare(ctx context.Context, lookup ApprovedReportLookup, report *models.FinancialReport, windowYears int) (map[int]ComparisonMetrics, error) {
	if windowYears <= 0 {
		windowYears = 2
	}

	result := make(map[int]ComparisonMetrics)
	for year := report.ReportingYear - windowYears; year <= report.ReportingYear-1; year++ {
		prior, err := lookup.GetApprovedReport(ctx, report.CooperativeId, report.ReportType, year)
		if err != nil {
			return nil, err
		}
		if prior == nil {
			continue
		}
		agg, err := Aggregate(prior)
		if err != nil {
			// A prior-year report with an unknown type cannot happen through
			// the closed enum; skip rather than fail the whole comparison.
			continue
		}
		result[year] = ExtractMetrics(agg)
	}
	return result, nil
}

// ExtractMetrics picks the type-specific comparison subset out of an
// aggregation. Types without a defined subset yield an empty metric set,
// not an error.
func ExtractMetrics(agg *AggregationResult) ComparisonMetrics {
	m := ComparisonMetrics{}
	switch agg.ReportType {
	case models.ReportTypeBalanceSheet:
		m["total_assets"] = agg.Totals[CategoryAsset]
		m["total_liabilities"] = agg.Totals[CategoryLiability]
		m["total_equity"] = agg.Totals[CategoryEquity]
	case models.ReportTypeIncomeStatement:
		m["revenue"] = agg.Totals[CategoryRevenue]
		m["expense"] = agg.Totals[CategoryExpense]
		m[DerivedNetIncome] = agg.Derived[DerivedNetIncome]
	case models.ReportTypeCashFlow:
		m[CategoryOperating] = agg.Totals[CategoryOperating]
		m[CategoryInvesting] = agg.Totals[CategoryInvesting]
		m[CategoryFinancing] = agg.Totals[CategoryFinancing]
		m[DerivedNetCashFlow] = agg.Derived[DerivedNetCashFlow]
	case models.ReportTypeBudgetPlan:
		m["revenue"] = agg.Totals[CategoryRevenue]
		m["expense"] = agg.Totals[CategoryExpense]
		m[DerivedNetBudget] = agg.Derived[DerivedNetBudget]
	case models.ReportTypeMemberSavings:
		m[DerivedTotalEnding] = agg.Derived[DerivedTotalEnding]
	case models.ReportTypeShuDistribution:
		m[DerivedTotalDistributed] = agg.Derived[DerivedTotalDistributed]
	}
	return m
}

// ComparisonYears returns the sorted year keys of a comparison map.
func ComparisonYears(comparison map[int]ComparisonMetrics) []int {
	years := make([]int, 0, len(comparison))
	for y := range comparison {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
