package reports_test

import (
	"context"
	"testing"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
)

type fakeLookup struct {
	byYear map[int]*models.FinancialReport
}

func (f fakeLookup) GetApprovedReport(_ context.Context, _ int, _ models.ReportType, year int) (*models.FinancialReport, error) {
	return f.byYear[year], nil
}

func incomeReport(year int, revenue, expense string) *models.FinancialReport {
	return &models.FinancialReport{
		ID:            year,
		CooperativeId: 7,
		ReportType:    models.ReportTypeIncomeStatement,
		ReportingYear: year,
		Status:        models.ReportStatusApproved,
		LineItems: []*models.ReportLineItem{
			{ID: 1, Name: "Pendapatan", Category: reports.CategoryRevenue, Amount: d(revenue)},
			{ID: 2, Name: "Beban", Category: reports.CategoryExpense, Amount: d(expense)},
		},
	}
}

func TestCompareWindowAndOmission(t *testing.T) {
	// 2023 has an approved report, 2024 does not: the window [2023, 2024]
	// must yield 2023 only, never a zero-filled 2024.
	lookup := fakeLookup{byYear: map[int]*models.FinancialReport{
		2023: incomeReport(2023, "8000000", "5000000"),
		2021: incomeReport(2021, "4000000", "3000000"),
	}}
	current := incomeReport(2025, "10000000", "6000000")

	comparison, err := reports.Compare(context.Background(), lookup, current, 2)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(comparison) != 1 {
		t.Fatalf("expected 1 comparison year, got %d (%v)", len(comparison), reports.ComparisonYears(comparison))
	}
	metrics, ok := comparison[2023]
	if !ok {
		t.Fatal("missing metrics for 2023")
	}
	if got := metrics[reports.DerivedNetIncome]; !got.Equal(d("3000000")) {
		t.Fatalf("2023 net income: got %s, want 3000000", got)
	}
	// 2021 is outside the 2-year window even though it exists.
	if _, ok := comparison[2021]; ok {
		t.Fatal("2021 is outside the window and must not appear")
	}
}

func TestCompareDefaultsWindow(t *testing.T) {
	lookup := fakeLookup{byYear: map[int]*models.FinancialReport{
		2023: incomeReport(2023, "100", "50"),
		2024: incomeReport(2024, "200", "50"),
	}}
	current := incomeReport(2025, "300", "50")

	comparison, err := reports.Compare(context.Background(), lookup, current, 0)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	years := reports.ComparisonYears(comparison)
	if len(years) != 2 || years[0] != 2023 || years[1] != 2024 {
		t.Fatalf("default window years: got %v, want [2023 2024]", years)
	}
}

func TestExtractMetricsUnknownTypeEmpty(t *testing.T) {
	report := &models.FinancialReport{ID: 1, ReportType: models.ReportTypeNplReceivables}
	agg, err := reports.Aggregate(report)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if metrics := reports.ExtractMetrics(agg); len(metrics) != 0 {
		t.Fatalf("NPL has no comparison subset, got %v", metrics)
	}
}
