package exports

import (
	"reflect"
	"testing"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
	"github.com/shopspring/decimal"
)

func balanceSheetFixture() *models.FinancialReport {
	report := testReport(1, models.ReportTypeBalanceSheet, 2024)
	report.LineItems = []*models.ReportLineItem{
		{ID: 1, AccountCode: "1-100", Name: "Kas", Category: reports.CategoryAsset, Amount: mustDecimal("5000000"), SortOrder: 1},
		{ID: 2, AccountCode: "1-999", Name: "Jumlah Aset Lancar", Category: reports.CategoryAsset, Amount: mustDecimal("5000000"), IsSubtotal: true, SortOrder: 2},
		{ID: 3, AccountCode: "2-100", Name: "Hutang Bank", Category: reports.CategoryLiability, Amount: mustDecimal("2000000"), SortOrder: 3},
		{ID: 4, AccountCode: "3-100", Name: "Simpanan Pokok", Category: reports.CategoryEquity, Amount: mustDecimal("3000000"), SortOrder: 4},
	}
	return report
}

func TestBuildGridDeterministic(t *testing.T) {
	report := balanceSheetFixture()
	agg, err := reports.Aggregate(report)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	first := buildGrid(report, agg, testClock)
	second := buildGrid(report, agg, testClock)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("buildGrid is not deterministic for identical inputs")
	}
}

func TestBalanceSheetGridStructure(t *testing.T) {
	report := balanceSheetFixture()
	agg, err := reports.Aggregate(report)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	grid := buildGrid(report, agg, testClock)

	if grid[0].Cells[0].Text != "Koperasi Maju Bersama" {
		t.Fatalf("header row: got %q", grid[0].Cells[0].Text)
	}
	if grid[1].Cells[0].Text != "Neraca" {
		t.Fatalf("title row: got %q", grid[1].Cells[0].Text)
	}

	// Subtotal line items keep their visible amount but render with
	// subtotal styling semantics.
	var sawItemSubtotal bool
	for _, gr := range grid {
		if gr.Kind == rowSubtotal && len(gr.Cells) == 4 && gr.Cells[1].Text == "Jumlah Aset Lancar" {
			sawItemSubtotal = true
		}
	}
	if !sawItemSubtotal {
		t.Fatal("subtotal line item missing from grid")
	}

	// Grand total combines liabilities and equity: 2M + 3M.
	last := grid[len(grid)-1]
	if last.Kind != rowTotal {
		t.Fatalf("last row kind: got %d, want rowTotal", last.Kind)
	}
	if last.Cells[1].Text != "Jumlah Liabilitas dan Ekuitas" {
		t.Fatalf("grand total label: got %q", last.Cells[1].Text)
	}
	if got := last.Cells[2].Amount; got == nil || !got.Equal(mustDecimal("5000000")) {
		t.Fatalf("grand total amount: got %v, want 5000000", got)
	}
}

func TestMemberSavingsGridColumns(t *testing.T) {
	report := testReport(2, models.ReportTypeMemberSavings, 2024)
	report.LineItems = []*models.ReportLineItem{
		{ID: 1, SavingsType: "Simpanan Pokok", Beginning: mustDecimal("100"), Deposits: mustDecimal("50"), Ending: mustDecimal("150")},
	}
	agg, err := reports.Aggregate(report)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	grid := buildGrid(report, agg, testClock)

	var columns *gridRow
	for i := range grid {
		if grid[i].Kind == rowColumns {
			columns = &grid[i]
			break
		}
	}
	if columns == nil {
		t.Fatal("no column header row")
	}
	if len(columns.Cells) != 6 || columns.Cells[0].Text != "Jenis Simpanan" {
		t.Fatalf("savings columns: got %v", columns.Cells)
	}

	last := grid[len(grid)-1]
	if last.Kind != rowTotal || last.Cells[0].Text != "Jumlah" {
		t.Fatalf("savings grand total row: got kind %d cells %v", last.Kind, last.Cells)
	}
	if got := last.Cells[5].Amount; got == nil || !got.Equal(mustDecimal("150")) {
		t.Fatalf("savings ending total: got %v, want 150", got)
	}
}

func TestGenericFallbackForStaleType(t *testing.T) {
	report := testReport(3, models.ReportTypeBalanceSheet, 2024)
	report.ReportType = "legacy_summary"
	agg := &reports.AggregationResult{
		ReportType:     report.ReportType,
		CategoryOrder:  []string{"asset"},
		Totals:         map[string]decimal.Decimal{"asset": mustDecimal("1000000")},
		PreviousTotals: map[string]decimal.Decimal{},
		Derived:        map[string]decimal.Decimal{},
	}

	grid := buildGrid(report, agg, testClock)
	var sawColumns bool
	for _, gr := range grid {
		if gr.Kind == rowColumns {
			sawColumns = true
		}
	}
	if !sawColumns {
		t.Fatal("generic fallback must still emit the column header")
	}
}
