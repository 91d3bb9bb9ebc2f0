package exports

import (
	"fmt"
	"strings"
	"time"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
	"github.com/kopnusantara/koperasi_backend/utils"
	"github.com/shopspring/decimal"
)

// The grid is the format-independent row structure both renderers consume:
// a 4-row header block, then per-section rows with header/item/subtotal/total
// styling semantics. Building it separately from excelize/fpdf keeps the row
// structure testable without parsing xlsx or pdf output.

type rowKind int

const (
	rowMeta rowKind = iota
	rowColumns
	rowSection
	rowItem
	rowSubtotal
	rowTotal
	rowBlank
)

type gridCell struct {
	Text   string
	Amount *decimal.Decimal
}

func textCell(s string) gridCell { return gridCell{Text: s} }

func amountCell(d decimal.Decimal) gridCell { return gridCell{Amount: &d} }

func (c gridCell) Display() string {
	if c.Amount != nil {
		return utils.FormatAmount(*c.Amount)
	}
	return c.Text
}

type gridRow struct {
	Kind  rowKind
	Cells []gridCell
}

func row(kind rowKind, cells ...gridCell) gridRow {
	return gridRow{Kind: kind, Cells: cells}
}

// gridBuilders is the per-type section template table. Types missing here
// fall back to the generic flat listing.
var gridBuilders = map[models.ReportType]func(*models.FinancialReport, *reports.AggregationResult) []gridRow{
	models.ReportTypeBalanceSheet:      buildBalanceSheetSections,
	models.ReportTypeIncomeStatement:   buildIncomeStatementSections,
	models.ReportTypeCashFlow:          buildCashFlowSections,
	models.ReportTypeEquityChanges:     buildEquityChangesSections,
	models.ReportTypeMemberSavings:     buildMemberSavingsSections,
	models.ReportTypeMemberReceivables: buildMemberReceivablesSections,
	models.ReportTypeNplReceivables:    buildNplSections,
	models.ReportTypeShuDistribution:   buildShuSections,
	models.ReportTypeBudgetPlan:        buildBudgetPlanSections,
}

// buildGrid produces the full row structure for one report. Only the
// generated-at header cell depends on anything besides the report and its
// aggregation, so re-rendering an unchanged report yields identical rows.
func buildGrid(report *models.FinancialReport, agg *reports.AggregationResult, generatedAt time.Time) []gridRow {
	rows := []gridRow{
		row(rowMeta, textCell(report.CooperativeName())),
		row(rowMeta, textCell(report.ReportType.DisplayName())),
		row(rowMeta, textCell(fmt.Sprintf("Tahun Buku %d", report.ReportingYear))),
		row(rowMeta, textCell("Dicetak: "+generatedAt.Format("2006-01-02 15:04:05"))),
		row(rowBlank),
	}

	builder, ok := gridBuilders[report.ReportType]
	if !ok {
		builder = buildGenericSections
	}
	return append(rows, builder(report, agg)...)
}

func categoryLabel(category string) string {
	switch category {
	case reports.CategoryAsset:
		return "Aset"
	case reports.CategoryLiability:
		return "Liabilitas"
	case reports.CategoryEquity:
		return "Ekuitas"
	case reports.CategoryRevenue:
		return "Pendapatan"
	case reports.CategoryExpense:
		return "Beban"
	case reports.CategoryOtherIncome:
		return "Pendapatan Lain-lain"
	case reports.CategoryOtherExpense:
		return "Beban Lain-lain"
	case reports.CategoryOperating:
		return "Aktivitas Operasional"
	case reports.CategoryInvesting:
		return "Aktivitas Investasi"
	case reports.CategoryFinancing:
		return "Aktivitas Pendanaan"
	case reports.CategoryInvestment:
		return "Investasi"
	case reports.CategoryOpeningBalance:
		return "Saldo Awal"
	case reports.CategoryAdditions:
		return "Penambahan"
	case reports.CategoryReductions:
		return "Pengurangan"
	case reports.CategoryClosingBalance:
		return "Saldo Akhir"
	default:
		return category
	}
}

var categoryColumns = row(rowColumns,
	textCell("Kode"), textCell("Uraian"), textCell("Tahun Berjalan"), textCell("Tahun Sebelumnya"))

// buildCategorySections emits one section per declared category: a section
// header, the category's line items (subtotal rows styled distinctly, values
// shown but excluded from sums by the aggregator), and a category subtotal.
func buildCategorySections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{categoryColumns}
	items := reports.SortedLineItems(report)
	for _, category := range agg.CategoryOrder {
		rows = append(rows, row(rowSection, textCell(categoryLabel(category))))
		for _, item := range items {
			if item.Category != category {
				continue
			}
			kind := rowItem
			if item.IsSubtotal {
				kind = rowSubtotal
			}
			rows = append(rows, row(kind,
				textCell(item.AccountCode),
				textCell(item.Name),
				amountCell(item.Amount),
				amountCell(item.PreviousAmount),
			))
		}
		rows = append(rows, row(rowSubtotal,
			textCell(""),
			textCell("Jumlah "+categoryLabel(category)),
			amountCell(agg.Totals[category]),
			amountCell(agg.PreviousTotals[category]),
		))
	}
	return rows
}

func buildBalanceSheetSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := buildCategorySections(report, agg)
	// Grand total combines the dependent side of the balance.
	rows = append(rows, row(rowTotal,
		textCell(""),
		textCell("Jumlah Liabilitas dan Ekuitas"),
		amountCell(agg.Totals[reports.CategoryLiability].Add(agg.Totals[reports.CategoryEquity])),
		amountCell(agg.PreviousTotals[reports.CategoryLiability].Add(agg.PreviousTotals[reports.CategoryEquity])),
	))
	return rows
}

func buildIncomeStatementSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := buildCategorySections(report, agg)
	previousNet := agg.PreviousTotals[reports.CategoryRevenue].
		Sub(agg.PreviousTotals[reports.CategoryExpense]).
		Add(agg.PreviousTotals[reports.CategoryOtherIncome]).
		Sub(agg.PreviousTotals[reports.CategoryOtherExpense])
	rows = append(rows, row(rowTotal,
		textCell(""),
		textCell("Sisa Hasil Usaha"),
		amountCell(agg.Derived[reports.DerivedNetIncome]),
		amountCell(previousNet),
	))
	return rows
}

func buildCashFlowSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := buildCategorySections(report, agg)
	previousNet := agg.PreviousTotals[reports.CategoryOperating].
		Add(agg.PreviousTotals[reports.CategoryInvesting]).
		Add(agg.PreviousTotals[reports.CategoryFinancing])
	rows = append(rows,
		row(rowTotal,
			textCell(""),
			textCell("Kenaikan (Penurunan) Kas Bersih"),
			amountCell(agg.Derived[reports.DerivedNetCashFlow]),
			amountCell(previousNet),
		),
		row(rowItem, textCell(""), textCell("Kas Awal Periode"),
			amountCell(agg.Derived[reports.DerivedBeginningCash]), textCell("")),
		row(rowItem, textCell(""), textCell("Kas Akhir Periode"),
			amountCell(agg.Derived[reports.DerivedEndingCash]), textCell("")),
	)
	if !agg.Derived[reports.DerivedCashDiscrepancy].IsZero() {
		rows = append(rows, row(rowMeta,
			textCell(""),
			textCell("Selisih rekonsiliasi kas: "+utils.FormatAmount(agg.Derived[reports.DerivedCashDiscrepancy])),
		))
	}
	return rows
}

func buildEquityChangesSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := buildCategorySections(report, agg)
	rows = append(rows, row(rowTotal,
		textCell(""),
		textCell("Perubahan Ekuitas Bersih"),
		amountCell(agg.Derived[reports.DerivedNetChange]),
		textCell(""),
	))
	return rows
}

func buildBudgetPlanSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := buildCategorySections(report, agg)
	rows = append(rows, row(rowTotal,
		textCell(""),
		textCell("Anggaran Bersih"),
		amountCell(agg.Derived[reports.DerivedNetBudget]),
		amountCell(agg.PreviousTotals[reports.CategoryRevenue].Sub(agg.PreviousTotals[reports.CategoryExpense])),
	))
	if keys := groupsWithPrefix(agg, "priority:"); len(keys) > 0 {
		rows = append(rows,
			row(rowBlank),
			row(rowSection, textCell("Anggaran per Prioritas")),
			row(rowColumns, textCell("Prioritas"), textCell("Jumlah")),
		)
		for _, key := range keys {
			rows = append(rows, row(rowItem,
				textCell(strings.TrimPrefix(key, "priority:")),
				amountCell(agg.Groups[key][reports.MeasureAmount]),
			))
		}
	}
	return rows
}

func buildMemberSavingsSections(_ *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{
		row(rowColumns,
			textCell("Jenis Simpanan"), textCell("Saldo Awal"), textCell("Setoran"),
			textCell("Penarikan"), textCell("Jasa Simpanan"), textCell("Saldo Akhir")),
	}
	for _, key := range groupsWithPrefix(agg, "savings:") {
		g := agg.Groups[key]
		rows = append(rows, row(rowItem,
			textCell(strings.TrimPrefix(key, "savings:")),
			amountCell(g[reports.MeasureBeginning]),
			amountCell(g[reports.MeasureDeposits]),
			amountCell(g[reports.MeasureWithdrawals]),
			amountCell(g[reports.MeasureInterest]),
			amountCell(g[reports.MeasureEnding]),
		))
	}
	rows = append(rows, row(rowTotal,
		textCell("Jumlah"),
		amountCell(agg.Derived[reports.DerivedTotalBeginning]),
		amountCell(agg.Derived[reports.DerivedTotalDeposits]),
		amountCell(agg.Derived[reports.DerivedTotalWithdrawals]),
		amountCell(agg.Derived[reports.DerivedTotalInterest]),
		amountCell(agg.Derived[reports.DerivedTotalEnding]),
	))
	return rows
}

func buildMemberReceivablesSections(_ *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{
		row(rowSection, textCell("Per Jenis Pinjaman")),
		row(rowColumns, textCell("Jenis Pinjaman"), textCell("Baki Debet"), textCell("Jumlah Rekening")),
	}
	rows = append(rows, groupRows(agg, "loan:", reports.MeasureOutstanding, reports.MeasureCount)...)
	rows = append(rows,
		row(rowBlank),
		row(rowSection, textCell("Per Status Pembayaran")),
		row(rowColumns, textCell("Status"), textCell("Baki Debet"), textCell("Jumlah Rekening")),
	)
	rows = append(rows, groupRows(agg, "status:", reports.MeasureOutstanding, reports.MeasureCount)...)
	rows = append(rows,
		row(rowTotal, textCell("Jumlah Baki Debet"), amountCell(agg.Derived[reports.DerivedTotalOutstanding]), textCell("")),
		row(rowMeta, textCell("Rata-rata suku bunga: "+agg.Derived[reports.DerivedAverageInterestRate].StringFixed(2)+"%")),
	)
	return rows
}

func buildNplSections(_ *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{
		row(rowColumns, textCell("Klasifikasi"), textCell("Baki Debet"), textCell("Penyisihan"), textCell("Jumlah Rekening")),
	}
	for _, key := range groupsWithPrefix(agg, "classification:") {
		g := agg.Groups[key]
		rows = append(rows, row(rowItem,
			textCell(strings.TrimPrefix(key, "classification:")),
			amountCell(g[reports.MeasureOutstanding]),
			amountCell(g[reports.MeasureProvision]),
			amountCell(g[reports.MeasureCount]),
		))
	}
	rows = append(rows,
		row(rowTotal, textCell("Jumlah"),
			amountCell(agg.Derived[reports.DerivedTotalOutstanding]),
			amountCell(agg.Derived[reports.DerivedTotalProvision]),
			textCell("")),
		row(rowMeta, textCell("Rata-rata hari tunggakan: "+agg.Derived[reports.DerivedAverageDaysPastDue].StringFixed(0))),
	)
	return rows
}

func buildShuSections(_ *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{
		row(rowSection, textCell("Per Jenis Anggota")),
		row(rowColumns, textCell("Jenis Anggota"), textCell("SHU Dibagikan"), textCell("Jumlah Anggota")),
	}
	rows = append(rows, groupRows(agg, "member:", reports.MeasureDistributed, reports.MeasureMemberCount)...)
	rows = append(rows,
		row(rowBlank),
		row(rowSection, textCell("Per Status Pembayaran")),
		row(rowColumns, textCell("Status"), textCell("SHU Dibagikan"), textCell("Jumlah Anggota")),
	)
	rows = append(rows, groupRows(agg, "status:", reports.MeasureDistributed, reports.MeasureMemberCount)...)
	rows = append(rows,
		row(rowTotal, textCell("Jumlah SHU Dibagikan"),
			amountCell(agg.Derived[reports.DerivedTotalDistributed]),
			amountCell(agg.Derived[reports.DerivedTotalMembers])),
		row(rowMeta, textCell("Rata-rata per anggota: "+utils.FormatAmount(agg.Derived[reports.DerivedAveragePerMember]))),
	)
	return rows
}

// buildGenericSections is the fallback template: a flat listing of every
// line item plus whatever totals the aggregation produced.
func buildGenericSections(report *models.FinancialReport, agg *reports.AggregationResult) []gridRow {
	rows := []gridRow{categoryColumns}
	for _, item := range reports.SortedLineItems(report) {
		kind := rowItem
		if item.IsSubtotal {
			kind = rowSubtotal
		}
		rows = append(rows, row(kind,
			textCell(item.AccountCode),
			textCell(item.Name),
			amountCell(item.Amount),
			amountCell(item.PreviousAmount),
		))
	}
	for _, category := range agg.CategoryOrder {
		rows = append(rows, row(rowSubtotal,
			textCell(""),
			textCell("Jumlah "+categoryLabel(category)),
			amountCell(agg.Totals[category]),
			amountCell(agg.PreviousTotals[category]),
		))
	}
	return rows
}

func groupsWithPrefix(agg *reports.AggregationResult, prefix string) []string {
	var keys []string
	for _, key := range agg.GroupOrder {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

func groupRows(agg *reports.AggregationResult, prefix, firstMeasure, secondMeasure string) []gridRow {
	var rows []gridRow
	for _, key := range groupsWithPrefix(agg, prefix) {
		g := agg.Groups[key]
		rows = append(rows, row(rowItem,
			textCell(strings.TrimPrefix(key, prefix)),
			amountCell(g[firstMeasure]),
			amountCell(g[secondMeasure]),
		))
	}
	return rows
}
