package exports

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
	"github.com/kopnusantara/koperasi_backend/utils"
	"github.com/shopspring/decimal"
)

// metricLabels maps comparison metric keys to printable Indonesian labels.
var metricLabels = map[string]string{
	"total_assets":                  "Jumlah Aset",
	"total_liabilities":             "Jumlah Liabilitas",
	"total_equity":                  "Jumlah Ekuitas",
	"revenue":                       "Pendapatan",
	"expense":                       "Beban",
	reports.DerivedNetIncome:        "Sisa Hasil Usaha",
	reports.CategoryOperating:       "Kas Operasional",
	reports.CategoryInvesting:       "Kas Investasi",
	reports.CategoryFinancing:       "Kas Pendanaan",
	reports.DerivedNetCashFlow:      "Arus Kas Bersih",
	reports.DerivedNetBudget:        "Anggaran Bersih",
	reports.DerivedTotalEnding:      "Saldo Akhir Simpanan",
	reports.DerivedTotalDistributed: "SHU Dibagikan",
}

// RenderPDF renders one report into a paginated document. The page geometry
// comes from the options (paper size, orientation, font); the row content is
// the same grid the spreadsheet renderer uses, so the two formats always
// agree on values. Comparison and chart sections are appended after the
// report body when requested.
func RenderPDF(report *models.FinancialReport, agg *reports.AggregationResult,
	comparison map[int]reports.ComparisonMetrics, opts ExportOptions, ectx ExportContext) ([]byte, error) {

	orientation := "P"
	if strings.EqualFold(opts.Orientation, "landscape") {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", opts.PaperSize, "")
	font := pdfFont(opts.Font)
	pdf.SetFont(font, "", 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(font, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Halaman %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	grid := buildGrid(report, agg, ectx.Now())
	writeGridToPDF(pdf, font, grid)

	if opts.IncludeComparison && len(comparison) > 0 {
		writeComparisonSection(pdf, font, report, comparison)
	}
	if opts.IncludeCharts {
		writeChartSection(pdf, font, agg)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

// pdfFont maps the requested font family to one of the builtin core fonts.
// Unknown families fall back to Helvetica, which is what "Arial" maps to.
func pdfFont(requested string) string {
	switch strings.ToLower(requested) {
	case "times", "times new roman":
		return "Times"
	case "courier", "courier new":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func writeGridToPDF(pdf *fpdf.Fpdf, font string, grid []gridRow) {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for i, gr := range grid {
		switch gr.Kind {
		case rowBlank:
			pdf.Ln(4)
		case rowMeta:
			size := 9.0
			style := ""
			if i == 0 {
				size, style = 14, "B"
			} else if i == 1 {
				size, style = 12, "B"
			}
			pdf.SetFont(font, style, size)
			pdf.CellFormat(usable, 6, pdfText(gr, 0), "", 1, "C", false, 0, "")
		case rowColumns:
			pdf.SetFont(font, "B", 9)
			pdf.SetFillColor(217, 225, 242)
			writePDFCells(pdf, usable, gr, "1", true)
		case rowSection:
			pdf.Ln(2)
			pdf.SetFont(font, "B", 10)
			pdf.CellFormat(usable, 6, pdfText(gr, 0), "", 1, "L", false, 0, "")
		case rowItem:
			pdf.SetFont(font, "", 9)
			writePDFCells(pdf, usable, gr, "", false)
		case rowSubtotal:
			pdf.SetFont(font, "BI", 9)
			writePDFCells(pdf, usable, gr, "T", false)
		case rowTotal:
			pdf.SetFont(font, "B", 10)
			writePDFCells(pdf, usable, gr, "TB", false)
		}
	}
}

// writePDFCells lays one grid row out across the usable width: the label
// column takes the slack, amount columns get a fixed width each.
func writePDFCells(pdf *fpdf.Fpdf, usable float64, gr gridRow, border string, fill bool) {
	const amountWidth = 32.0
	n := len(gr.Cells)
	if n == 0 {
		pdf.Ln(5)
		return
	}
	widths := make([]float64, n)
	remaining := usable
	for i := n - 1; i >= 1; i-- {
		widths[i] = amountWidth
		remaining -= amountWidth
	}
	if n >= 3 {
		// First column is a short code, second is the wide label.
		widths[0] = 18
		widths[1] += remaining - 18
	} else {
		widths[0] = remaining
	}

	for i, cell := range gr.Cells {
		align := "L"
		if cell.Amount != nil {
			align = "R"
		}
		pdf.CellFormat(widths[i], 5.5, cell.Display(), border, 0, align, fill, 0, "")
	}
	pdf.Ln(-1)
}

func pdfText(gr gridRow, idx int) string {
	if idx < len(gr.Cells) {
		return gr.Cells[idx].Display()
	}
	return ""
}

// writeComparisonSection prints the cross-year metric table: one row per
// metric, one column per prior year plus the current one.
func writeComparisonSection(pdf *fpdf.Fpdf, font string, report *models.FinancialReport, comparison map[int]reports.ComparisonMetrics) {
	years := reports.ComparisonYears(comparison)

	pdf.Ln(8)
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(0, 7, "Perbandingan Antar Tahun", "", 1, "L", false, 0, "")

	metricKeys := collectMetricKeys(comparison)
	if len(metricKeys) == 0 {
		pdf.SetFont(font, "I", 9)
		pdf.CellFormat(0, 6, "Tidak ada data pembanding untuk jenis laporan ini.", "", 1, "L", false, 0, "")
		return
	}

	const labelWidth, yearWidth = 55.0, 32.0
	pdf.SetFont(font, "B", 9)
	pdf.SetFillColor(217, 225, 242)
	pdf.CellFormat(labelWidth, 6, "Indikator", "1", 0, "L", true, 0, "")
	for _, y := range years {
		pdf.CellFormat(yearWidth, 6, fmt.Sprintf("%d", y), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 9)
	for _, key := range metricKeys {
		label := metricLabels[key]
		if label == "" {
			label = key
		}
		pdf.CellFormat(labelWidth, 6, label, "1", 0, "L", false, 0, "")
		for _, y := range years {
			value, ok := comparison[y][key]
			text := "-"
			if ok {
				text = utils.FormatAmount(value)
			}
			pdf.CellFormat(yearWidth, 6, text, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func collectMetricKeys(comparison map[int]reports.ComparisonMetrics) []string {
	seen := map[string]bool{}
	var keys []string
	for _, metrics := range comparison {
		for key := range metrics {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// chartDescriptor declares one chart for the artifact consumer to render.
// The engine never computes pixel data; it only ships the series.
type chartDescriptor struct {
	Kind   string // pie | bar | line
	Title  string
	Labels []string
	Values []decimal.Decimal
}

func chartDescriptors(agg *reports.AggregationResult) []chartDescriptor {
	var charts []chartDescriptor

	if len(agg.CategoryOrder) > 0 {
		composition := chartDescriptor{Kind: "pie", Title: "Komposisi per Kategori"}
		for _, category := range agg.CategoryOrder {
			composition.Labels = append(composition.Labels, categoryLabel(category))
			composition.Values = append(composition.Values, agg.Totals[category])
		}
		charts = append(charts, composition)

		trend := chartDescriptor{Kind: "bar", Title: "Tahun Berjalan vs Tahun Sebelumnya"}
		for _, category := range agg.CategoryOrder {
			trend.Labels = append(trend.Labels,
				categoryLabel(category)+" (berjalan)", categoryLabel(category)+" (sebelumnya)")
			trend.Values = append(trend.Values,
				agg.Totals[category], agg.PreviousTotals[category])
		}
		charts = append(charts, trend)
	}

	if len(agg.GroupOrder) > 0 {
		grouped := chartDescriptor{Kind: "bar", Title: "Komposisi per Kelompok"}
		for _, key := range agg.GroupOrder {
			grouped.Labels = append(grouped.Labels, key)
			grouped.Values = append(grouped.Values, firstMeasure(agg.Groups[key]))
		}
		charts = append(charts, grouped)
	}
	return charts
}

func firstMeasure(g map[string]decimal.Decimal) decimal.Decimal {
	for _, measure := range []string{
		reports.MeasureAmount, reports.MeasureOutstanding, reports.MeasureDistributed, reports.MeasureEnding,
	} {
		if v, ok := g[measure]; ok {
			return v
		}
	}
	return decimal.Zero
}

// writeChartSection prints the chart descriptors as labelled series tables.
func writeChartSection(pdf *fpdf.Fpdf, font string, agg *reports.AggregationResult) {
	charts := chartDescriptors(agg)
	if len(charts) == 0 {
		return
	}

	pdf.Ln(8)
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(0, 7, "Lampiran Grafik", "", 1, "L", false, 0, "")

	const labelWidth, valueWidth = 90.0, 40.0
	for _, chart := range charts {
		pdf.SetFont(font, "B", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s [%s]", chart.Title, chart.Kind), "", 1, "L", false, 0, "")
		pdf.SetFont(font, "", 9)
		for i, label := range chart.Labels {
			pdf.CellFormat(labelWidth, 5.5, label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(valueWidth, 5.5, utils.FormatAmount(chart.Values[i]), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}
}
