package exports

import (
	"fmt"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Laporan"

// RenderExcel renders one report into an xlsx workbook and returns the
// serialized bytes. The sheet name and column layout follow the cooperative's
// printed report format; amounts are written as numbers with a thousands
// separator so spreadsheet formulas keep working on the output.
func RenderExcel(report *models.FinancialReport, agg *reports.AggregationResult, ectx ExportContext) ([]byte, error) {
	grid := buildGrid(report, agg, ectx.Now())

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	maxCols := 0
	for rowIdx, gr := range grid {
		if len(gr.Cells) > maxCols {
			maxCols = len(gr.Cells)
		}
		for colIdx, cell := range gr.Cells {
			axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
			}
			if cell.Amount != nil {
				amt, _ := cell.Amount.Float64()
				if err := f.SetCellValue(sheetName, axis, amt); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
				}
			} else if cell.Text != "" {
				if err := f.SetCellValue(sheetName, axis, cell.Text); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
				}
			}
			styleId := styles.forCell(gr.Kind, cell)
			if rowIdx == 0 {
				styleId = styles.title
			}
			if styleId != 0 {
				if err := f.SetCellStyle(sheetName, axis, axis, styleId); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
				}
			}
		}
	}

	// Widths chosen for the usual code / label / two amount columns; grouped
	// layouts with more columns reuse the amount width.
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 42)
	if maxCols > 2 {
		endCol, _ := excelize.ColumnNumberToName(maxCols)
		_ = f.SetColWidth(sheetName, "C", endCol, 20)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

type excelStyles struct {
	title    int
	meta     int
	columns  int
	section  int
	number   int
	subtotal int
	subNum   int
	total    int
	totalNum int
}

func newExcelStyles(f *excelize.File) (*excelStyles, error) {
	var (
		s   excelStyles
		err error
	)
	numFmt := 3 // #,##0
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, err
	}
	if s.meta, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}}); err != nil {
		return nil, err
	}
	if s.columns, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Style: 1, Color: "#000000"},
		},
	}); err != nil {
		return nil, err
	}
	if s.section, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}); err != nil {
		return nil, err
	}
	if s.number, err = f.NewStyle(&excelize.Style{NumFmt: numFmt}); err != nil {
		return nil, err
	}
	if s.subtotal, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Italic: true}}); err != nil {
		return nil, err
	}
	if s.subNum, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Italic: true}, NumFmt: numFmt}); err != nil {
		return nil, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "#000000"},
			{Type: "bottom", Style: 6, Color: "#000000"},
		},
	}); err != nil {
		return nil, err
	}
	if s.totalNum, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: numFmt,
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "#000000"},
			{Type: "bottom", Style: 6, Color: "#000000"},
		},
	}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *excelStyles) forCell(kind rowKind, cell gridCell) int {
	isNumber := cell.Amount != nil
	switch kind {
	case rowMeta:
		return s.meta
	case rowColumns:
		return s.columns
	case rowSection:
		return s.section
	case rowItem:
		if isNumber {
			return s.number
		}
		return 0
	case rowSubtotal:
		if isNumber {
			return s.subNum
		}
		return s.subtotal
	case rowTotal:
		if isNumber {
			return s.totalNum
		}
		return s.total
	default:
		return 0
	}
}
