package exports

import (
	"fmt"
	"time"

	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
)

// Filename/path allocation is deterministic given the injected clock. The
// second-granularity timestamp keeps concurrent exports of the same report
// from colliding in practice; two exports in the same second of the same
// report simply overwrite one another's object, which is harmless because
// the outputs are identical in structure.

const timestampLayout = "2006-01-02_15-04-05"

func (f ExportFormat) ext() string {
	if f == FormatSpreadsheet {
		return "xlsx"
	}
	return "pdf"
}

func (f ExportFormat) contentType() string {
	if f == FormatSpreadsheet {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// dir returns the storage directory segment for a format: "excel" or "pdf".
func (f ExportFormat) dir() string {
	if f == FormatSpreadsheet {
		return "excel"
	}
	return "pdf"
}

func artifactFilename(report *models.FinancialReport, format ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%s.%s",
		utils.Slugify(report.CooperativeName()),
		string(report.ReportType),
		report.ReportingYear,
		now.Format(timestampLayout),
		format.ext(),
	)
}

func artifactPath(format ExportFormat, now time.Time, filename string) string {
	return fmt.Sprintf("exports/%s/%04d/%02d/%s", format.dir(), now.Year(), int(now.Month()), filename)
}

func batchArtifactPath(batchId, filename string) string {
	return fmt.Sprintf("exports/batch/%s/%s", batchId, filename)
}

func batchArtifactPrefix(batchId string) string {
	return fmt.Sprintf("exports/batch/%s/", batchId)
}

func zipPath(now time.Time, name string) string {
	return fmt.Sprintf("exports/zip/%04d/%02d/%s", now.Year(), int(now.Month()), name)
}

func combinedZipName(cooperativeName string, year int, now time.Time) string {
	return fmt.Sprintf("%s_combined_reports_%d_%s.zip",
		utils.Slugify(cooperativeName), year, now.Format(timestampLayout))
}

func dateRangeZipName(from, to time.Time, now time.Time) string {
	return fmt.Sprintf("laporan_keuangan_%s_to_%s_%s.zip",
		from.Format("2006-01-02"), to.Format("2006-01-02"), now.Format(timestampLayout))
}

func defaultZipName(now time.Time) string {
	return fmt.Sprintf("laporan_export_%s.zip", now.Format(timestampLayout))
}
