package exports

import (
	"testing"
	"time"

	"github.com/kopnusantara/koperasi_backend/models"
)

var testClock = time.Date(2025, 3, 15, 9, 30, 45, 0, time.UTC)

func TestArtifactFilenameDeterministic(t *testing.T) {
	report := testReport(1, models.ReportTypeBalanceSheet, 2024)

	got := artifactFilename(report, FormatSpreadsheet, testClock)
	want := "koperasi_maju_bersama_balance_sheet_2024_2025-03-15_09-30-45.xlsx"
	if got != want {
		t.Fatalf("filename: got %q, want %q", got, want)
	}

	// Same inputs, same name.
	if again := artifactFilename(report, FormatSpreadsheet, testClock); again != got {
		t.Fatalf("filename not deterministic: %q vs %q", got, again)
	}

	if gotPdf := artifactFilename(report, FormatDocument, testClock); gotPdf != "koperasi_maju_bersama_balance_sheet_2024_2025-03-15_09-30-45.pdf" {
		t.Fatalf("pdf filename: got %q", gotPdf)
	}
}

func TestArtifactPathsByFormatAndMonth(t *testing.T) {
	if got := artifactPath(FormatSpreadsheet, testClock, "a.xlsx"); got != "exports/excel/2025/03/a.xlsx" {
		t.Fatalf("excel path: got %q", got)
	}
	if got := artifactPath(FormatDocument, testClock, "a.pdf"); got != "exports/pdf/2025/03/a.pdf" {
		t.Fatalf("pdf path: got %q", got)
	}
	if got := zipPath(testClock, "b.zip"); got != "exports/zip/2025/03/b.zip" {
		t.Fatalf("zip path: got %q", got)
	}
	if got := batchArtifactPath("batch_1_2", "a.pdf"); got != "exports/batch/batch_1_2/a.pdf" {
		t.Fatalf("batch path: got %q", got)
	}
}

func TestZipNames(t *testing.T) {
	if got := combinedZipName("Koperasi Maju Bersama", 2024, testClock); got != "koperasi_maju_bersama_combined_reports_2024_2025-03-15_09-30-45.zip" {
		t.Fatalf("combined zip name: got %q", got)
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	if got := dateRangeZipName(from, to, testClock); got != "laporan_keuangan_2024-01-01_to_2024-12-31_2025-03-15_09-30-45.zip" {
		t.Fatalf("date range zip name: got %q", got)
	}

	if got := defaultZipName(testClock); got != "laporan_export_2025-03-15_09-30-45.zip" {
		t.Fatalf("default zip name: got %q", got)
	}
}
