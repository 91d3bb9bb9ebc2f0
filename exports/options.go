package exports

import (
	"time"
)

type ExportFormat string

const (
	// FormatDocument renders a paginated, print-ready PDF.
	FormatDocument ExportFormat = "document"
	// FormatSpreadsheet renders an xlsx cell grid.
	FormatSpreadsheet ExportFormat = "spreadsheet"
)

const DefaultComparisonYears = 2

// ExportOptions controls a single export or every item of a batch.
type ExportOptions struct {
	Format ExportFormat `json:"format"`

	// Document options.
	PaperSize   string `json:"paper_size"`
	Orientation string `json:"orientation"` // portrait | landscape
	Font        string `json:"font"`

	IncludeComparison bool `json:"include_comparison"`
	ComparisonYears   int  `json:"comparison_years"`
	IncludeCharts     bool `json:"include_charts"`

	CreateZip bool   `json:"create_zip"`
	ZipName   string `json:"zip_name"`

	// BatchId routes artifacts of a scheduled batch under
	// exports/batch/{batchId}/ so GetBatchStatus can discover them.
	BatchId string `json:"batch_id"`
}

func (o ExportOptions) normalized() ExportOptions {
	if o.Format == "" {
		o.Format = FormatDocument
	}
	if o.PaperSize == "" {
		o.PaperSize = "A4"
	}
	if o.Orientation == "" {
		o.Orientation = "portrait"
	}
	if o.Font == "" {
		o.Font = "Arial"
	}
	if o.ComparisonYears <= 0 {
		o.ComparisonYears = DefaultComparisonYears
	}
	return o
}

// ExportArtifact describes one rendered export file persisted to storage.
type ExportArtifact struct {
	Filename    string    `json:"filename"`
	Path        string    `json:"filepath"`
	Size        int64     `json:"file_size"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportOutcome is the immutable result of one export attempt. Failed
// attempts carry the error description; they are never retried automatically.
type ExportOutcome struct {
	ReportId int             `json:"report_id"`
	Success  bool            `json:"success"`
	Artifact *ExportArtifact `json:"artifact,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchResult aggregates the outcomes of one batch export.
type BatchResult struct {
	Outcomes      []*ExportOutcome `json:"outcomes"`
	ExportedCount int              `json:"exported_count"`
	ErrorCount    int              `json:"error_count"`
	Archive       *ExportArtifact  `json:"archive,omitempty"`
}

const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusError      = "error"
)

type BatchFile struct {
	Filename    string `json:"filename"`
	Filepath    string `json:"filepath"`
	FileSize    int64  `json:"file_size"`
	DownloadURL string `json:"download_url"`
}

// BatchStatus reports the progress of a scheduled (asynchronous) batch.
type BatchStatus struct {
	BatchId        string      `json:"batch_id"`
	Status         string      `json:"status"`
	CompletedFiles int         `json:"completed_files"`
	ExpectedFiles  int         `json:"expected_files"`
	Files          []BatchFile `json:"files"`
}

// CleanupResult reports one retention sweep.
type CleanupResult struct {
	Success      bool      `json:"success"`
	DeletedFiles int       `json:"deleted_files"`
	DeletedSize  int64     `json:"deleted_size"`
	CutoffDate   time.Time `json:"cutoff_date"`
}
