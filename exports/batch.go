package exports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/models/reports"
	"github.com/kopnusantara/koperasi_backend/utils"
)

// ReportProvider is the report data surface the engine depends on.
// models.ReportStore satisfies it against the database; tests use fakes.
type ReportProvider interface {
	reports.ApprovedReportLookup
	GetReport(ctx context.Context, id int) (*models.FinancialReport, error)
	ListReportsByIds(ctx context.Context, ids []int) ([]*models.FinancialReport, error)
	ListApprovedReports(ctx context.Context, cooperativeId int, year int) ([]*models.FinancialReport, error)
	ListApprovedReportsByDateRange(ctx context.Context, cooperativeId int, from, to time.Time) ([]*models.FinancialReport, error)
}

// Service is the export engine. All collaborators are injected; NewService
// wires the production set.
type Service struct {
	Provider ReportProvider
	Storage  utils.ArtifactStorage
	Audit    AuditSink
	Queue    TaskQueue
	Batches  BatchStateStore
	Workers  int
}

func NewService(storage utils.ArtifactStorage) *Service {
	return &Service{
		Provider: models.ReportStore{},
		Storage:  storage,
		Audit:    LogAuditSink{},
		Queue:    &PubSubTaskQueue{},
		Batches:  &RedisBatchStateStore{},
		Workers:  config.IntFromEnv("EXPORT_BATCH_WORKERS", 4),
	}
}

func (s *Service) workerCount() int {
	if s.Workers <= 0 {
		return 1
	}
	return s.Workers
}

// ExportReport renders and stores one report, then emits an audit event.
func (s *Service) ExportReport(ctx context.Context, reportId int, opts ExportOptions, ectx ExportContext) (*ExportArtifact, error) {
	report, err := s.Provider.GetReport(ctx, reportId)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %d", ErrNotFound, reportId)
	}

	artifact, err := s.exportOne(ctx, report, opts.normalized(), ectx)
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, AuditEvent{
		Action:        AuditActionReportExported,
		ActorId:       ectx.ActorId,
		ActorName:     ectx.ActorName,
		CooperativeId: report.CooperativeId,
		ReportId:      report.ID,
		ExportedCount: 1,
		Details:       artifact.Filename,
	})
	return artifact, nil
}

// exportOne is the single-item pipeline: aggregate, optionally compare,
// render in the requested format, allocate a name and persist. Artifacts of
// a scheduled batch are routed under the batch prefix instead of the regular
// per-format directory.
func (s *Service) exportOne(ctx context.Context, report *models.FinancialReport, opts ExportOptions, ectx ExportContext) (*ExportArtifact, error) {
	agg, err := reports.AggregateCached(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	var comparison map[int]reports.ComparisonMetrics
	if opts.Format == FormatDocument && opts.IncludeComparison {
		comparison, err = reports.Compare(ctx, s.Provider, report, opts.ComparisonYears)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	var data []byte
	switch opts.Format {
	case FormatSpreadsheet:
		data, err = RenderExcel(report, agg, ectx)
	case FormatDocument:
		data, err = RenderPDF(report, agg, comparison, opts, ectx)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrRenderFailure, opts.Format)
	}
	if err != nil {
		return nil, err
	}

	now := ectx.Now()
	filename := artifactFilename(report, opts.Format, now)
	key := artifactPath(opts.Format, now, filename)
	if opts.BatchId != "" {
		key = batchArtifactPath(opts.BatchId, filename)
	}
	if err := s.Storage.Put(ctx, key, data, opts.Format.contentType()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return &ExportArtifact{
		Filename:    filename,
		Path:        key,
		Size:        int64(len(data)),
		DownloadURL: s.Storage.URL(key),
		CreatedAt:   now,
	}, nil
}

// ExportBatch exports every listed report with per-item failure isolation:
// one outcome per input id, in input order, failures recorded rather than
// aborting the rest. The optional zip bundles only the successes and is
// built after every item has settled.
func (s *Service) ExportBatch(ctx context.Context, reportIds []int, opts ExportOptions, ectx ExportContext) (*BatchResult, error) {
	if len(reportIds) == 0 {
		return nil, fmt.Errorf("%w: empty report id list", ErrNotFound)
	}
	opts = opts.normalized()

	loaded, err := s.Provider.ListReportsByIds(ctx, reportIds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("%w: no reports match the requested ids", ErrNotFound)
	}
	byId := make(map[int]*models.FinancialReport, len(loaded))
	for _, r := range loaded {
		byId[r.ID] = r
	}

	result := s.runBatch(ctx, reportIds, byId, opts, ectx)

	if opts.CreateZip && result.ExportedCount > 0 {
		var artifacts []*ExportArtifact
		for _, outcome := range result.Outcomes {
			if outcome.Success {
				artifacts = append(artifacts, outcome.Artifact)
			}
		}
		archive, err := bundleArtifacts(ctx, s.Storage, artifacts, opts.ZipName, ectx)
		if err != nil {
			config.LogError(config.GetLogger(), "exports", "ExportBatch", "bundle artifacts", map[string]interface{}{
				"report_ids": reportIds,
			}, err)
		} else {
			result.Archive = archive
		}
	}

	s.Audit.Record(ctx, AuditEvent{
		Action:        AuditActionBatchExported,
		ActorId:       ectx.ActorId,
		ActorName:     ectx.ActorName,
		BatchId:       opts.BatchId,
		ExportedCount: result.ExportedCount,
		ErrorCount:    result.ErrorCount,
	})
	return result, nil
}

// runBatch fans the items out over a bounded worker pool and collects the
// outcomes into input-order slots. A panicking item becomes a failure
// outcome for that slot only.
func (s *Service) runBatch(ctx context.Context, reportIds []int, byId map[int]*models.FinancialReport, opts ExportOptions, ectx ExportContext) *BatchResult {
	outcomes := make([]*ExportOutcome, len(reportIds))

	type job struct {
		index    int
		reportId int
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < s.workerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.index] = s.exportBatchItem(ctx, j.reportId, byId[j.reportId], opts, ectx)
			}
		}()
	}
	for i, id := range reportIds {
		jobs <- job{index: i, reportId: id}
	}
	close(jobs)
	wg.Wait()

	result := &BatchResult{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Success {
			result.ExportedCount++
		} else {
			result.ErrorCount++
		}
	}
	return result
}

func (s *Service) exportBatchItem(ctx context.Context, reportId int, report *models.FinancialReport, opts ExportOptions, ectx ExportContext) (outcome *ExportOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = &ExportOutcome{
				ReportId: reportId,
				Error:    fmt.Sprintf("panic during export: %v", r),
			}
		}
	}()

	if report == nil {
		return &ExportOutcome{ReportId: reportId, Error: "report not found"}
	}
	artifact, err := s.exportOne(ctx, report, opts, ectx)
	if err != nil {
		config.LogError(config.GetLogger(), "exports", "exportBatchItem", "export report", map[string]interface{}{
			"report_id": reportId,
		}, err)
		return &ExportOutcome{ReportId: reportId, Error: err.Error()}
	}
	return &ExportOutcome{ReportId: reportId, Success: true, Artifact: artifact}
}

// ExportCooperativeYear exports every approved report of one cooperative and
// book year, zipped under the cooperative's combined-reports name.
func (s *Service) ExportCooperativeYear(ctx context.Context, cooperativeId, year int, opts ExportOptions, ectx ExportContext) (*BatchResult, error) {
	approved, err := s.Provider.ListApprovedReports(ctx, cooperativeId, year)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(approved) == 0 {
		return nil, fmt.Errorf("%w: no approved reports for cooperative %d year %d", ErrNotFound, cooperativeId, year)
	}

	opts = opts.normalized()
	opts.CreateZip = true
	if opts.ZipName == "" {
		opts.ZipName = combinedZipName(approved[0].CooperativeName(), year, ectx.Now())
	}
	return s.ExportBatch(ctx, reportIdsOf(approved), opts, ectx)
}

// ExportByDateRange exports every approved report whose period end falls in
// [from, to], zipped under the date-range name.
func (s *Service) ExportByDateRange(ctx context.Context, cooperativeId int, from, to time.Time, opts ExportOptions, ectx ExportContext) (*BatchResult, error) {
	approved, err := s.Provider.ListApprovedReportsByDateRange(ctx, cooperativeId, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(approved) == 0 {
		return nil, fmt.Errorf("%w: no approved reports between %s and %s", ErrNotFound,
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	opts = opts.normalized()
	opts.CreateZip = true
	if opts.ZipName == "" {
		opts.ZipName = dateRangeZipName(from, to, ectx.Now())
	}
	return s.ExportBatch(ctx, reportIdsOf(approved), opts, ectx)
}

func reportIdsOf(list []*models.FinancialReport) []int {
	ids := make([]int, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}
