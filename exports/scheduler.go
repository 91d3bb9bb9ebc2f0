package exports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
)

// TaskQueue publishes one export task per scheduled report. The production
// implementation is Pub/Sub; tests inject a recording fake.
type TaskQueue interface {
	PublishExportTask(ctx context.Context, msg config.ExportTaskMessage) error
}

type PubSubTaskQueue struct{}

func (PubSubTaskQueue) PublishExportTask(ctx context.Context, msg config.ExportTaskMessage) error {
	_, err := config.PublishExportTask(ctx, msg)
	return err
}

// BatchStateStore persists the expected item count of a scheduled batch, so
// status polling can tell "still processing" from "done". The count is
// written once at schedule time and only read afterwards.
type BatchStateStore interface {
	SetExpectedCount(ctx context.Context, batchId string, count int) error
	GetExpectedCount(ctx context.Context, batchId string) (int, bool, error)
	ClearExpectedCount(ctx context.Context, batchId string) error
}

const batchStateTTL = 7 * 24 * time.Hour

func batchExpectedKey(batchId string) string {
	return fmt.Sprintf("export_batch:%s:expected", batchId)
}

// RedisBatchStateStore keeps batch state in Redis with a week's TTL, well
// past the retention window of the artifacts themselves.
type RedisBatchStateStore struct{}

func (RedisBatchStateStore) SetExpectedCount(_ context.Context, batchId string, count int) error {
	return config.SetRedisValue(batchExpectedKey(batchId), strconv.Itoa(count), batchStateTTL)
}

func (RedisBatchStateStore) GetExpectedCount(_ context.Context, batchId string) (int, bool, error) {
	value, found, err := config.GetRedisValue(batchExpectedKey(batchId))
	if err != nil || !found {
		return 0, false, err
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt expected count for batch %s: %q", batchId, value)
	}
	return count, true, nil
}

func (RedisBatchStateStore) ClearExpectedCount(_ context.Context, batchId string) error {
	return config.RemoveRedisKey(batchExpectedKey(batchId))
}

// ScheduleBatchExport validates the report set, allocates a batch id,
// persists the expected count and publishes one task per report. Workers
// pick the tasks up independently; status is polled via GetBatchStatus.
func (s *Service) ScheduleBatchExport(ctx context.Context, reportIds []int, opts ExportOptions, ectx ExportContext) (string, error) {
	if len(reportIds) == 0 {
		return "", fmt.Errorf("%w: empty report id list", ErrNotFound)
	}
	opts = opts.normalized()

	loaded, err := s.Provider.ListReportsByIds(ctx, reportIds)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(loaded) == 0 {
		return "", fmt.Errorf("%w: none of the %d reports exist", ErrNotFound, len(reportIds))
	}

	batchId := utils.GenerateBatchId()
	// Persisted before the first publish: a worker may finish its item before
	// the loop below has published the rest.
	if err := s.Batches.SetExpectedCount(ctx, batchId, len(loaded)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	published := 0
	for _, report := range loaded {
		msg := config.ExportTaskMessage{
			BatchId:           batchId,
			ReportId:          report.ID,
			CooperativeId:     report.CooperativeId,
			Format:            string(opts.Format),
			PaperSize:         opts.PaperSize,
			Orientation:       opts.Orientation,
			Font:              opts.Font,
			IncludeComparison: opts.IncludeComparison,
			ComparisonYears:   opts.ComparisonYears,
			IncludeCharts:     opts.IncludeCharts,
			RequestedBy:       ectx.ActorName,
			CorrelationId:     correlationId,
		}
		// A failed publish drops this item only; tasks already published
		// stay published and keep being processed.
		if err := s.Queue.PublishExportTask(ctx, msg); err != nil {
			config.LogError(config.GetLogger(), "exports", "ScheduleBatchExport", "publish export task", map[string]interface{}{
				"batch_id":  batchId,
				"report_id": report.ID,
			}, err)
			continue
		}
		published++
	}
	if published == 0 {
		if err := s.Batches.ClearExpectedCount(ctx, batchId); err != nil {
			config.LogError(config.GetLogger(), "exports", "ScheduleBatchExport", "clear batch state", map[string]interface{}{
				"batch_id": batchId,
			}, err)
		}
		return "", fmt.Errorf("%w: no export task could be published", ErrStorageFailure)
	}
	if published < len(loaded) {
		// Shrink the expected count to what actually went out, so the batch
		// can still reach completed.
		if err := s.Batches.SetExpectedCount(ctx, batchId, published); err != nil {
			config.LogError(config.GetLogger(), "exports", "ScheduleBatchExport", "adjust expected count", map[string]interface{}{
				"batch_id": batchId,
			}, err)
		}
	}

	s.Audit.Record(ctx, AuditEvent{
		Action:        AuditActionBatchScheduled,
		ActorId:       ectx.ActorId,
		ActorName:     ectx.ActorName,
		BatchId:       batchId,
		ExportedCount: published,
	})
	return batchId, nil
}

// ProcessExportTask is the worker side of a scheduled batch: it rebuilds the
// options from the flattened message and runs the single-item pipeline under
// the system identity, routing the artifact under the batch prefix.
func (s *Service) ProcessExportTask(ctx context.Context, msg config.ExportTaskMessage) error {
	if msg.CorrelationId != "" {
		ctx = utils.SetCorrelationIdInContext(ctx, msg.CorrelationId)
	}
	opts := ExportOptions{
		Format:            ExportFormat(msg.Format),
		PaperSize:         msg.PaperSize,
		Orientation:       msg.Orientation,
		Font:              msg.Font,
		IncludeComparison: msg.IncludeComparison,
		ComparisonYears:   msg.ComparisonYears,
		IncludeCharts:     msg.IncludeCharts,
		BatchId:           msg.BatchId,
	}.normalized()

	ectx := SystemExportContext()
	if msg.RequestedBy != "" {
		ectx.ActorName = msg.RequestedBy
	}

	_, err := s.ExportReport(ctx, msg.ReportId, opts, ectx)
	return err
}

// GetBatchStatus compares the artifacts present under the batch prefix with
// the expected count persisted at schedule time. An unknown batch id reports
// the error status rather than a zero-expected "completed".
func (s *Service) GetBatchStatus(ctx context.Context, batchId string) (*BatchStatus, error) {
	status := &BatchStatus{BatchId: batchId, Status: BatchStatusProcessing}

	expected, found, err := s.Batches.GetExpectedCount(ctx, batchId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		status.Status = BatchStatusError
		return status, nil
	}
	status.ExpectedFiles = expected

	objects, err := s.Storage.List(ctx, batchArtifactPrefix(batchId))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	for _, obj := range objects {
		status.Files = append(status.Files, BatchFile{
			Filename:    baseName(obj.Key),
			Filepath:    obj.Key,
			FileSize:    obj.Size,
			DownloadURL: s.Storage.URL(obj.Key),
		})
	}
	status.CompletedFiles = len(objects)
	if status.CompletedFiles >= expected {
		status.Status = BatchStatusCompleted
	}
	return status, nil
}

func baseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

var _ ReportProvider = models.ReportStore{}
