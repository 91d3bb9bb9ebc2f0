package exports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kopnusantara/koperasi_backend/models"
)

func TestScheduleBatchExportPublishesPerReport(t *testing.T) {
	provider := &fakeProvider{reports: map[int]*models.FinancialReport{
		1: testReport(1, models.ReportTypeBalanceSheet, 2024),
		2: testReport(2, models.ReportTypeIncomeStatement, 2024),
	}}
	svc, audit, queue, batches := newTestService(provider, newMemStorage())

	// Report 9 does not exist; only the two real reports get tasks.
	batchId, err := svc.ScheduleBatchExport(context.Background(), []int{1, 2, 9}, ExportOptions{Format: FormatDocument}, fixedClockContext(testClock))
	if err != nil {
		t.Fatalf("ScheduleBatchExport: %v", err)
	}
	if !strings.HasPrefix(batchId, "batch_") {
		t.Fatalf("batch id: got %q", batchId)
	}

	expected, found, err := batches.GetExpectedCount(context.Background(), batchId)
	if err != nil || !found || expected != 2 {
		t.Fatalf("expected count: got %d found %v err %v", expected, found, err)
	}

	if len(queue.messages) != 2 {
		t.Fatalf("published tasks: got %d, want 2", len(queue.messages))
	}
	for _, msg := range queue.messages {
		if msg.BatchId != batchId {
			t.Fatalf("task batch id: got %q, want %q", msg.BatchId, batchId)
		}
		if msg.Format != string(FormatDocument) {
			t.Fatalf("task format: got %q", msg.Format)
		}
		if msg.RequestedBy != "Budi Hartono" {
			t.Fatalf("task requested_by: got %q", msg.RequestedBy)
		}
	}

	if events := audit.byAction(AuditActionBatchScheduled); len(events) != 1 || events[0].BatchId != batchId {
		t.Fatalf("schedule audit: got %+v", events)
	}
}

func TestScheduleBatchExportNoReports(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeProvider{reports: map[int]*models.FinancialReport{}}, newMemStorage())
	if _, err := svc.ScheduleBatchExport(context.Background(), []int{5}, ExportOptions{}, fixedClockContext(testClock)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleBatchExportSkipsFailedPublishes(t *testing.T) {
	provider := &fakeProvider{reports: map[int]*models.FinancialReport{
		1: testReport(1, models.ReportTypeBalanceSheet, 2024),
		2: testReport(2, models.ReportTypeIncomeStatement, 2024),
		3: testReport(3, models.ReportTypeCashFlow, 2024),
	}}
	svc, audit, queue, batches := newTestService(provider, newMemStorage())
	queue.failIds = map[int]bool{2: true}

	batchId, err := svc.ScheduleBatchExport(context.Background(), []int{1, 2, 3}, ExportOptions{}, fixedClockContext(testClock))
	if err != nil {
		t.Fatalf("ScheduleBatchExport: %v", err)
	}

	if len(queue.messages) != 2 {
		t.Fatalf("published tasks: got %d, want 2", len(queue.messages))
	}
	// The expected count shrinks to the published count, so the batch can
	// still reach completed without the dropped item.
	expected, found, err := batches.GetExpectedCount(context.Background(), batchId)
	if err != nil || !found || expected != 2 {
		t.Fatalf("expected count: got %d found %v err %v", expected, found, err)
	}
	if events := audit.byAction(AuditActionBatchScheduled); len(events) != 1 || events[0].ExportedCount != 2 {
		t.Fatalf("schedule audit: got %+v", events)
	}
}

func TestScheduleBatchExportAllPublishesFail(t *testing.T) {
	provider := &fakeProvider{reports: map[int]*models.FinancialReport{
		1: testReport(1, models.ReportTypeBalanceSheet, 2024),
		2: testReport(2, models.ReportTypeIncomeStatement, 2024),
	}}
	svc, audit, queue, batches := newTestService(provider, newMemStorage())
	queue.err = errors.New("broker unavailable")

	_, err := svc.ScheduleBatchExport(context.Background(), []int{1, 2}, ExportOptions{}, fixedClockContext(testClock))
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if len(batches.expected) != 0 {
		t.Fatalf("batch state not cleared: %+v", batches.expected)
	}
	if events := audit.byAction(AuditActionBatchScheduled); len(events) != 0 {
		t.Fatalf("no schedule audit expected, got %+v", events)
	}
}

func TestProcessExportTaskRoutesUnderBatchPrefix(t *testing.T) {
	storage := newMemStorage()
	provider := &fakeProvider{reports: map[int]*models.FinancialReport{
		1: testReport(1, models.ReportTypeBalanceSheet, 2024),
	}}
	svc, _, queue, _ := newTestService(provider, storage)

	batchId, err := svc.ScheduleBatchExport(context.Background(), []int{1}, ExportOptions{Format: FormatSpreadsheet}, fixedClockContext(testClock))
	if err != nil {
		t.Fatalf("ScheduleBatchExport: %v", err)
	}

	for _, msg := range queue.messages {
		if err := svc.ProcessExportTask(context.Background(), msg); err != nil {
			t.Fatalf("ProcessExportTask: %v", err)
		}
	}

	status, err := svc.GetBatchStatus(context.Background(), batchId)
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if status.Status != BatchStatusCompleted {
		t.Fatalf("status after processing: got %q", status.Status)
	}
	if status.CompletedFiles != 1 || status.ExpectedFiles != 1 {
		t.Fatalf("file counts: completed %d expected %d", status.CompletedFiles, status.ExpectedFiles)
	}
	if len(status.Files) != 1 || !strings.HasPrefix(status.Files[0].Filepath, "exports/batch/"+batchId+"/") {
		t.Fatalf("batch files: got %+v", status.Files)
	}
}

func TestGetBatchStatusProcessingWhileIncomplete(t *testing.T) {
	storage := newMemStorage()
	svc, _, _, batches := newTestService(&fakeProvider{}, storage)

	if err := batches.SetExpectedCount(context.Background(), "batch_x", 3); err != nil {
		t.Fatalf("SetExpectedCount: %v", err)
	}
	if err := storage.Put(context.Background(), "exports/batch/batch_x/a.pdf", []byte("x"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	status, err := svc.GetBatchStatus(context.Background(), "batch_x")
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if status.Status != BatchStatusProcessing || status.CompletedFiles != 1 || status.ExpectedFiles != 3 {
		t.Fatalf("status: got %+v", status)
	}
}

func TestGetBatchStatusUnknownBatch(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeProvider{}, newMemStorage())

	status, err := svc.GetBatchStatus(context.Background(), "batch_unknown")
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if status.Status != BatchStatusError {
		t.Fatalf("unknown batch status: got %q, want %q", status.Status, BatchStatusError)
	}
}
