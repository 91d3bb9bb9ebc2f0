package exports

import (
	"context"
	"testing"
	"time"
)

func TestCleanupDeletesStrictlyOlderOnly(t *testing.T) {
	storage := newMemStorage()
	svc, audit, _, _ := newTestService(&fakeProvider{}, storage)

	now := testClock
	maxAge := 30 * 24 * time.Hour
	cutoff := now.Add(-maxAge)

	put := func(key string, at time.Time) {
		storage.clock = func() time.Time { return at }
		if err := storage.Put(context.Background(), key, []byte("data"), "application/pdf"); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	put("exports/pdf/2025/01/old.pdf", cutoff.Add(-time.Hour))
	put("exports/excel/2025/01/old.xlsx", cutoff.Add(-time.Minute))
	// Exactly at the cutoff: must survive.
	put("exports/zip/2025/02/boundary.zip", cutoff)
	put("exports/batch/batch_1/fresh.pdf", cutoff.Add(time.Hour))
	// Outside the managed prefixes: never touched, whatever its age.
	put("uploads/logo.png", cutoff.Add(-1000*time.Hour))

	result, err := svc.CleanupOldExports(context.Background(), maxAge, fixedClockContext(now))
	if err != nil {
		t.Fatalf("CleanupOldExports: %v", err)
	}
	if !result.Success || result.DeletedFiles != 2 {
		t.Fatalf("result: got %+v, want 2 deleted files", result)
	}
	if result.DeletedSize != 8 {
		t.Fatalf("deleted size: got %d, want 8", result.DeletedSize)
	}
	if !result.CutoffDate.Equal(cutoff) {
		t.Fatalf("cutoff: got %s, want %s", result.CutoffDate, cutoff)
	}

	for _, key := range []string{
		"exports/zip/2025/02/boundary.zip",
		"exports/batch/batch_1/fresh.pdf",
		"uploads/logo.png",
	} {
		if _, err := storage.Get(context.Background(), key); err != nil {
			t.Fatalf("%s should survive the sweep: %v", key, err)
		}
	}
	for _, key := range []string{"exports/pdf/2025/01/old.pdf", "exports/excel/2025/01/old.xlsx"} {
		if _, err := storage.Get(context.Background(), key); err == nil {
			t.Fatalf("%s should have been deleted", key)
		}
	}

	events := audit.byAction(AuditActionExportsCleaned)
	if len(events) != 1 || events[0].DeletedFiles != 2 {
		t.Fatalf("cleanup audit: got %+v", events)
	}
}

func TestCleanupEmptyStorage(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeProvider{}, newMemStorage())

	result, err := svc.CleanupOldExports(context.Background(), 24*time.Hour, fixedClockContext(testClock))
	if err != nil {
		t.Fatalf("CleanupOldExports: %v", err)
	}
	if !result.Success || result.DeletedFiles != 0 || result.DeletedSize != 0 {
		t.Fatalf("result: got %+v", result)
	}
}
