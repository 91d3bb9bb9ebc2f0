package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/kopnusantara/koperasi_backend/config"
)

// managedPrefixes are the storage areas the retention sweep owns. Anything
// outside them is never touched.
var managedPrefixes = []string{
	"exports/excel/",
	"exports/pdf/",
	"exports/zip/",
	"exports/batch/",
}

const cleanupLockKey = "export_cleanup_lock"

var ErrCleanupAlreadyRunning = errors.New("export cleanup already running")

// CleanupOldExports deletes every managed artifact strictly older than
// maxAge. Objects updated exactly at the cutoff survive. Individual delete
// failures are logged and skipped so one bad object does not stall the whole
// sweep; the returned counts cover what was actually removed.
func (s *Service) CleanupOldExports(ctx context.Context, maxAge time.Duration, ectx ExportContext) (*CleanupResult, error) {
	if maxAge <= 0 {
		maxAge = time.Duration(config.IntFromEnv("EXPORT_RETENTION_DAYS", 30)) * 24 * time.Hour
	}
	cutoff := ectx.Now().Add(-maxAge)
	result := &CleanupResult{CutoffDate: cutoff}

	// Overlapping sweeps (cron double-fire, manual run) would race on the
	// same objects; Redis lock serializes them. No Redis configured means a
	// single-instance deployment, so proceed without the lock.
	if lockClient := config.GetRedisLock(); lockClient != nil {
		lock, err := lockClient.Obtain(ctx, cleanupLockKey, 5*time.Minute, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrCleanupAlreadyRunning
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		defer lock.Release(context.Background())
	}

	for _, prefix := range managedPrefixes {
		objects, err := s.Storage.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", ErrStorageFailure, prefix, err)
		}
		for _, obj := range objects {
			if !obj.Updated.Before(cutoff) {
				continue
			}
			if err := s.Storage.Delete(ctx, obj.Key); err != nil {
				config.LogError(config.GetLogger(), "exports", "CleanupOldExports", "delete artifact", map[string]interface{}{
					"key": obj.Key,
				}, err)
				continue
			}
			result.DeletedFiles++
			result.DeletedSize += obj.Size
		}
	}
	result.Success = true

	s.Audit.Record(ctx, AuditEvent{
		Action:       AuditActionExportsCleaned,
		ActorId:      ectx.ActorId,
		ActorName:    ectx.ActorName,
		DeletedFiles: result.DeletedFiles,
		DeletedSize:  result.DeletedSize,
		CutoffDate:   cutoff.Format("2006-01-02 15:04:05"),
	})
	return result, nil
}
