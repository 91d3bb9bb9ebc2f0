package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/exports"
	"github.com/kopnusantara/koperasi_backend/utils"
)

// retention-sweep deletes export artifacts older than the retention window.
// Meant to run from cron; overlapping runs are serialized through the Redis
// lock inside the engine.
func main() {
	maxAgeDays := flag.Int("max-age-days", 0, "Delete artifacts older than this many days (default EXPORT_RETENTION_DAYS, 30)")
	flag.Parse()

	config.ConnectRedisWithRetry()

	storage, err := utils.NewArtifactStorage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init artifact storage:", err)
		os.Exit(1)
	}
	service := exports.NewService(storage)

	result, err := service.CleanupOldExports(context.Background(),
		time.Duration(*maxAgeDays)*24*time.Hour, exports.SystemExportContext())
	if errors.Is(err, exports.ErrCleanupAlreadyRunning) {
		fmt.Println("another sweep is running, skipping")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
		os.Exit(1)
	}

	fmt.Printf("deleted %d artifacts (%d bytes) older than %s\n",
		result.DeletedFiles, result.DeletedSize, result.CutoffDate.Format("2006-01-02 15:04:05"))
}
