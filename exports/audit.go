package exports

import (
	"context"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/utils"
	"github.com/sirupsen/logrus"
)

// Audit actions emitted by the engine.
const (
	AuditActionReportExported = "report_exported"
	AuditActionBatchExported  = "batch_exported"
	AuditActionBatchScheduled = "batch_export_scheduled"
	AuditActionExportsCleaned = "exports_cleaned"
)

// AuditEvent is one structured record handed to the audit sink. Persistence
// of audit logs is external; the engine only emits.
type AuditEvent struct {
	Action        string `json:"action"`
	ActorId       int    `json:"actor_id"`
	ActorName     string `json:"actor_name"`
	CooperativeId int    `json:"cooperative_id,omitempty"`
	ReportId      int    `json:"report_id,omitempty"`
	BatchId       string `json:"batch_id,omitempty"`
	ExportedCount int    `json:"exported_count"`
	ErrorCount    int    `json:"error_count"`
	DeletedFiles  int    `json:"deleted_files,omitempty"`
	DeletedSize   int64  `json:"deleted_size,omitempty"`
	CutoffDate    string `json:"cutoff_date,omitempty"`
	Details       string `json:"details,omitempty"`
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

// LogAuditSink writes audit events through the shared logrus logger.
type LogAuditSink struct{}

func (LogAuditSink) Record(ctx context.Context, event AuditEvent) {
	logger := config.GetLogger()
	if logger == nil {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	logger.WithFields(logrus.Fields{
		"action":         event.Action,
		"actor_id":       event.ActorId,
		"actor_name":     event.ActorName,
		"cooperative_id": event.CooperativeId,
		"report_id":      event.ReportId,
		"batch_id":       event.BatchId,
		"exported_count": event.ExportedCount,
		"error_count":    event.ErrorCount,
		"deleted_files":  event.DeletedFiles,
		"deleted_size":   event.DeletedSize,
		"cutoff_date":    event.CutoffDate,
		"details":        event.Details,
		"correlation_id": cid,
	}).Info("export audit event")
}
