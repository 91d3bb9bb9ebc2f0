package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/exports"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
	"github.com/sirupsen/logrus"
)

// export-worker consumes scheduled export tasks from Pub/Sub and renders one
// artifact per message. Failed tasks are nacked for redelivery; a task that
// fails because the report disappeared is acked so it cannot loop forever.
func main() {
	logger := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	storage, err := utils.NewArtifactStorage()
	if err != nil {
		config.LogError(logger, "export-worker", "main", "init artifact storage", nil, err)
		os.Exit(1)
	}
	service := exports.NewService(storage)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runExportWorker(ctx, logger, service); err != nil {
		config.LogError(logger, "export-worker", "main", "worker stopped", nil, err)
		os.Exit(1)
	}
}

func runExportWorker(ctx context.Context, logger *logrus.Logger, service *exports.Service) error {
	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topic, err := config.CreateTopicIfNotExists(client, os.Getenv("EXPORT_TOPIC"))
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, os.Getenv("EXPORT_SUBSCRIPTION"), topic)
	if err != nil {
		return err
	}
	sub.ReceiveSettings.MaxOutstandingMessages = config.IntFromEnv("EXPORT_WORKER_CONCURRENCY", 4)

	logger.Info("export worker listening")

	callback := func(ctx context.Context, msg *pubsub.Message) {
		var task config.ExportTaskMessage
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			config.LogError(logger, "export-worker", "runExportWorker", "unmarshal task", string(msg.Data), err)
			// A malformed payload never becomes valid on redelivery.
			msg.Ack()
			return
		}

		if err := service.ProcessExportTask(ctx, task); err != nil {
			logger.WithFields(logrus.Fields{
				"batch_id":   task.BatchId,
				"report_id":  task.ReportId,
				"message_id": msg.ID,
			}).Error("export task failed: " + err.Error())
			if errors.Is(err, exports.ErrNotFound) {
				msg.Ack()
				return
			}
			msg.Nack()
			return
		}

		logger.WithFields(logrus.Fields{
			"batch_id":  task.BatchId,
			"report_id": task.ReportId,
		}).Info("export task done")
		msg.Ack()
	}

	return sub.Receive(ctx, callback)
}
