package main

import (
	"context"
	"errors"
	"os"

	"flux/internal/amqp"
	"flux/internal/backend"
	"flux/internal/cli"
	"flux/internal/log"
	"flux/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting flux-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		logger.Warn("Worker reads from a private memory backend; mirrored rows will not match the server",
			"backend", cfg.DataBackend)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	exporter, err := cli.NewExporter(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize sheets mirror", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Repository, exporter, logger)
	if err := syncWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
