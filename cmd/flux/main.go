package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"flux/internal/amqp"
	"flux/internal/cache"
	"flux/internal/cli"
	apphttp "flux/internal/http"
	"flux/internal/ledger"
	"flux/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

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

	views := cache.NewLRUCache[ledger.ViewKey, any](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(views)

	registry := ledger.NewRegistry(res.Repository,
		ledger.WithLogger(logger),
		ledger.WithViewCache(views))

	checks := map[string]apphttp.ReadyCheck{}
	if pinger, ok := res.Repository.(interface{ Ping(context.Context) error }); ok {
		checks["repository"] = pinger.Ping
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		registry.OnOpen(amqp.NewEventForwarder(amqpClient, logger).Attach)
		checks["amqp"] = amqpClient.Healthy
		logger.Info("Ledger events published", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, registry, logger, apphttp.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Checks:         checks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting flux server", "port", cfg.Port, "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return caches.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.NotificationRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				registry.Each(func(s *ledger.Store) { s.RefreshNotifications() })
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
