package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vigilo-hq/vigilo/internal/config"
	"github.com/vigilo-hq/vigilo/internal/dispatch"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/mailer"
	"github.com/vigilo-hq/vigilo/internal/pkg/clock"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
	"github.com/vigilo-hq/vigilo/internal/pkg/metrics"
	"github.com/vigilo-hq/vigilo/internal/queue"
	remediationsvc "github.com/vigilo-hq/vigilo/internal/remediation"
	"github.com/vigilo-hq/vigilo/internal/repository/postgres"
	"github.com/vigilo-hq/vigilo/internal/resolver"
	"github.com/vigilo-hq/vigilo/internal/store/memory"
	redisstore "github.com/vigilo-hq/vigilo/internal/store/redis"
	"github.com/vigilo-hq/vigilo/internal/worker"
	"github.com/vigilo-hq/vigilo/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log.Info("Starting vigilo worker")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	clk := clock.System()

	// Protective state lives in Redis when available; the in-memory
	// store is for single-node deployments.
	var kv remediation.KV
	var sessions remediation.SessionIndex
	if cfg.Redis.Enabled {
		store, err := redisstore.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer store.Close()
		kv, sessions = store, store
		log.Info("Using redis protective-state store")
	} else {
		store := memory.New(clk)
		kv, sessions = store, store
		log.Info("Using in-memory protective-state store")
	}

	directory := postgres.NewDirectoryRepository(db)

	deps := dispatch.Deps{
		Resolver:      resolver.New(directory, log),
		Notifier:      postgres.NewNotificationSink(db),
		Mailer:        mailer.NewLogMailer(log),
		Audit:         postgres.NewAuditStore(db),
		Tasks:         postgres.NewTaskStore(db),
		Actions:       remediationsvc.NewService(kv, sessions, clk, log),
		Directory:     directory,
		Clock:         clk,
		Logger:        log,
		BaseURL:       cfg.Alerting.BaseURL,
		MailEnabled:   cfg.Alerting.MailEnabled,
		PatternWindow: cfg.Alerting.PatternWindow,
	}
	router := dispatch.NewRouter(deps)

	var consumer queue.Consumer
	if cfg.Kafka.Enabled {
		consumer = queue.NewKafkaConsumer(queue.ParseBrokers(cfg.Kafka.Brokers), cfg.Kafka.GroupID, log)
		log.Infof("Consuming %d kafka lanes", len(queue.Lanes()))
	} else {
		log.Fatal("KAFKA_ENABLED must be true for the worker binary")
	}

	w := worker.New(consumer, router, log, cfg.Worker.Concurrency, cfg.Worker.SweepSchedule)

	// Health and metrics listener
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(rw http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	metrics.Mount(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}
	go func() {
		log.Infof("Health/metrics listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Blocks until the context is cancelled
	if err := w.Start(ctx); err != nil && err != context.Canceled {
		log.ErrorWithErr(err, "Worker exited with error")
	}

	log.Info("Shutting down")
	w.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "HTTP shutdown failed")
	}

	log.Info("Stopped")
}
