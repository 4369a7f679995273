package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mask-drawing/internal/adapters/eventbroker/nats"
	"mask-drawing/internal/adapters/repository/postgres"
	"mask-drawing/internal/adapters/storage/minio"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/service/credential"
	"mask-drawing/internal/core/service/storageevent"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadWorker()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("db connection established")

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	traceRepo := postgres.NewSqlTraceRepository(db)
	credentialService := credential.NewCredentialService(minioAdapter, cfg.Upload)
	eventService := storageevent.NewStorageEventService(minioAdapter, credentialService, traceRepo, logger)

	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	if err := natsConsumer.Subscribe(ctx, eventService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		_ = natsConsumer.Close()
		os.Exit(1)
	}
	logger.Info("NATS subscription active")

	<-ctx.Done()
	logger.Info("gracefully shutting down storage event worker")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		if err := natsConsumer.Close(); err != nil {
			logger.Error("failed to close NATS consumer during shutdown", "error", err)
		}
	}()

	select {
	case <-closed:
	case <-time.After(10 * time.Second):
		logger.Info("shutdown timeout exceeded")
	}

	logger.Info("storage event worker shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
