package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mask-drawing/internal/adapters/handlers/http/chi"
	"mask-drawing/internal/adapters/handlers/http/chi/v1/credential"
	"mask-drawing/internal/adapters/storage/minio"
	"mask-drawing/internal/config"
	credentialservice "mask-drawing/internal/core/service/credential"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	credentialService := credentialservice.NewCredentialService(minioAdapter, cfg.Upload)

	//http
	credentialHandler := credential.NewCredentialHandlerV1(credentialService, logger)

	router := chi.NewRouter(logger, credentialHandler, cfg.Server.AllowedOrigins)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "env", cfg.Env.Env)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down credential service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	<-done
	logger.Info("app shutdown complete")
}
