package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pm-assistant-be/internal/bootstrap"
	"pm-assistant-be/internal/config"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/server"
	"pm-assistant-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App, sysLogger)

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("Main", "Consumer failed to start", map[string]interface{}{"error": err})
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		sysLogger.Info("Main", "Shutting down", nil)
	case err := <-errCh:
		sysLogger.Error("Main", "Server stopped", map[string]interface{}{"error": err})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("Main", "Server shutdown incomplete", map[string]interface{}{"error": err})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		sysLogger.Warn("Main", "Tracer shutdown incomplete", map[string]interface{}{"error": err})
	}
	container.Close()
}
