package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-assistant-be/internal/bootstrap"
	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/server"
	"voice-assistant-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint, sysLogger)

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg, sysLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("EVENTS", "Consumer service failed to start", map[string]interface{}{"error": err.Error()})
	}

	// 5. Run Server until a signal arrives
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("HTTP", "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("HTTP", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("HTTP", "Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	_ = shutdownTracer(shutdownCtx)
	container.Close()
}
