package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-map-viewer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-map-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/weather-map-viewer/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-map-viewer/internal/adapter/tileproxy"
	"github.com/couchcryptid/weather-map-viewer/internal/config"
	"github.com/couchcryptid/weather-map-viewer/internal/domain"
	"github.com/couchcryptid/weather-map-viewer/internal/observability"
	"github.com/couchcryptid/weather-map-viewer/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	metadataClient := openmeteo.NewClient(cfg.MetadataTimeout, metrics, logger)

	// Bounds tracking sink (feature-flagged via KAFKA_BROKERS / BOUNDS_TRACKING_ENABLED).
	var tracker domain.BoundsTracker = domain.NopBoundsTracker{}
	var trackerCloser interface{ Close() error }
	if cfg.BoundsEnabled {
		kt := kafkaadapter.NewTracker(cfg, logger)
		tracker = kt
		trackerCloser = kt
		logger.Info("bounds tracking enabled", "topic", cfg.BoundsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("bounds tracking disabled")
	}

	manager := session.NewManager(metadataClient, tracker, cfg.DefaultDomain, cfg.DefaultVariable, metrics, logger)

	// Tile schemes. Registration is idempotent so re-wiring under a
	// hot-reload supervisor is harmless.
	registry := tileproxy.NewRegistry()
	registry.Register("om", tileproxy.NewOverlayResolver(manager.OverlayURLFor))
	registry.Register("carto", tileproxy.NewArchiveResolver(cfg.TileArchive))
	proxy := tileproxy.NewProxy(registry, cfg.TileCacheSize, cfg.TileTimeout, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, manager, proxy, cfg.StyleURL, cfg.StyleTimeout, manager, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if trackerCloser != nil {
		if err := trackerCloser.Close(); err != nil {
			logger.Error("kafka tracker close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
