package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	amqpadapter "github.com/couchcryptid/corruption-heatmap/internal/adapter/amqp"
	"github.com/couchcryptid/corruption-heatmap/internal/adapter/api"
	httpadapter "github.com/couchcryptid/corruption-heatmap/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/corruption-heatmap/internal/adapter/kafka"
	"github.com/couchcryptid/corruption-heatmap/internal/adapter/mapbox"
	"github.com/couchcryptid/corruption-heatmap/internal/config"
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"github.com/couchcryptid/corruption-heatmap/internal/portal"
	"github.com/joho/godotenv"
)

// eventPublisher is a submission publisher holding a broker connection.
type eventPublisher interface {
	domain.SubmissionPublisher
	Close() error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.APIBase, cfg.APITimeout, metrics, logger)
	settings := portal.MapSettings{
		Center: domain.Location{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLng},
		Zoom:   cfg.MapZoom,
	}

	var opts []portal.Option

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		mb := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts = append(opts, portal.WithGeocoder(mapbox.NewCachedGeocoder(mb, cfg.MapboxCacheSize, metrics)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	publisher, err := newPublisher(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to start event publisher", "backend", cfg.EventsBackend, "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		opts = append(opts, portal.WithPublisher(publisher))
	}

	p := portal.New(client, settings, metrics, logger, opts...)

	srv, err := httpadapter.NewServer(cfg.HTTPAddr, p, client, logger)
	if err != nil {
		logger.Error("failed to create http server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()
	logger.Info("heatmap ready", "api_base", cfg.APIBase, "events", cfg.EventsBackend)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("event publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newPublisher returns nil when events are disabled.
func newPublisher(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (eventPublisher, error) {
	switch cfg.EventsBackend {
	case config.EventsKafka:
		logger.Info("publishing submissions to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return kafkaadapter.NewPublisher(cfg, metrics, logger), nil
	case config.EventsAMQP:
		pub, err := amqpadapter.NewPublisher(ctx, cfg, metrics, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, nil
	}
}
