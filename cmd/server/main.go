package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"posada/internal/api"
	"posada/internal/config"
	"posada/internal/events"
	"posada/internal/feed"
	"posada/internal/metrics"
	"posada/internal/models"
	"posada/internal/notify"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("POSADA_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	roomsCfg, err := config.LoadRoomsConfig(cfg.Rooms.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load rooms config")
	}

	if cfg.Notify.Endpoint == "" {
		logger.Fatal().Msg("set notify.endpoint in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	var cache feed.Cache
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		cache = feed.NewRedisCache(rdb, cfg.FeedCacheTTL())
	} else {
		cache = feed.NewMemoryCache(cfg.FeedCacheTTL(), cfg.Feed.CacheMaxEntries)
	}

	var source feed.Source
	switch cfg.Feed.Provider {
	case "workbook":
		source = feed.NewWorkbookSource(cfg.Feed.WorkbookPath, roomsCfg.Rooms)
	default:
		source, err = feed.NewSheetsSource(ctx, cfg.Feed.CredentialsFile, cfg.Feed.SpreadsheetID, roomsCfg.Rooms, cache, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets source error")
		}
	}

	bus := events.NewBus()
	bus.Subscribe(events.TypeSnapshotReplaced, func(ev events.Event) error {
		logger.Debug().Interface("month", ev.Payload).Msg("availability snapshot replaced")
		return nil
	})
	bus.Subscribe(events.TypeSnapshotDiscarded, func(ev events.Event) error {
		logger.Warn().Interface("month", ev.Payload).Msg("stale availability snapshot discarded")
		return nil
	})

	loader := feed.NewLoader(source, roomsCfg.Rooms, bus, &logger)

	notifier := notify.NewHTTPNotifier(
		cfg.Notify.Endpoint,
		cfg.Notify.APIKey,
		cfg.NotifyTimeout(),
		notify.WithRetry(cfg.Notify.MaxRetries, time.Second),
	)

	srv := api.NewServer(cfg, loader, roomsCfg.Rooms, notifier, bus, &logger)

	// Warm the window with the current month before accepting traffic.
	loader.Load(ctx, models.MonthOf(time.Now().UTC()))

	reload := time.Duration(cfg.Rooms.ReloadSeconds) * time.Second
	if err := config.WatchRooms(ctx, cfg.Rooms.Path, reload, func(rc *config.RoomsConfig) {
		srv.SetRooms(rc.Rooms)
		logger.Info().Int("rooms", len(rc.Rooms)).Msg("rooms config reloaded")
	}); err != nil {
		logger.Error().Err(err).Msg("rooms config watcher not started")
	}

	go srv.Sessions().StartCleanup(time.Duration(cfg.Session.CleanupSeconds)*time.Second, ctx.Done())

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("provider", cfg.Feed.Provider).Msg("availability server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startHealthServer(ctx context.Context, port int, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
