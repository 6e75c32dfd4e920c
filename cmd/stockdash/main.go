package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"stockdash/internal/collector"
	"stockdash/internal/config"
	"stockdash/internal/dashboard"
	"stockdash/internal/forecast"
	"stockdash/internal/recorder"
	"stockdash/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("stockdash starting...")

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}
	if cfg.Server.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Provider.Name {
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{}
	case config.ProviderPolygon:
		hc := collector.NewHTTPClient(cfg.Provider.Proxy, cfg.Provider.Timeout)
		fetcher = collector.NewPolygonFetcher(cfg.Provider.PolygonAPIKey, hc)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Provider.Proxy, cfg.Provider.Timeout)
	}
	log.Infof("data source: %s", fetcher.Name())

	providerLabels := []string{"provider", "method", "error"}
	fetcher = collector.NewLoggingMiddleware(logger, fetcher)
	fetcher = collector.NewInstrumentingMiddleware(
		kitprometheus.NewCounterFrom(prometheus.CounterOpts{
			Namespace: "stockdash",
			Subsystem: "provider",
			Name:      "request_count",
			Help:      "Number of provider requests received.",
		}, providerLabels),
		kitprometheus.NewSummaryFrom(prometheus.SummaryOpts{
			Namespace: "stockdash",
			Subsystem: "provider",
			Name:      "request_latency_seconds",
			Help:      "Total duration of provider requests in seconds.",
		}, providerLabels),
		fetcher,
	)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctrl := dashboard.NewController(fetcher, forecast.NewTrendForecaster(fetcher, cfg.Forecast.LookbackDays))
	ctrl.Recorder = rec
	ctrl.Logger = logger
	ctrl.Invocations = kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "dashboard",
		Name:      "handler_invocations_total",
		Help:      "Dashboard handler runs by outcome.",
	}, []string{"handler", "outcome"})

	srv := server.New(server.Options{
		Addr:           cfg.Server.Addr,
		HandlerTimeout: cfg.Server.HandlerTimeout,
		Debug:          cfg.Server.Debug,
		Provider:       fetcher.Name(),
	}, ctrl, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info("stockdash is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("received %s, stopping...", sig)
	case err := <-errCh:
		if err != nil {
			log.Errorf("http server: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Info("stockdash stopped")
}
