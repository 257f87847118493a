package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matthew-michal/apartment-rental-nj-2025/alert"
	"github.com/matthew-michal/apartment-rental-nj-2025/config"
	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/locking"
	"github.com/matthew-michal/apartment-rental-nj-2025/notify"
	"github.com/matthew-michal/apartment-rental-nj-2025/observability"
	"github.com/matthew-michal/apartment-rental-nj-2025/pipeline"
	"github.com/matthew-michal/apartment-rental-nj-2025/services"
	"github.com/matthew-michal/apartment-rental-nj-2025/source"
	"github.com/matthew-michal/apartment-rental-nj-2025/storage"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	store := dataset.NewFileStore()
	accumulator := dataset.NewAccumulator(store, cfg.BaseTrainingPath, cfg.AccumulatedPath,
		newLocker(cfg, logger), logger)

	switch command {
	case "run":
		if err := runDaily(ctx, cfg, logger, store, accumulator); err != nil {
			logger.Error("Daily run failed: %v", err)
			os.Exit(1)
		}
	case "reset":
		rows, err := accumulator.Reset(ctx)
		if err != nil {
			logger.Error("Reset failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Training data reset to base dataset — table now holds %d rows", rows)
	case "stats":
		if err := printStats(accumulator, cfg, logger); err != nil {
			logger.Error("Stats failed: %v", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [run|reset|stats]\n", os.Args[0])
		os.Exit(2)
	}
}

func runDaily(ctx context.Context, cfg *config.Config, logger *utils.Logger, store dataset.Store, accumulator *dataset.Accumulator) error {
	logger.Info("=== Apartment Rent Prediction System starting ===")
	logger.Info("Config — concurrency: %d | rate: %dms | retries: %d | accumulated: %s",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries, cfg.AccumulatedPath)

	observability.Start(cfg.MetricsPort)

	scorer, err := services.NewScorer(cfg.ModelPath, logger)
	if err != nil {
		return fmt.Errorf("main: load model: %w", err)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.PredictionsDir)
	if err != nil {
		return fmt.Errorf("main: create predictions writer: %w", err)
	}

	thresholds, err := alert.LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		logger.Warn("Could not load thresholds from %s, using defaults: %v", cfg.ThresholdsPath, err)
		thresholds = alert.DefaultThresholds()
	}

	var metrics storage.MetricsSink
	metricsWriter, err := storage.NewMetricsWriter(cfg.DSN())
	if err != nil {
		logger.Warn("PostgreSQL unavailable, metrics will not be persisted: %v", err)
		logger.Warn("Make sure Docker is running: docker compose up -d")
	} else {
		defer metricsWriter.Close()
		metrics = metricsWriter
	}

	runner := &pipeline.Runner{
		Cfg:         cfg,
		Logger:      logger,
		Provider:    newProvider(cfg, logger),
		Cleaner:     services.NewCleaner(logger),
		Stations:    services.NewStationFinder(cfg.MaxConcurrency, logger),
		Scorer:      scorer,
		Drift:       services.NewDriftMonitor(logger),
		Quality:     services.NewQualityService(logger),
		Deals:       services.NewDealService(thresholds.GoodDealMinDiscount, thresholds.TopDeals, logger),
		Store:       store,
		Accumulator: accumulator,
		Predictions: csvWriter,
		Metrics:     metrics,
		Mailer:      notify.NewMailer(cfg, logger),
		Thresholds:  thresholds,
	}
	return runner.Run(ctx)
}

func printStats(accumulator *dataset.Accumulator, cfg *config.Config, logger *utils.Logger) error {
	stats, err := accumulator.Stats()
	if err != nil {
		return err
	}
	if stats == nil {
		logger.Info("No accumulated dataset yet — run the pipeline first")
		return nil
	}

	fmt.Println("\n\033[1;36m  TRAINING DATA\033[0m")
	fmt.Printf("  Base rows        : \033[1m%d\033[0m\n", stats.BaseSize)
	fmt.Printf("  Accumulated rows : \033[1m%d\033[0m\n", stats.AccumulatedSize)
	fmt.Printf("  Growth           : \033[1m%d (%.1f%%)\033[0m\n", stats.Growth, stats.GrowthPercentage)

	mw, err := storage.NewMetricsWriter(cfg.DSN())
	if err != nil {
		logger.Warn("PostgreSQL unavailable, skipping recent run metrics: %v", err)
		return nil
	}
	defer mw.Close()

	rows, err := mw.FetchRecent(5)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	fmt.Println("\n\033[1;36m  RECENT RUNS\033[0m")
	for _, r := range rows {
		fmt.Printf("  %s — %d listings, drift %.3f, %d drifted cols, %d good deals\n",
			r.Timestamp.Format("2006-01-02 15:04"), r.DataPoints,
			r.PredictionDrift, r.NumDriftedColumns, r.GoodDealsCount)
	}
	return nil
}

// newLocker returns a redis-backed advisory lock, or a no-op lock when
// redis is not reachable so single-process runs still work.
func newLocker(cfg *config.Config, logger *utils.Logger) locking.Locker {
	client, err := redisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable (%v) — accumulation will run without an advisory lock", err)
		return locking.Noop{}
	}
	return locking.NewRedisLocker(client)
}

func newProvider(cfg *config.Config, logger *utils.Logger) *source.Provider {
	provider := &source.Provider{
		API:     source.NewAPIClient(cfg, logger),
		Browser: source.NewBrowserSource(cfg, logger),
		Logger:  logger,
	}

	client, err := redisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable (%v) — pull cache disabled", err)
		return provider
	}
	provider.Cache = &source.PullCache{
		Client: client,
		TTL:    time.Duration(cfg.PullCacheTTLh) * time.Hour,
		Logger: logger,
	}
	return provider
}

func redisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("main: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("main: ping redis: %w", err)
	}
	return client, nil
}
