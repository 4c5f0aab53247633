package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjmori/vacancywatcher/config"
	"sjmori/vacancywatcher/helpers"
	"sjmori/vacancywatcher/internal/checker"
	"sjmori/vacancywatcher/internal/renderer"
	"sjmori/vacancywatcher/logger"
	"sjmori/vacancywatcher/services/cache"
	"sjmori/vacancywatcher/services/history"
	"sjmori/vacancywatcher/services/notifier"
	"sjmori/vacancywatcher/services/publisher"
	"sjmori/vacancywatcher/services/status"
	"sjmori/vacancywatcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	targets := make([]checker.TargetDate, 0, len(cfg.TargetDates))
	for _, d := range cfg.TargetDates {
		target, err := checker.ParseTargetDate(d)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid target date")
		}
		targets = append(targets, target)
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("check_interval", cfg.CheckInterval).
		Strs("target_dates", cfg.TargetDates).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	rules := checker.ShirakawaRules()
	stdLogger := helpers.NewStandardLogger()

	alerts := notifier.NewWebhookNotifier(cfg.NotifyEndpoint, services.Cache, cfg.NotifySuppress, cfg.NotifyRetries, stdLogger)

	var discoverer *checker.Discoverer
	if cfg.ListingURL != "" {
		discoverer = checker.NewDiscoverer(cfg.ListingURL, rules, checker.ShirakawaListingRules(), cfg.CrawlDelay)
	}

	sessionFactory := func(ctx context.Context) (renderer.Session, error) {
		return renderer.NewChromeSession(ctx, renderer.DefaultChromeOptions(cfg.Headless))
	}

	tracker := status.NewTracker()

	// Start the status API
	statusServer := status.NewServer(cfg.StatusAddr, tracker, services.History)
	go func() {
		if err := statusServer.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("Status server exited with error")
		}
	}()

	// Create and start worker
	w := worker.NewWorker(
		cfg,
		rules,
		targets,
		sessionFactory,
		discoverer,
		alerts,
		services.Publisher,
		services.History,
		tracker,
		stdLogger,
	)

	workerDone := make(chan struct{})
	go func() {
		log.Info().Msg("Starting vacancy watcher")
		w.Start(ctx)
		close(workerDone)
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")
	cancel()

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Status server shutdown failed")
	}

	select {
	case <-workerDone:
		log.Info().Msg("Worker stopped")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Worker did not stop within the grace period")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	History   history.Store
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.History != nil {
		s.History.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Initialize the history store; run history is optional and a missing
	// database only disables it
	store, err := history.NewPostgresStore(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		logger.Warn("History store unavailable, continuing without it: %v", err)
	} else {
		services.History = store
		logger.Info("Connected to Postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)
	}

	return services, nil
}
