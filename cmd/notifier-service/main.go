package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	apistorage "github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/config"
	"github.com/cuongbtq/jobboard/internal/notifier"
	"github.com/cuongbtq/jobboard/internal/notifier/storage"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/cuongbtq/jobboard/shared/rabbitmq"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("NOTIFIER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/notifier-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateNotifierConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting notifier service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewClient(cfg.Database.ClientConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	store := storage.NewStorage(dbClient.GetDB(), appLogger.Logger)
	if cfg.Database.AutoMigrate {
		// notifications reference applications, so the API tables come first
		if err := apistorage.NewStorage(dbClient).Migrate(ctx); err != nil {
			return err
		}
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	rabbitClient, err := rabbitmq.NewClient(ctx, cfg.RabbitMQ.ClientConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	worker := notifier.NewWorker(&notifier.Config{
		Logger:        appLogger.Logger,
		Consumer:      rabbitClient,
		Store:         store,
		Sender:        notifier.NewLogSender(appLogger.Logger),
		Concurrency:   cfg.Notifier.Concurrency,
		PrefetchCount: cfg.Notifier.PrefetchCount,
		JobTimeout:    cfg.Notifier.JobTimeout,
	})

	startErr := worker.Start(ctx)
	if startErr != nil {
		appLogger.Error("Worker error",
			slog.Any("error", startErr),
		)
	}

	// Give in-flight confirmations time to finish
	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Notifier.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	if startErr != nil {
		return startErr
	}

	appLogger.Info("Notifier service shutdown complete")
	return nil
}
