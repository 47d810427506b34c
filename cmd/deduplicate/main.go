package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/config"
	"github.com/reliefops/hope-engine/internal/infrastructure/database"
	"github.com/reliefops/hope-engine/internal/infrastructure/provider"
	"github.com/reliefops/hope-engine/internal/logger"
	"github.com/reliefops/hope-engine/internal/messaging"
	"github.com/reliefops/hope-engine/internal/usecase"
)

// Deduplication runner: classifies every individual of one registration
// batch against the batch and golden-record populations, then raises
// adjudication tickets for unresolved matches.
func main() {
	batchID := flag.Int64("batch", 0, "registration data import id to deduplicate")
	flag.Parse()
	if *batchID == 0 {
		log.Fatal("missing required -batch flag")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:  cfg.Log.Level,
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Create the similarity index client
	providers := provider.NewFactory(cfg, zapLogger)
	similarity, err := providers.SimilaritySearch()
	if err != nil {
		zapLogger.Fatal("Failed to create similarity search client", zap.Error(err))
	}

	// Notifications for any tickets the run raises
	redisClient, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	notifier := usecase.NewNotificationService(redisClient, zapLogger)

	deduplication := usecase.NewDeduplicationService(
		repos.Individual,
		repos.Household,
		repos.GrievanceTicket,
		similarity,
		notifier,
		usecase.DeduplicationThresholds{
			DuplicateScore:         cfg.Service.Deduplication.DuplicateScore,
			PossibleDuplicateScore: cfg.Service.Deduplication.PossibleDuplicateScore,
		},
		zapLogger,
	)

	ctx := context.Background()
	if err := deduplication.ClassifyBatch(ctx, *batchID); err != nil {
		zapLogger.Fatal("Failed to deduplicate registration batch",
			zap.Int64("registration_data_import_id", *batchID),
			zap.Error(err))
	}

	zapLogger.Info("Registration batch deduplicated",
		zap.Int64("registration_data_import_id", *batchID))
}
