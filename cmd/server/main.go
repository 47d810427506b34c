package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/adapter/sheet"
	"github.com/reliefops/hope-engine/internal/config"
	"github.com/reliefops/hope-engine/internal/infrastructure/database"
	grpcServer "github.com/reliefops/hope-engine/internal/infrastructure/grpc"
	httpServer "github.com/reliefops/hope-engine/internal/infrastructure/http"
	"github.com/reliefops/hope-engine/internal/infrastructure/provider"
	"github.com/reliefops/hope-engine/internal/logger"
	"github.com/reliefops/hope-engine/internal/messaging"
	"github.com/reliefops/hope-engine/internal/usecase"
)

func main() {
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

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Initialize external collaborators
	providers := provider.NewFactory(cfg, zapLogger)
	gateway, err := providers.PaymentGateway()
	if err != nil {
		zapLogger.Fatal("Failed to create payment gateway client", zap.Error(err))
	}
	rapidPro, err := providers.RapidPro()
	if err != nil {
		zapLogger.Fatal("Failed to create RapidPro client", zap.Error(err))
	}
	similarity, err := providers.SimilaritySearch()
	if err != nil {
		zapLogger.Fatal("Failed to create similarity search client", zap.Error(err))
	}

	// Initialize notification pub/sub
	redisClient, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	notifier := usecase.NewNotificationService(redisClient, zapLogger)

	// Initialize services
	ledger := usecase.NewLedgerService(repos.Payment, repos.PaymentPlan, gateway, zapLogger)
	sheetStore := sheet.NewFileStore(cfg.Service.ExportDir, repos.Verification, zapLogger)
	verification := usecase.NewVerificationService(
		repos.VerificationPlan,
		repos.Verification,
		repos.Summary,
		repos.GrievanceTicket,
		repos.PaymentPlan,
		repos.Payment,
		rapidPro,
		notifier,
		sheetStore,
		zapLogger,
	)
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

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize servers
	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, repos, &httpServer.Services{
		Ledger:        ledger,
		Verification:  verification,
		Deduplication: deduplication,
	})

	// Start servers
	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	// Shutdown servers
	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
