package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/config"
	"github.com/reliefops/hope-engine/internal/infrastructure/database"
	"github.com/reliefops/hope-engine/internal/infrastructure/provider"
	"github.com/reliefops/hope-engine/internal/logger"
	"github.com/reliefops/hope-engine/internal/usecase"
)

// Reconciliation runner: walks every dispatched payment plan and pulls
// the gateway's delivery records into the ledger. Intended to run on a
// schedule.
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

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Create the gateway client and ledger
	providers := provider.NewFactory(cfg, zapLogger)
	gateway, err := providers.PaymentGateway()
	if err != nil {
		zapLogger.Fatal("Failed to create payment gateway client", zap.Error(err))
	}
	ledger := usecase.NewLedgerService(repos.Payment, repos.PaymentPlan, gateway, zapLogger)

	ctx := context.Background()

	plans, err := repos.PaymentPlan.ListDispatched(ctx)
	if err != nil {
		zapLogger.Fatal("Failed to list dispatched payment plans", zap.Error(err))
	}

	synced, failed := 0, 0
	for _, plan := range plans {
		splits, err := repos.PaymentPlan.ListSplits(ctx, plan.ID)
		if err != nil {
			zapLogger.Error("Failed to list plan splits",
				zap.Int64("payment_plan_id", plan.ID),
				zap.Error(err))
			failed++
			continue
		}

		// A split plan reconciles per split instruction, an unsplit
		// plan reconciles as one instruction.
		if len(splits) > 0 {
			for _, split := range splits {
				if err := ledger.SyncSplit(ctx, split); err != nil {
					zapLogger.Error("Failed to sync payment plan split",
						zap.Int64("payment_plan_id", plan.ID),
						zap.Int64("split_id", split.ID),
						zap.Error(err))
					failed++
					continue
				}
				synced++
			}
			continue
		}

		if err := ledger.SyncPlan(ctx, plan); err != nil {
			zapLogger.Error("Failed to sync payment plan",
				zap.Int64("payment_plan_id", plan.ID),
				zap.Error(err))
			failed++
			continue
		}
		synced++
	}

	zapLogger.Info("Payment reconciliation finished",
		zap.Int("plan_count", len(plans)),
		zap.Int("synced_instructions", synced),
		zap.Int("failed_instructions", failed))
}
