package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	// Create extensions first
	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	// Auto-migrate all models
	err := db.AutoMigrate(
		&model.Individual{},
		&model.Household{},
		&model.IndividualRoleInHousehold{},
		&model.PaymentPlan{},
		&model.PaymentPlanSplit{},
		&model.Payment{},
		&model.PaymentVerificationPlan{},
		&model.PaymentVerification{},
		&model.PaymentVerificationSummary{},
		&model.GrievanceTicket{},
		&model.TicketPaymentVerificationDetails{},
		&model.TicketNeedsAdjudicationDetails{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// Create custom indexes and constraints
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Reconciliation scans filter on unreconciled, non-excluded payments
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_unreconciled ON payments (payment_plan_id) WHERE excluded = FALSE AND status IN ('pending', 'sent_to_payment_gateway', 'sent_to_fsp')`).Error; err != nil {
		return err
	}

	// Targeting exclusion looks up open adjudication tickets by status
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_grievance_tickets_open_adjudication ON grievance_tickets (category) WHERE status <> 'closed'`).Error; err != nil {
		return err
	}

	return nil
}
