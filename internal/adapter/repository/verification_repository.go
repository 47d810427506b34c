package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// verificationPlanRepository implements the VerificationPlanRepository
// interface
type verificationPlanRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewVerificationPlanRepository creates a new verification plan repository
func NewVerificationPlanRepository(db *gorm.DB, logger *zap.Logger) repository.VerificationPlanRepository {
	return &verificationPlanRepository{db: db, logger: logger}
}

func (r *verificationPlanRepository) GetByID(ctx context.Context, id int64) (*model.PaymentVerificationPlan, error) {
	var plan model.PaymentVerificationPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get verification plan %d: %w", id, err)
	}
	return &plan, nil
}

func (r *verificationPlanRepository) ListByPaymentPlanID(ctx context.Context, paymentPlanID int64) ([]*model.PaymentVerificationPlan, error) {
	var plans []*model.PaymentVerificationPlan
	err := r.db.WithContext(ctx).
		Where("payment_plan_id = ?", paymentPlanID).
		Order("id").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list verification plans: %w", err)
	}
	return plans, nil
}

func (r *verificationPlanRepository) Create(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		r.logger.Error("failed to create verification plan",
			zap.Int64("payment_plan_id", plan.PaymentPlanID),
			zap.Error(err))
		return fmt.Errorf("failed to create verification plan: %w", err)
	}
	return nil
}

func (r *verificationPlanRepository) Update(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		r.logger.Error("failed to update verification plan",
			zap.Int64("verification_plan_id", plan.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update verification plan: %w", err)
	}
	return nil
}

func (r *verificationPlanRepository) Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	if err := r.db.WithContext(ctx).Delete(plan).Error; err != nil {
		return fmt.Errorf("failed to delete verification plan: %w", err)
	}
	return nil
}

// verificationRepository implements the VerificationRepository interface
type verificationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewVerificationRepository creates a new payment verification repository
func NewVerificationRepository(db *gorm.DB, logger *zap.Logger) repository.VerificationRepository {
	return &verificationRepository{db: db, logger: logger}
}

func (r *verificationRepository) GetByID(ctx context.Context, id int64) (*model.PaymentVerification, error) {
	var verification model.PaymentVerification
	err := r.db.WithContext(ctx).
		Preload("Payment").
		First(&verification, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get verification %d: %w", id, err)
	}
	return &verification, nil
}

func (r *verificationRepository) ListByPlanID(ctx context.Context, planID int64) ([]*model.PaymentVerification, error) {
	var verifications []*model.PaymentVerification
	err := r.db.WithContext(ctx).
		Where("verification_plan_id = ?", planID).
		Order("id").
		Find(&verifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	return verifications, nil
}

func (r *verificationRepository) ListByPlanIDAndStatuses(ctx context.Context, planID int64, statuses []model.VerificationStatus) ([]*model.PaymentVerification, error) {
	var verifications []*model.PaymentVerification
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("verification_plan_id = ? AND status IN ?", planID, statuses).
		Order("id").
		Find(&verifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications by status: %w", err)
	}
	return verifications, nil
}

func (r *verificationRepository) Update(ctx context.Context, verification *model.PaymentVerification) error {
	err := r.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Where("id = ?", verification.ID).
		Updates(map[string]interface{}{
			"status":          verification.Status,
			"status_date":     verification.StatusDate,
			"received_amount": verification.ReceivedAmount,
		}).Error
	if err != nil {
		r.logger.Error("failed to update verification",
			zap.Int64("verification_id", verification.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update verification: %w", err)
	}
	return nil
}

func (r *verificationRepository) BulkUpdate(ctx context.Context, verifications []*model.PaymentVerification) error {
	if len(verifications) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "status_date", "received_amount", "sent_to_rapid_pro",
			}),
		}).
		Create(&verifications).Error
	if err != nil {
		r.logger.Error("failed to bulk update verifications",
			zap.Int("count", len(verifications)),
			zap.Error(err))
		return fmt.Errorf("failed to bulk update verifications: %w", err)
	}
	return nil
}

func (r *verificationRepository) DeleteByPlanIDAndStatus(ctx context.Context, planID int64, status model.VerificationStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("verification_plan_id = ? AND status = ?", planID, status).
		Delete(&model.PaymentVerification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete verifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *verificationRepository) CountByStatus(ctx context.Context, planID int64) (map[model.VerificationStatus]int, error) {
	var rows []struct {
		Status model.VerificationStatus
		Count  int
	}
	err := r.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Select("status, count(*) as count").
		Where("verification_plan_id = ?", planID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count verifications by status: %w", err)
	}

	counts := make(map[model.VerificationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *verificationRepository) ListPendingPhoneNumbers(ctx context.Context, planID int64) ([]string, error) {
	var phones []string
	err := r.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Select("DISTINCT individuals.phone_number").
		Joins("JOIN payments ON payments.id = payment_verifications.payment_id").
		Joins("JOIN households ON households.id = payments.household_id").
		Joins("JOIN individuals ON individuals.id = households.head_of_household_id").
		Where("payment_verifications.verification_plan_id = ?", planID).
		Where("payment_verifications.sent_to_rapid_pro = ?", false).
		Where("individuals.phone_number <> ''").
		Scan(&phones).Error
	if err != nil {
		r.logger.Error("failed to collect pending phone numbers",
			zap.Int64("verification_plan_id", planID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to collect pending phone numbers: %w", err)
	}
	return phones, nil
}

func (r *verificationRepository) MarkSentToRapidPro(ctx context.Context, planID int64, phoneNumbers []string) error {
	if len(phoneNumbers) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Where("verification_plan_id = ?", planID).
		Where(`payment_id IN (
			SELECT payments.id FROM payments
			JOIN households ON households.id = payments.household_id
			JOIN individuals ON individuals.id = households.head_of_household_id
			WHERE individuals.phone_number IN ?
		)`, phoneNumbers).
		Update("sent_to_rapid_pro", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark verifications sent to RapidPro: %w", err)
	}
	return nil
}

// summaryRepository implements the SummaryRepository interface
type summaryRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSummaryRepository creates a new verification summary repository
func NewSummaryRepository(db *gorm.DB, logger *zap.Logger) repository.SummaryRepository {
	return &summaryRepository{db: db, logger: logger}
}

func (r *summaryRepository) GetByPaymentPlanID(ctx context.Context, paymentPlanID int64) (*model.PaymentVerificationSummary, error) {
	var summary model.PaymentVerificationSummary
	err := r.db.WithContext(ctx).
		Where("payment_plan_id = ?", paymentPlanID).
		First(&summary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification summary: %w", err)
	}
	return &summary, nil
}

func (r *summaryRepository) Upsert(ctx context.Context, summary *model.PaymentVerificationSummary) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "payment_plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "activation_date", "completion_date", "updated_at",
			}),
		}).
		Create(summary).Error
	if err != nil {
		r.logger.Error("failed to upsert verification summary",
			zap.Int64("payment_plan_id", summary.PaymentPlanID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert verification summary: %w", err)
	}
	return nil
}
