package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentPlan").
		First(&payment, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByUniversalID(ctx context.Context, universalID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentPlan").
		Where("universal_id = ?", universalID).
		First(&payment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %s: %w", universalID, err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByPlanID(ctx context.Context, planID int64) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentPlan").
		Where("payment_plan_id = ?", planID).
		Order("id").
		Find(&payments).Error
	if err != nil {
		r.logger.Error("failed to list plan payments",
			zap.Int64("payment_plan_id", planID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list plan payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) ListBySplitID(ctx context.Context, splitID int64) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentPlan").
		Where("payment_plan_split_id = ?", splitID).
		Order("id").
		Find(&payments).Error
	if err != nil {
		r.logger.Error("failed to list split payments",
			zap.Int64("split_id", splitID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list split payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) UpdateDelivery(ctx context.Context, payment *model.Payment) error {
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":                   payment.Status,
			"status_date":              payment.StatusDate,
			"delivered_quantity":       payment.DeliveredQuantity,
			"delivered_quantity_usd":   payment.DeliveredQuantityUSD,
			"delivery_date":            payment.DeliveryDate,
			"fsp_auth_code":            payment.FSPAuthCode,
			"transaction_code":         payment.TransactionCode,
			"reason_for_unsuccessful":  payment.ReasonForUnsuccessful,
		}).Error
	if err != nil {
		r.logger.Error("failed to update payment delivery state",
			zap.Int64("payment_id", payment.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update payment delivery state: %w", err)
	}
	return nil
}

func (r *paymentRepository) CountPendingReconciliation(ctx context.Context, planID int64, splitID *int64) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_plan_id = ?", planID).
		Where("excluded = ?", false).
		Where("status IN ?", []model.PaymentStatus{
			model.PaymentStatusPending,
			model.PaymentStatusSentToPaymentGateway,
			model.PaymentStatusSentToFSP,
		})
	if splitID != nil {
		query = query.Where("payment_plan_split_id = ?", *splitID)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unreconciled payments: %w", err)
	}
	return count, nil
}

// paymentPlanRepository implements the PaymentPlanRepository interface
type paymentPlanRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentPlanRepository creates a new payment plan repository
func NewPaymentPlanRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentPlanRepository {
	return &paymentPlanRepository{db: db, logger: logger}
}

func (r *paymentPlanRepository) GetByID(ctx context.Context, id int64) (*model.PaymentPlan, error) {
	var plan model.PaymentPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get payment plan %d: %w", id, err)
	}
	return &plan, nil
}

func (r *paymentPlanRepository) GetSplitByID(ctx context.Context, id int64) (*model.PaymentPlanSplit, error) {
	var split model.PaymentPlanSplit
	if err := r.db.WithContext(ctx).First(&split, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get plan split %d: %w", id, err)
	}
	return &split, nil
}

func (r *paymentPlanRepository) ListSplits(ctx context.Context, planID int64) ([]*model.PaymentPlanSplit, error) {
	var splits []*model.PaymentPlanSplit
	err := r.db.WithContext(ctx).
		Where("payment_plan_id = ?", planID).
		Order("split_order").
		Find(&splits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plan splits: %w", err)
	}
	return splits, nil
}

func (r *paymentPlanRepository) ListDispatched(ctx context.Context) ([]*model.PaymentPlan, error) {
	var plans []*model.PaymentPlan
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.PaymentPlanStatus{
			model.PaymentPlanStatusAccepted,
			model.PaymentPlanStatusFinished,
		}).
		Order("id").
		Find(&plans).Error
	if err != nil {
		r.logger.Error("failed to list dispatched payment plans", zap.Error(err))
		return nil, fmt.Errorf("failed to list dispatched payment plans: %w", err)
	}
	return plans, nil
}

func (r *paymentPlanRepository) Update(ctx context.Context, plan *model.PaymentPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		r.logger.Error("failed to update payment plan",
			zap.Int64("payment_plan_id", plan.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update payment plan: %w", err)
	}
	return nil
}
