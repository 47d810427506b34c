package repository

import (
	"context"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// PaymentRepository persists payments and their delivery state
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByUniversalID(ctx context.Context, universalID string) (*model.Payment, error)
	ListByPlanID(ctx context.Context, planID int64) ([]*model.Payment, error)
	ListBySplitID(ctx context.Context, splitID int64) ([]*model.Payment, error)

	// UpdateDelivery persists the delivery-related fields of a payment
	// (status, status date, delivered quantities, delivery date, codes).
	UpdateDelivery(ctx context.Context, payment *model.Payment) error

	// CountPendingReconciliation counts payments of a plan (or split,
	// when splitID is non-nil) that have not reached a terminal state.
	// Excluded payments do not count.
	CountPendingReconciliation(ctx context.Context, planID int64, splitID *int64) (int64, error)
}

// PaymentPlanRepository persists payment plans and their splits
type PaymentPlanRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PaymentPlan, error)
	GetSplitByID(ctx context.Context, id int64) (*model.PaymentPlanSplit, error)
	ListSplits(ctx context.Context, planID int64) ([]*model.PaymentPlanSplit, error)

	// ListDispatched returns plans already sent to the gateway, the
	// candidates for reconciliation sync.
	ListDispatched(ctx context.Context) ([]*model.PaymentPlan, error)

	Update(ctx context.Context, plan *model.PaymentPlan) error
}
