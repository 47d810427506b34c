package repository

import (
	"context"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// VerificationPlanRepository persists payment verification plans
type VerificationPlanRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PaymentVerificationPlan, error)
	ListByPaymentPlanID(ctx context.Context, paymentPlanID int64) ([]*model.PaymentVerificationPlan, error)
	Create(ctx context.Context, plan *model.PaymentVerificationPlan) error
	Update(ctx context.Context, plan *model.PaymentVerificationPlan) error
	Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error
}

// VerificationRepository persists individual payment verifications
type VerificationRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PaymentVerification, error)
	ListByPlanID(ctx context.Context, planID int64) ([]*model.PaymentVerification, error)
	ListByPlanIDAndStatuses(ctx context.Context, planID int64, statuses []model.VerificationStatus) ([]*model.PaymentVerification, error)
	Update(ctx context.Context, verification *model.PaymentVerification) error

	// BulkUpdate persists a pre-computed target state for many
	// verifications in one statement, so concurrent readers never see a
	// partially reset plan.
	BulkUpdate(ctx context.Context, verifications []*model.PaymentVerification) error

	// DeleteByPlanIDAndStatus removes verifications of a plan in the
	// given status and returns how many were removed.
	DeleteByPlanIDAndStatus(ctx context.Context, planID int64, status model.VerificationStatus) (int64, error)

	// CountByStatus returns per-status verification counts for a plan.
	CountByStatus(ctx context.Context, planID int64) (map[model.VerificationStatus]int, error)

	// ListPendingPhoneNumbers returns the head-of-household phone
	// numbers of a plan's verifications not yet sent to RapidPro.
	ListPendingPhoneNumbers(ctx context.Context, planID int64) ([]string, error)

	// MarkSentToRapidPro flags the verifications whose head-of-household
	// phone numbers appear in the started list.
	MarkSentToRapidPro(ctx context.Context, planID int64, phoneNumbers []string) error
}

// SummaryRepository persists the per-payment-plan verification rollup
type SummaryRepository interface {
	GetByPaymentPlanID(ctx context.Context, paymentPlanID int64) (*model.PaymentVerificationSummary, error)
	Upsert(ctx context.Context, summary *model.PaymentVerificationSummary) error
}
