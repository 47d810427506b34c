package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the delivery lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusPending                PaymentStatus = "pending"
	PaymentStatusSentToPaymentGateway   PaymentStatus = "sent_to_payment_gateway"
	PaymentStatusSentToFSP              PaymentStatus = "sent_to_fsp"
	PaymentStatusTransactionSuccessful  PaymentStatus = "transaction_successful"
	PaymentStatusTransactionErroneous   PaymentStatus = "transaction_erroneous"
	PaymentStatusDistributionSuccessful PaymentStatus = "distribution_successful"
	PaymentStatusDistributionPartial    PaymentStatus = "distribution_partial"
	PaymentStatusNotDistributed         PaymentStatus = "not_distributed"
	PaymentStatusForceFailed            PaymentStatus = "force_failed"
	PaymentStatusManuallyCancelled      PaymentStatus = "manually_cancelled"
)

// IsDelivered reports whether the status is a terminal delivered state
// with a known delivered quantity.
func (s PaymentStatus) IsDelivered() bool {
	switch s {
	case PaymentStatusDistributionSuccessful,
		PaymentStatusDistributionPartial,
		PaymentStatusNotDistributed,
		PaymentStatusTransactionSuccessful:
		return true
	}
	return false
}

// IsFailure reports whether the status is an error or cancellation state.
func (s PaymentStatus) IsFailure() bool {
	switch s {
	case PaymentStatusTransactionErroneous,
		PaymentStatusForceFailed,
		PaymentStatusManuallyCancelled:
		return true
	}
	return false
}

// Payment represents one beneficiary's entitlement within a payment plan.
// Payments are created when the plan is built and never hard-deleted.
type Payment struct {
	ID                 int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID        uuid.UUID     `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	PaymentPlanID      int64         `gorm:"not null;index" json:"payment_plan_id"`
	PaymentPlanSplitID *int64        `gorm:"index" json:"payment_plan_split_id,omitempty"`
	HouseholdID        int64         `gorm:"not null;index" json:"household_id"`
	CollectorID        *int64        `gorm:"index" json:"collector_id,omitempty"`
	Status             PaymentStatus `gorm:"size:50;not null;default:'pending'" json:"status"`
	StatusDate         time.Time     `gorm:"default:now()" json:"status_date"`
	Currency           string        `gorm:"size:3;not null" json:"currency"`

	EntitlementQuantity    *decimal.Decimal `gorm:"type:decimal(15,2)" json:"entitlement_quantity,omitempty"`
	EntitlementQuantityUSD *decimal.Decimal `gorm:"column:entitlement_quantity_usd;type:decimal(15,2)" json:"entitlement_quantity_usd,omitempty"`
	DeliveredQuantity      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"delivered_quantity,omitempty"`
	DeliveredQuantityUSD   *decimal.Decimal `gorm:"column:delivered_quantity_usd;type:decimal(15,2)" json:"delivered_quantity_usd,omitempty"`
	DeliveryDate           *time.Time       `json:"delivery_date,omitempty"`

	FSPAuthCode           *string `gorm:"column:fsp_auth_code;size:100" json:"fsp_auth_code,omitempty"`
	TransactionCode       *string `gorm:"size:100" json:"transaction_code,omitempty"`
	ReasonForUnsuccessful *string `json:"reason_for_unsuccessful,omitempty"`

	Excluded   bool `gorm:"not null;default:false" json:"excluded"`
	Conflicted bool `gorm:"not null;default:false" json:"conflicted"`

	CreatedAt time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	PaymentPlan *PaymentPlan `gorm:"foreignKey:PaymentPlanID" json:"payment_plan,omitempty"`
	Household   *Household   `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// IsReconciled reports whether the payment has reached a terminal state
// and no longer needs gateway reconciliation.
func (p *Payment) IsReconciled() bool {
	return p.Status.IsDelivered() || p.Status.IsFailure()
}
