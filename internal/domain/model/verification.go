package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus represents the outcome of verifying one payment
type VerificationStatus string

const (
	VerificationStatusPending            VerificationStatus = "pending"
	VerificationStatusReceived           VerificationStatus = "received"
	VerificationStatusNotReceived        VerificationStatus = "not_received"
	VerificationStatusReceivedWithIssues VerificationStatus = "received_with_issues"
)

// PaymentVerification is one verification outcome for a single payment,
// one-to-one with a payment within its verification plan.
type PaymentVerification struct {
	ID                 int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID        uuid.UUID          `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	VerificationPlanID int64              `gorm:"not null;index;uniqueIndex:uq_verification_plan_payment" json:"verification_plan_id"`
	PaymentID          int64              `gorm:"not null;index;uniqueIndex:uq_verification_plan_payment" json:"payment_id"`
	Status             VerificationStatus `gorm:"size:50;not null;default:'pending'" json:"status"`
	StatusDate         time.Time          `gorm:"default:now()" json:"status_date"`
	ReceivedAmount     *decimal.Decimal   `gorm:"type:decimal(15,2)" json:"received_amount,omitempty"`
	SentToRapidPro     bool               `gorm:"default:false" json:"sent_to_rapid_pro"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// TableName specifies the table name for GORM
func (PaymentVerification) TableName() string {
	return "payment_verifications"
}

// SummaryStatus is the derived rollup status over all verification plans
// of one payment plan.
type SummaryStatus string

const (
	SummaryStatusPending  SummaryStatus = "pending"
	SummaryStatusActive   SummaryStatus = "active"
	SummaryStatusFinished SummaryStatus = "finished"
)

// PaymentVerificationSummary is aggregate state recomputed whenever a
// verification plan under the payment plan is created, saved or deleted.
type PaymentVerificationSummary struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentPlanID  int64         `gorm:"not null;uniqueIndex" json:"payment_plan_id"`
	Status         SummaryStatus `gorm:"size:50;not null;default:'pending'" json:"status"`
	ActivationDate *time.Time    `json:"activation_date,omitempty"`
	CompletionDate *time.Time    `json:"completion_date,omitempty"`
	CreatedAt      time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentVerificationSummary) TableName() string {
	return "payment_verification_summaries"
}
