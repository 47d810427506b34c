package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentPlanStatus represents the lifecycle status of a payment plan
type PaymentPlanStatus string

const (
	PaymentPlanStatusOpen     PaymentPlanStatus = "open"
	PaymentPlanStatusLocked   PaymentPlanStatus = "locked"
	PaymentPlanStatusAccepted PaymentPlanStatus = "accepted"
	PaymentPlanStatusInReview PaymentPlanStatus = "in_review"
	PaymentPlanStatusFinished PaymentPlanStatus = "finished"
)

// PaymentPlan is a batch of payments targeting a set of households
// within one program cycle.
type PaymentPlan struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID  uuid.UUID         `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	UnicefID     string            `gorm:"column:unicef_id;size:50;index" json:"unicef_id"`
	BusinessArea string            `gorm:"size:100;not null;index" json:"business_area"`
	ProgramID    *int64            `gorm:"index" json:"program_id,omitempty"`
	Status       PaymentPlanStatus `gorm:"size:50;not null;default:'open'" json:"status"`
	Currency     string            `gorm:"size:3;not null" json:"currency"`

	// ExchangeRate converts the plan currency to USD at approval time.
	ExchangeRate decimal.Decimal `gorm:"type:decimal(14,8);default:1" json:"exchange_rate"`

	TotalEntitledQuantity  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_entitled_quantity"`
	TotalDeliveredQuantity decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_delivered_quantity"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	Payments          []Payment                   `gorm:"foreignKey:PaymentPlanID" json:"payments,omitempty"`
	Splits            []PaymentPlanSplit          `gorm:"foreignKey:PaymentPlanID" json:"splits,omitempty"`
	VerificationPlans []PaymentVerificationPlan   `gorm:"foreignKey:PaymentPlanID" json:"verification_plans,omitempty"`
	Summary           *PaymentVerificationSummary `gorm:"foreignKey:PaymentPlanID" json:"summary,omitempty"`
}

// TableName specifies the table name for GORM
func (PaymentPlan) TableName() string {
	return "payment_plans"
}

// GatewayInstructionID is the remote identifier under which this plan's
// payments were registered with the payment gateway.
func (p *PaymentPlan) GatewayInstructionID() string {
	return p.UnicefID
}

// PaymentPlanSplit partitions a plan's payments for parallel dispatch
// to the payment gateway. Each split is sent as one gateway instruction.
type PaymentPlanSplit struct {
	ID                     int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentPlanID          int64      `gorm:"not null;index" json:"payment_plan_id"`
	Order                  int        `gorm:"column:split_order;not null;default:0" json:"order"`
	RemoteInstructionID    string     `gorm:"column:remote_instruction_id;size:100;index" json:"remote_instruction_id"`
	SentToPaymentGatewayAt *time.Time `json:"sent_to_payment_gateway_at,omitempty"`
	CreatedAt              time.Time  `gorm:"default:now()" json:"created_at"`

	Payments []Payment `gorm:"foreignKey:PaymentPlanSplitID" json:"payments,omitempty"`
}

// TableName specifies the table name for GORM
func (PaymentPlanSplit) TableName() string {
	return "payment_plan_splits"
}

// GatewayInstructionID is the remote identifier of this split's
// gateway instruction.
func (s *PaymentPlanSplit) GatewayInstructionID() string {
	return s.RemoteInstructionID
}
