package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VerificationPlanStatus represents the lifecycle status of a
// payment verification plan
type VerificationPlanStatus string

const (
	VerificationPlanStatusPending       VerificationPlanStatus = "pending"
	VerificationPlanStatusActive        VerificationPlanStatus = "active"
	VerificationPlanStatusFinished      VerificationPlanStatus = "finished"
	VerificationPlanStatusInvalid       VerificationPlanStatus = "invalid"
	VerificationPlanStatusRapidProError VerificationPlanStatus = "rapid_pro_error"
)

// Sampling methods for selecting which payments to verify
type SamplingMethod string

const (
	SamplingFullList SamplingMethod = "full_list"
	SamplingRandom   SamplingMethod = "random"
)

// Verification outreach channels
type VerificationChannel string

const (
	ChannelManual   VerificationChannel = "manual"
	ChannelXLSX     VerificationChannel = "xlsx"
	ChannelRapidPro VerificationChannel = "rapidpro"
)

// PaymentVerificationPlan is one verification campaign over a subset of
// a payment plan's payments.
type PaymentVerificationPlan struct {
	ID            int64                  `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID   uuid.UUID              `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	PaymentPlanID int64                  `gorm:"not null;index" json:"payment_plan_id"`
	Status        VerificationPlanStatus `gorm:"size:50;not null;default:'pending'" json:"status"`
	Sampling      SamplingMethod         `gorm:"size:50;not null;default:'full_list'" json:"sampling"`
	Channel       VerificationChannel    `gorm:"column:verification_channel;size:50;not null" json:"verification_channel"`

	SampleSize                int `gorm:"default:0" json:"sample_size"`
	RespondedCount            int `gorm:"default:0" json:"responded_count"`
	ReceivedCount             int `gorm:"default:0" json:"received_count"`
	NotReceivedCount          int `gorm:"default:0" json:"not_received_count"`
	ReceivedWithProblemsCount int `gorm:"default:0" json:"received_with_problems_count"`

	ConfidenceInterval *float64 `json:"confidence_interval,omitempty"`
	MarginOfError      *float64 `json:"margin_of_error,omitempty"`

	ActivationDate *time.Time `json:"activation_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	// XLSX channel bookkeeping
	XLSXFileExporting  bool `gorm:"default:false" json:"xlsx_file_exporting"`
	HasXLSXFile        bool `gorm:"default:false" json:"has_xlsx_file"`
	XLSXFileDownloaded bool `gorm:"default:false" json:"xlsx_file_downloaded"`
	XLSXFileImported   bool `gorm:"default:false" json:"xlsx_file_imported"`

	// RapidPro channel bookkeeping
	RapidProFlowID         string         `gorm:"size:100" json:"rapid_pro_flow_id"`
	RapidProFlowStartUUIDs datatypes.JSON `gorm:"column:rapid_pro_flow_start_uuids" json:"rapid_pro_flow_start_uuids,omitempty"`

	// Error holds the last activation failure message, if any
	Error *string `json:"error,omitempty"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	Verifications []PaymentVerification `gorm:"foreignKey:VerificationPlanID" json:"verifications,omitempty"`
}

// TableName specifies the table name for GORM
func (PaymentVerificationPlan) TableName() string {
	return "payment_verification_plans"
}
