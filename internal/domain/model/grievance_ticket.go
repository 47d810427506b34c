package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Grievance ticket categories handled by this engine. Tickets in these
// categories are created by the system, never by direct user action.
type TicketCategory string

const (
	CategoryPaymentVerification TicketCategory = "payment_verification"
	CategoryNeedsAdjudication   TicketCategory = "needs_adjudication"
)

// TicketStatus is the grievance workflow status
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "new"
	TicketStatusAssigned    TicketStatus = "assigned"
	TicketStatusInProgress  TicketStatus = "in_progress"
	TicketStatusOnHold      TicketStatus = "on_hold"
	TicketStatusForApproval TicketStatus = "for_approval"
	TicketStatusClosed      TicketStatus = "closed"
)

// GrievanceTicket is a human-actionable issue raised by verification
// finish or by the deduplication resolver.
type GrievanceTicket struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID  uuid.UUID      `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	Category     TicketCategory `gorm:"size:50;not null;index" json:"category"`
	Status       TicketStatus   `gorm:"size:50;not null;default:'new';index" json:"status"`
	BusinessArea string         `gorm:"size:100;not null;index" json:"business_area"`
	HouseholdID  *int64         `gorm:"index" json:"household_id,omitempty"`
	IndividualID *int64         `gorm:"index" json:"individual_id,omitempty"`
	Description  string         `json:"description"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	VerificationDetails *TicketPaymentVerificationDetails `gorm:"foreignKey:TicketID" json:"verification_details,omitempty"`
	AdjudicationDetails *TicketNeedsAdjudicationDetails   `gorm:"foreignKey:TicketID" json:"adjudication_details,omitempty"`
}

// TableName specifies the table name for GORM
func (GrievanceTicket) TableName() string {
	return "grievance_tickets"
}

// TicketPaymentVerificationDetails links a verification-category ticket
// to the payment verification it was raised from.
type TicketPaymentVerificationDetails struct {
	ID                    int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID              int64              `gorm:"not null;uniqueIndex" json:"ticket_id"`
	PaymentVerificationID int64              `gorm:"not null;uniqueIndex" json:"payment_verification_id"`
	VerificationStatus    VerificationStatus `gorm:"size:50;not null" json:"verification_status"`
	CreatedAt             time.Time          `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TicketPaymentVerificationDetails) TableName() string {
	return "ticket_payment_verification_details"
}

// TicketNeedsAdjudicationDetails carries the comparison pair of an
// adjudication ticket: the golden-record individual plus the flagged
// possible duplicates, and the operator's confirmed selection.
type TicketNeedsAdjudicationDetails struct {
	ID                        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID                  int64 `gorm:"not null;uniqueIndex" json:"ticket_id"`
	GoldenRecordsIndividualID int64 `gorm:"not null;index" json:"golden_records_individual_id"`
	// PossibleDuplicateIDs lists the flagged individuals; selected ids
	// are the subset the operator confirmed as true duplicates.
	PossibleDuplicateIDs  datatypes.JSON `json:"possible_duplicate_ids"`
	SelectedIndividualIDs datatypes.JSON `json:"selected_individual_ids,omitempty"`
	// IsMultipleDuplicatesVersion distinguishes the multi-select ticket
	// shape from the legacy single-select one.
	IsMultipleDuplicatesVersion bool      `gorm:"default:false" json:"is_multiple_duplicates_version"`
	ScoreMin                    float64   `gorm:"default:0" json:"score_min"`
	ScoreMax                    float64   `gorm:"default:0" json:"score_max"`
	CreatedAt                   time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TicketNeedsAdjudicationDetails) TableName() string {
	return "ticket_needs_adjudication_details"
}
