package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeduplicationStatus classifies an individual within one
// deduplication scope.
type DeduplicationStatus string

const (
	DeduplicationStatusUnique            DeduplicationStatus = "unique"
	DeduplicationStatusDuplicate         DeduplicationStatus = "duplicate"
	DeduplicationStatusPossibleDuplicate DeduplicationStatus = "needs_adjudication"
	DeduplicationStatusNotProcessed      DeduplicationStatus = "not_processed"
)

// DeduplicationScope selects which population an individual is matched
// against.
type DeduplicationScope string

const (
	// ScopeBatch matches against siblings imported in the same
	// registration data file.
	ScopeBatch DeduplicationScope = "batch"
	// ScopeGoldenRecord matches against the full existing beneficiary
	// population of the business area.
	ScopeGoldenRecord DeduplicationScope = "golden_record"
)

// Individual is a registered beneficiary record, the unit of
// deduplication.
type Individual struct {
	ID                       int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID              uuid.UUID  `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	BusinessArea             string     `gorm:"size:100;not null;index" json:"business_area"`
	RegistrationDataImportID int64      `gorm:"not null;index" json:"registration_data_import_id"`
	HouseholdID              *int64     `gorm:"index" json:"household_id,omitempty"`
	FullName                 string     `gorm:"size:255;not null" json:"full_name"`
	GivenName                string     `gorm:"size:100" json:"given_name"`
	FamilyName               string     `gorm:"size:100" json:"family_name"`
	PhoneNumber              string     `gorm:"size:30" json:"phone_number"`
	BirthDate                *time.Time `json:"birth_date,omitempty"`

	DeduplicationBatchStatus        DeduplicationStatus `gorm:"size:50;not null;default:'not_processed';index" json:"deduplication_batch_status"`
	DeduplicationGoldenRecordStatus DeduplicationStatus `gorm:"size:50;not null;default:'not_processed';index" json:"deduplication_golden_record_status"`
	// Raw similarity hits from the last classification run, per scope.
	DeduplicationBatchResults        datatypes.JSON `json:"deduplication_batch_results,omitempty"`
	DeduplicationGoldenRecordResults datatypes.JSON `json:"deduplication_golden_record_results,omitempty"`

	SanctionListConfirmedMatch bool       `gorm:"default:false;index" json:"sanction_list_confirmed_match"`
	MarkedForWithdrawal        bool       `gorm:"default:false" json:"marked_for_withdrawal"`
	WithdrawnAt                *time.Time `json:"withdrawn_at,omitempty"`

	CreatedAt time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// TableName specifies the table name for GORM
func (Individual) TableName() string {
	return "individuals"
}

// ScopeStatus returns the deduplication status for the given scope.
func (i *Individual) ScopeStatus(scope DeduplicationScope) DeduplicationStatus {
	if scope == ScopeBatch {
		return i.DeduplicationBatchStatus
	}
	return i.DeduplicationGoldenRecordStatus
}
