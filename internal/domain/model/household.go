package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collector roles an individual can hold within a household
type HouseholdRole string

const (
	RolePrimaryCollector   HouseholdRole = "primary_collector"
	RoleAlternateCollector HouseholdRole = "alternate_collector"
)

// Household groups individuals under one head of household and is the
// targeting unit for payment plans.
type Household struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UniversalID       uuid.UUID `gorm:"column:universal_id;type:uuid;not null;uniqueIndex" json:"universal_id"`
	BusinessArea      string    `gorm:"size:100;not null;index" json:"business_area"`
	HeadOfHouseholdID int64     `gorm:"not null;index" json:"head_of_household_id"`
	Size              int       `gorm:"default:0" json:"size"`
	Address           string    `gorm:"size:255" json:"address"`

	CreatedAt time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HeadOfHousehold *Individual                `gorm:"foreignKey:HeadOfHouseholdID" json:"head_of_household,omitempty"`
	Roles           []IndividualRoleInHousehold `gorm:"foreignKey:HouseholdID" json:"roles,omitempty"`
}

// TableName specifies the table name for GORM
func (Household) TableName() string {
	return "households"
}

// IndividualRoleInHousehold assigns a collector role to an individual.
// At most one individual holds each role per household.
type IndividualRoleInHousehold struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	HouseholdID  int64         `gorm:"not null;index;uniqueIndex:uq_household_role" json:"household_id"`
	IndividualID int64         `gorm:"not null;index" json:"individual_id"`
	Role         HouseholdRole `gorm:"size:50;not null;uniqueIndex:uq_household_role" json:"role"`
	CreatedAt    time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (IndividualRoleInHousehold) TableName() string {
	return "individual_roles_in_household"
}
