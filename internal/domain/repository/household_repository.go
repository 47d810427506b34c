package repository

import (
	"context"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// TargetingFilters selects which exclusion flags apply when listing
// households eligible for targeting.
type TargetingFilters struct {
	// ExcludeActiveAdjudicationTicket drops households whose head or
	// representative appears in an open needs-adjudication ticket.
	ExcludeActiveAdjudicationTicket bool
	// ExcludeSanctionListMatch drops households whose head or
	// representative has a confirmed sanction-list match.
	ExcludeSanctionListMatch bool
}

// HouseholdRepository persists households and their collector roles
type HouseholdRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Household, error)

	// ListForTargeting returns the households of a business area that
	// pass the given exclusion filters.
	ListForTargeting(ctx context.Context, businessArea string, filters TargetingFilters) ([]*model.Household, error)

	// ReassignRoles moves all collector roles and head-of-household
	// assignments held by fromID onto toID.
	ReassignRoles(ctx context.Context, fromID, toID int64) error
}
