package repository

import (
	"gorm.io/gorm"
)

// Targeting exclusion scopes. Both operate on a households query and
// consider the head of household plus every role-holding representative.

// ExcludeActiveAdjudicationTicket drops households under active
// fraud/duplicate investigation: any household whose head or
// representative appears in a not-yet-closed needs-adjudication ticket,
// either as the golden-record individual or as one of the flagged
// possible duplicates of the ticket's comparison pair. A closed ticket
// no longer excludes its households.
func ExcludeActiveAdjudicationTicket(db *gorm.DB) *gorm.DB {
	return db.Where(`NOT EXISTS (
		SELECT 1
		FROM ticket_needs_adjudication_details d
		JOIN grievance_tickets t ON t.id = d.ticket_id
		WHERE t.category = 'needs_adjudication'
		  AND t.status <> 'closed'
		  AND (
			d.golden_records_individual_id IN (
				SELECT households.head_of_household_id
				UNION
				SELECT roles.individual_id FROM individual_roles_in_household roles
				WHERE roles.household_id = households.id
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(d.possible_duplicate_ids::jsonb) AS dup(id)
				WHERE dup.id::bigint IN (
					SELECT households.head_of_household_id
					UNION
					SELECT roles.individual_id FROM individual_roles_in_household roles
					WHERE roles.household_id = households.id
				)
			)
		  )
	)`)
}

// ExcludeSanctionListMatch drops households whose head or representative
// has a confirmed sanction-list match, independent of ticket status.
func ExcludeSanctionListMatch(db *gorm.DB) *gorm.DB {
	return db.Where(`NOT EXISTS (
		SELECT 1 FROM individuals
		WHERE individuals.sanction_list_confirmed_match = TRUE
		  AND individuals.id IN (
			SELECT households.head_of_household_id
			UNION
			SELECT roles.individual_id FROM individual_roles_in_household roles
			WHERE roles.household_id = households.id
		  )
	)`)
}
