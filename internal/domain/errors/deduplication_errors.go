package errors

import "errors"

var (
	// ErrTicketNotAdjudication indicates a resolve attempted on a ticket
	// outside the needs-adjudication category
	ErrTicketNotAdjudication = errors.New("ticket is not a needs-adjudication ticket")

	// ErrTicketClosed indicates a resolve attempted on a closed ticket
	ErrTicketClosed = errors.New("ticket is already closed")

	// ErrIndividualNotFlagged indicates a selected individual that is not
	// part of the ticket's comparison pair
	ErrIndividualNotFlagged = errors.New("individual is not flagged on this ticket")
)
