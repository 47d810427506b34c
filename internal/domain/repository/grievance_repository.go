package repository

import (
	"context"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// GrievanceTicketRepository persists system-raised grievance tickets
type GrievanceTicketRepository interface {
	GetByID(ctx context.Context, id int64) (*model.GrievanceTicket, error)

	// CreateBatch creates the tickets together with their attached
	// detail records in one transaction.
	CreateBatch(ctx context.Context, tickets []*model.GrievanceTicket) error

	Update(ctx context.Context, ticket *model.GrievanceTicket) error
	UpdateAdjudicationDetails(ctx context.Context, details *model.TicketNeedsAdjudicationDetails) error
}
