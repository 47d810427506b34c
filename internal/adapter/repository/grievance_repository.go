package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// grievanceTicketRepository implements the GrievanceTicketRepository
// interface
type grievanceTicketRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGrievanceTicketRepository creates a new grievance ticket repository
func NewGrievanceTicketRepository(db *gorm.DB, logger *zap.Logger) repository.GrievanceTicketRepository {
	return &grievanceTicketRepository{db: db, logger: logger}
}

func (r *grievanceTicketRepository) GetByID(ctx context.Context, id int64) (*model.GrievanceTicket, error) {
	var ticket model.GrievanceTicket
	err := r.db.WithContext(ctx).
		Preload("VerificationDetails").
		Preload("AdjudicationDetails").
		First(&ticket, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get grievance ticket %d: %w", id, err)
	}
	return &ticket, nil
}

func (r *grievanceTicketRepository) CreateBatch(ctx context.Context, tickets []*model.GrievanceTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tickets).Error
	})
	if err != nil {
		r.logger.Error("failed to create grievance tickets",
			zap.Int("count", len(tickets)),
			zap.Error(err))
		return fmt.Errorf("failed to create grievance tickets: %w", err)
	}
	return nil
}

func (r *grievanceTicketRepository) Update(ctx context.Context, ticket *model.GrievanceTicket) error {
	if err := r.db.WithContext(ctx).Save(ticket).Error; err != nil {
		r.logger.Error("failed to update grievance ticket",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update grievance ticket: %w", err)
	}
	return nil
}

func (r *grievanceTicketRepository) UpdateAdjudicationDetails(ctx context.Context, details *model.TicketNeedsAdjudicationDetails) error {
	if err := r.db.WithContext(ctx).Save(details).Error; err != nil {
		return fmt.Errorf("failed to update adjudication details: %w", err)
	}
	return nil
}
