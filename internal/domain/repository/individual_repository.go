package repository

import (
	"context"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// IndividualRepository persists beneficiary individuals and their
// deduplication state
type IndividualRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Individual, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*model.Individual, error)
	ListByRegistrationBatch(ctx context.Context, registrationDataImportID int64) ([]*model.Individual, error)

	// UpdateDeduplication persists the per-scope deduplication status
	// and raw hit payloads of an individual.
	UpdateDeduplication(ctx context.Context, individual *model.Individual) error

	// MarkForWithdrawal flags the individuals as confirmed duplicates
	// awaiting merge/withdrawal.
	MarkForWithdrawal(ctx context.Context, ids []int64) error

	// ClearWithdrawalMarks reverts a previous selection.
	ClearWithdrawalMarks(ctx context.Context, ids []int64) error
}
