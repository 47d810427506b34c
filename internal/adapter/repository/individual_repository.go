package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// individualRepository implements the IndividualRepository interface
type individualRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewIndividualRepository creates a new individual repository
func NewIndividualRepository(db *gorm.DB, logger *zap.Logger) repository.IndividualRepository {
	return &individualRepository{db: db, logger: logger}
}

func (r *individualRepository) GetByID(ctx context.Context, id int64) (*model.Individual, error) {
	var individual model.Individual
	if err := r.db.WithContext(ctx).First(&individual, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get individual %d: %w", id, err)
	}
	return &individual, nil
}

func (r *individualRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.Individual, error) {
	var individuals []*model.Individual
	if len(ids) == 0 {
		return individuals, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&individuals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list individuals: %w", err)
	}
	return individuals, nil
}

func (r *individualRepository) ListByRegistrationBatch(ctx context.Context, registrationDataImportID int64) ([]*model.Individual, error) {
	var individuals []*model.Individual
	err := r.db.WithContext(ctx).
		Where("registration_data_import_id = ?", registrationDataImportID).
		Order("id").
		Find(&individuals).Error
	if err != nil {
		r.logger.Error("failed to list batch individuals",
			zap.Int64("registration_data_import_id", registrationDataImportID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list batch individuals: %w", err)
	}
	return individuals, nil
}

func (r *individualRepository) UpdateDeduplication(ctx context.Context, individual *model.Individual) error {
	err := r.db.WithContext(ctx).
		Model(&model.Individual{}).
		Where("id = ?", individual.ID).
		Updates(map[string]interface{}{
			"deduplication_batch_status":          individual.DeduplicationBatchStatus,
			"deduplication_golden_record_status":  individual.DeduplicationGoldenRecordStatus,
			"deduplication_batch_results":         individual.DeduplicationBatchResults,
			"deduplication_golden_record_results": individual.DeduplicationGoldenRecordResults,
		}).Error
	if err != nil {
		r.logger.Error("failed to update deduplication state",
			zap.Int64("individual_id", individual.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update deduplication state: %w", err)
	}
	return nil
}

func (r *individualRepository) MarkForWithdrawal(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Individual{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"marked_for_withdrawal": true,
			"updated_at":            time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark individuals for withdrawal: %w", err)
	}
	return nil
}

func (r *individualRepository) ClearWithdrawalMarks(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Individual{}).
		Where("id IN ? AND withdrawn_at IS NULL", ids).
		Updates(map[string]interface{}{
			"marked_for_withdrawal": false,
			"updated_at":            time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear withdrawal marks: %w", err)
	}
	return nil
}
