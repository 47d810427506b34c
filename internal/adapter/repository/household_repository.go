package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// householdRepository implements the HouseholdRepository interface
type householdRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewHouseholdRepository creates a new household repository
func NewHouseholdRepository(db *gorm.DB, logger *zap.Logger) repository.HouseholdRepository {
	return &householdRepository{db: db, logger: logger}
}

func (r *householdRepository) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	var household model.Household
	err := r.db.WithContext(ctx).
		Preload("HeadOfHousehold").
		Preload("Roles").
		First(&household, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get household %d: %w", id, err)
	}
	return &household, nil
}

func (r *householdRepository) ListForTargeting(ctx context.Context, businessArea string, filters repository.TargetingFilters) ([]*model.Household, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Household{}).
		Where("households.business_area = ?", businessArea)

	if filters.ExcludeActiveAdjudicationTicket {
		query = query.Scopes(ExcludeActiveAdjudicationTicket)
	}
	if filters.ExcludeSanctionListMatch {
		query = query.Scopes(ExcludeSanctionListMatch)
	}

	var households []*model.Household
	if err := query.Order("households.id").Find(&households).Error; err != nil {
		r.logger.Error("failed to list households for targeting",
			zap.String("business_area", businessArea),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list households for targeting: %w", err)
	}
	return households, nil
}

func (r *householdRepository) ReassignRoles(ctx context.Context, fromID, toID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.IndividualRoleInHousehold{}).
			Where("individual_id = ?", fromID).
			Update("individual_id", toID).Error; err != nil {
			return fmt.Errorf("failed to reassign collector roles: %w", err)
		}
		if err := tx.Model(&model.Household{}).
			Where("head_of_household_id = ?", fromID).
			Update("head_of_household_id", toID).Error; err != nil {
			return fmt.Errorf("failed to reassign head of household: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to reassign household roles",
			zap.Int64("from_individual_id", fromID),
			zap.Int64("to_individual_id", toID),
			zap.Error(err))
		return err
	}
	return nil
}
