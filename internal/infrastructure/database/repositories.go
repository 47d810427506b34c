package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/adapter/repository"
	domainRepo "github.com/reliefops/hope-engine/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Payment          domainRepo.PaymentRepository
	PaymentPlan      domainRepo.PaymentPlanRepository
	VerificationPlan domainRepo.VerificationPlanRepository
	Verification     domainRepo.VerificationRepository
	Summary          domainRepo.SummaryRepository
	GrievanceTicket  domainRepo.GrievanceTicketRepository
	Individual       domainRepo.IndividualRepository
	Household        domainRepo.HouseholdRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment:          repository.NewPaymentRepository(db, logger),
		PaymentPlan:      repository.NewPaymentPlanRepository(db, logger),
		VerificationPlan: repository.NewVerificationPlanRepository(db, logger),
		Verification:     repository.NewVerificationRepository(db, logger),
		Summary:          repository.NewSummaryRepository(db, logger),
		GrievanceTicket:  repository.NewGrievanceTicketRepository(db, logger),
		Individual:       repository.NewIndividualRepository(db, logger),
		Household:        repository.NewHouseholdRepository(db, logger),
	}
}
