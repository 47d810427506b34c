package usecase_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	"github.com/reliefops/hope-engine/internal/domain/repository"
	"github.com/reliefops/hope-engine/internal/usecase"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByUniversalID(ctx context.Context, universalID string) (*model.Payment, error) {
	args := m.Called(ctx, universalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByPlanID(ctx context.Context, planID int64) ([]*model.Payment, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListBySplitID(ctx context.Context, splitID int64) ([]*model.Payment, error) {
	args := m.Called(ctx, splitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateDelivery(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountPendingReconciliation(ctx context.Context, planID int64, splitID *int64) (int64, error) {
	args := m.Called(ctx, planID, splitID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentPlanRepository is a mock implementation of PaymentPlanRepository
type MockPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockPaymentPlanRepository) GetByID(ctx context.Context, id int64) (*model.PaymentPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) GetSplitByID(ctx context.Context, id int64) (*model.PaymentPlanSplit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentPlanSplit), args.Error(1)
}

func (m *MockPaymentPlanRepository) ListSplits(ctx context.Context, planID int64) ([]*model.PaymentPlanSplit, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentPlanSplit), args.Error(1)
}

func (m *MockPaymentPlanRepository) ListDispatched(ctx context.Context) ([]*model.PaymentPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) Update(ctx context.Context, plan *model.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockVerificationPlanRepository is a mock implementation of VerificationPlanRepository
type MockVerificationPlanRepository struct {
	mock.Mock
}

func (m *MockVerificationPlanRepository) GetByID(ctx context.Context, id int64) (*model.PaymentVerificationPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentVerificationPlan), args.Error(1)
}

func (m *MockVerificationPlanRepository) ListByPaymentPlanID(ctx context.Context, paymentPlanID int64) ([]*model.PaymentVerificationPlan, error) {
	args := m.Called(ctx, paymentPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentVerificationPlan), args.Error(1)
}

func (m *MockVerificationPlanRepository) Create(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockVerificationPlanRepository) Update(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockVerificationPlanRepository) Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockVerificationRepository is a mock implementation of VerificationRepository
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) GetByID(ctx context.Context, id int64) (*model.PaymentVerification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentVerification), args.Error(1)
}

func (m *MockVerificationRepository) ListByPlanID(ctx context.Context, planID int64) ([]*model.PaymentVerification, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentVerification), args.Error(1)
}

func (m *MockVerificationRepository) ListByPlanIDAndStatuses(ctx context.Context, planID int64, statuses []model.VerificationStatus) ([]*model.PaymentVerification, error) {
	args := m.Called(ctx, planID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentVerification), args.Error(1)
}

func (m *MockVerificationRepository) Update(ctx context.Context, verification *model.PaymentVerification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *MockVerificationRepository) BulkUpdate(ctx context.Context, verifications []*model.PaymentVerification) error {
	args := m.Called(ctx, verifications)
	return args.Error(0)
}

func (m *MockVerificationRepository) DeleteByPlanIDAndStatus(ctx context.Context, planID int64, status model.VerificationStatus) (int64, error) {
	args := m.Called(ctx, planID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationRepository) CountByStatus(ctx context.Context, planID int64) (map[model.VerificationStatus]int, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.VerificationStatus]int), args.Error(1)
}

func (m *MockVerificationRepository) ListPendingPhoneNumbers(ctx context.Context, planID int64) ([]string, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVerificationRepository) MarkSentToRapidPro(ctx context.Context, planID int64, phoneNumbers []string) error {
	args := m.Called(ctx, planID, phoneNumbers)
	return args.Error(0)
}

// MockSummaryRepository is a mock implementation of SummaryRepository
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) GetByPaymentPlanID(ctx context.Context, paymentPlanID int64) (*model.PaymentVerificationSummary, error) {
	args := m.Called(ctx, paymentPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentVerificationSummary), args.Error(1)
}

func (m *MockSummaryRepository) Upsert(ctx context.Context, summary *model.PaymentVerificationSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// MockGrievanceTicketRepository is a mock implementation of GrievanceTicketRepository
type MockGrievanceTicketRepository struct {
	mock.Mock
}

func (m *MockGrievanceTicketRepository) GetByID(ctx context.Context, id int64) (*model.GrievanceTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GrievanceTicket), args.Error(1)
}

func (m *MockGrievanceTicketRepository) CreateBatch(ctx context.Context, tickets []*model.GrievanceTicket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockGrievanceTicketRepository) Update(ctx context.Context, ticket *model.GrievanceTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockGrievanceTicketRepository) UpdateAdjudicationDetails(ctx context.Context, details *model.TicketNeedsAdjudicationDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

// MockIndividualRepository is a mock implementation of IndividualRepository
type MockIndividualRepository struct {
	mock.Mock
}

func (m *MockIndividualRepository) GetByID(ctx context.Context, id int64) (*model.Individual, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Individual), args.Error(1)
}

func (m *MockIndividualRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.Individual, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Individual), args.Error(1)
}

func (m *MockIndividualRepository) ListByRegistrationBatch(ctx context.Context, registrationDataImportID int64) ([]*model.Individual, error) {
	args := m.Called(ctx, registrationDataImportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Individual), args.Error(1)
}

func (m *MockIndividualRepository) UpdateDeduplication(ctx context.Context, individual *model.Individual) error {
	args := m.Called(ctx, individual)
	return args.Error(0)
}

func (m *MockIndividualRepository) MarkForWithdrawal(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockIndividualRepository) ClearWithdrawalMarks(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockHouseholdRepository is a mock implementation of HouseholdRepository
type MockHouseholdRepository struct {
	mock.Mock
}

func (m *MockHouseholdRepository) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) ListForTargeting(ctx context.Context, businessArea string, filters repository.TargetingFilters) ([]*model.Household, error) {
	args := m.Called(ctx, businessArea, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Household), args.Error(1)
}

func (m *MockHouseholdRepository) ReassignRoles(ctx context.Context, fromID, toID int64) error {
	args := m.Called(ctx, fromID, toID)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of PaymentGatewayProvider
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GetRecordsForPaymentInstruction(ctx context.Context, instructionID string) ([]provider.PaymentRecordData, error) {
	args := m.Called(ctx, instructionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.PaymentRecordData), args.Error(1)
}

// MockRapidPro is a mock implementation of RapidProProvider
type MockRapidPro struct {
	mock.Mock
}

func (m *MockRapidPro) StartFlow(ctx context.Context, flowID string, phoneNumbers []string) ([]provider.FlowStartResult, error) {
	args := m.Called(ctx, flowID, phoneNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.FlowStartResult), args.Error(1)
}

// MockSimilarityProvider is a mock implementation of SimilarityProvider
type MockSimilarityProvider struct {
	mock.Mock
}

func (m *MockSimilarityProvider) Search(ctx context.Context, req *provider.SimilaritySearchRequest) ([]provider.SimilarityHit, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.SimilarityHit), args.Error(1)
}

// MockNotifier is a mock implementation of GrievanceNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAllNotifications(ctx context.Context, action usecase.NotificationAction, tickets []*model.GrievanceTicket) {
	m.Called(ctx, action, tickets)
}

// MockSheetStore is a mock implementation of VerificationXLSXPort
type MockSheetStore struct {
	mock.Mock
}

func (m *MockSheetStore) Export(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockSheetStore) Import(ctx context.Context, plan *model.PaymentVerificationPlan, file io.Reader) error {
	args := m.Called(ctx, plan, file)
	return args.Error(0)
}

func (m *MockSheetStore) Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}
