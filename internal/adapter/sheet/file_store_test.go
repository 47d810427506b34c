package sheet_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/adapter/sheet"
	"github.com/reliefops/hope-engine/internal/domain/model"
)

type mockVerificationRepo struct {
	mock.Mock
}

func (m *mockVerificationRepo) GetByID(ctx context.Context, id int64) (*model.PaymentVerification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentVerification), args.Error(1)
}

func (m *mockVerificationRepo) ListByPlanID(ctx context.Context, planID int64) ([]*model.PaymentVerification, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentVerification), args.Error(1)
}

func (m *mockVerificationRepo) ListByPlanIDAndStatuses(ctx context.Context, planID int64, statuses []model.VerificationStatus) ([]*model.PaymentVerification, error) {
	args := m.Called(ctx, planID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentVerification), args.Error(1)
}

func (m *mockVerificationRepo) Update(ctx context.Context, verification *model.PaymentVerification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *mockVerificationRepo) BulkUpdate(ctx context.Context, verifications []*model.PaymentVerification) error {
	args := m.Called(ctx, verifications)
	return args.Error(0)
}

func (m *mockVerificationRepo) DeleteByPlanIDAndStatus(ctx context.Context, planID int64, status model.VerificationStatus) (int64, error) {
	args := m.Called(ctx, planID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVerificationRepo) CountByStatus(ctx context.Context, planID int64) (map[model.VerificationStatus]int, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.VerificationStatus]int), args.Error(1)
}

func (m *mockVerificationRepo) ListPendingPhoneNumbers(ctx context.Context, planID int64) ([]string, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockVerificationRepo) MarkSentToRapidPro(ctx context.Context, planID int64, phoneNumbers []string) error {
	args := m.Called(ctx, planID, phoneNumbers)
	return args.Error(0)
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestFileStore_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("writes one row per verification", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(dir, repo, zap.NewNop())

		paymentUUID := uuid.New()
		plan := &model.PaymentVerificationPlan{ID: 7}
		repo.On("ListByPlanIDAndStatuses", ctx, int64(7), mock.Anything).
			Return([]*model.PaymentVerification{
				{
					ID:      1,
					Payment: &model.Payment{UniversalID: paymentUUID, DeliveredQuantity: dec("100")},
				},
				{ID: 2},
			}, nil)

		err := store.Export(ctx, plan)

		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "verification_plan_7.csv"))
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "verification_id,payment_universal_id,delivered_quantity,received,received_amount", lines[0])
		assert.Equal(t, "1,"+paymentUUID.String()+",100,,", lines[1])
		assert.Equal(t, "2,,,,", lines[2])
	})

	t.Run("creates the export directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "exports")
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(dir, repo, zap.NewNop())

		repo.On("ListByPlanIDAndStatuses", ctx, int64(7), mock.Anything).
			Return([]*model.PaymentVerification{}, nil)

		err := store.Export(ctx, &model.PaymentVerificationPlan{ID: 7})

		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "verification_plan_7.csv"))
		assert.NoError(t, statErr)
	})
}

func TestFileStore_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("applies filled rows and derives the outcome", func(t *testing.T) {
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(t.TempDir(), repo, zap.NewNop())

		plan := &model.PaymentVerificationPlan{ID: 7}
		fullReceipt := &model.PaymentVerification{
			ID: 1, VerificationPlanID: 7,
			Payment: &model.Payment{DeliveredQuantity: dec("100")},
		}
		shortReceipt := &model.PaymentVerification{
			ID: 2, VerificationPlanID: 7,
			Payment: &model.Payment{DeliveredQuantity: dec("100")},
		}
		missing := &model.PaymentVerification{ID: 3, VerificationPlanID: 7}

		repo.On("GetByID", ctx, int64(1)).Return(fullReceipt, nil)
		repo.On("GetByID", ctx, int64(2)).Return(shortReceipt, nil)
		repo.On("GetByID", ctx, int64(3)).Return(missing, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		file := strings.NewReader(strings.Join([]string{
			"verification_id,payment_universal_id,delivered_quantity,received,received_amount",
			"1,,100,YES,100",
			"2,,100,yes,60",
			"3,,,NO,",
			"4,,,,",
		}, "\n"))

		err := store.Import(ctx, plan, file)

		require.NoError(t, err)
		assert.Equal(t, model.VerificationStatusReceived, fullReceipt.Status)
		assert.Equal(t, model.VerificationStatusReceivedWithIssues, shortReceipt.Status)
		assert.True(t, shortReceipt.ReceivedAmount.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, model.VerificationStatusNotReceived, missing.Status)
		// the empty row was never looked up
		repo.AssertNumberOfCalls(t, "GetByID", 3)
	})

	t.Run("rejects rows from another plan", func(t *testing.T) {
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(t.TempDir(), repo, zap.NewNop())

		foreign := &model.PaymentVerification{ID: 1, VerificationPlanID: 99}
		repo.On("GetByID", ctx, int64(1)).Return(foreign, nil)

		file := strings.NewReader(strings.Join([]string{
			"verification_id,payment_universal_id,delivered_quantity,received,received_amount",
			"1,,100,YES,100",
		}, "\n"))

		err := store.Import(ctx, &model.PaymentVerificationPlan{ID: 7}, file)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("malformed amount aborts the import", func(t *testing.T) {
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(t.TempDir(), repo, zap.NewNop())

		verification := &model.PaymentVerification{ID: 1, VerificationPlanID: 7}
		repo.On("GetByID", ctx, int64(1)).Return(verification, nil)

		file := strings.NewReader(strings.Join([]string{
			"verification_id,payment_universal_id,delivered_quantity,received,received_amount",
			"1,,100,YES,not-a-number",
		}, "\n"))

		err := store.Import(ctx, &model.PaymentVerificationPlan{ID: 7}, file)
		assert.Error(t, err)
	})
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the exported sheet", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockVerificationRepo)
		store := sheet.NewFileStore(dir, repo, zap.NewNop())

		plan := &model.PaymentVerificationPlan{ID: 7}
		repo.On("ListByPlanIDAndStatuses", ctx, int64(7), mock.Anything).
			Return([]*model.PaymentVerification{}, nil)
		require.NoError(t, store.Export(ctx, plan))

		err := store.Delete(ctx, plan)

		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "verification_plan_7.csv"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing sheet is not an error", func(t *testing.T) {
		store := sheet.NewFileStore(t.TempDir(), new(mockVerificationRepo), zap.NewNop())

		err := store.Delete(ctx, &model.PaymentVerificationPlan{ID: 7})
		assert.NoError(t, err)
	})
}
