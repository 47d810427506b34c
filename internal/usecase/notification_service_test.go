package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/messaging"
	"github.com/reliefops/hope-engine/internal/usecase"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockRedisClient) Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan messaging.Message), args.Error(1)
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func grievanceTicket(id int64, category model.TicketCategory) *model.GrievanceTicket {
	return &model.GrievanceTicket{
		ID:           id,
		UniversalID:  uuid.New(),
		Category:     category,
		Status:       model.TicketStatusNew,
		BusinessArea: "afghanistan",
	}
}

func TestNotificationService_SendAllNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one message per ticket on the action channel", func(t *testing.T) {
		client := new(MockRedisClient)
		service := usecase.NewNotificationService(client, zap.NewNop())

		tickets := []*model.GrievanceTicket{
			grievanceTicket(1, model.CategoryNeedsAdjudication),
			grievanceTicket(2, model.CategoryNeedsAdjudication),
		}
		client.On("Publish", ctx, "grievance.adjudication", mock.Anything).Return(nil)

		service.SendAllNotifications(ctx, usecase.ActionAdjudicationTicketCreated, tickets)

		client.AssertNumberOfCalls(t, "Publish", 2)
	})

	t.Run("verification tickets go to the verification channel", func(t *testing.T) {
		client := new(MockRedisClient)
		service := usecase.NewNotificationService(client, zap.NewNop())

		ticket := grievanceTicket(1, model.CategoryPaymentVerification)
		client.On("Publish", ctx, "grievance.verification", mock.Anything).Return(nil)

		service.SendAllNotifications(ctx, usecase.ActionVerificationTicketCreated, []*model.GrievanceTicket{ticket})

		client.AssertCalled(t, "Publish", ctx, "grievance.verification", mock.Anything)
	})

	t.Run("publish failures are swallowed", func(t *testing.T) {
		client := new(MockRedisClient)
		service := usecase.NewNotificationService(client, zap.NewNop())

		tickets := []*model.GrievanceTicket{
			grievanceTicket(1, model.CategoryNeedsAdjudication),
			grievanceTicket(2, model.CategoryNeedsAdjudication),
		}
		client.On("Publish", ctx, "grievance.adjudication", mock.Anything).
			Return(errors.New("redis unavailable"))

		// must not panic or bubble the error up
		require.NotPanics(t, func() {
			service.SendAllNotifications(ctx, usecase.ActionAdjudicationTicketCreated, tickets)
		})
		// one failure never short-circuits the rest of the batch
		client.AssertNumberOfCalls(t, "Publish", 2)
	})

	t.Run("unknown action publishes nothing", func(t *testing.T) {
		client := new(MockRedisClient)
		service := usecase.NewNotificationService(client, zap.NewNop())

		service.SendAllNotifications(ctx, usecase.NotificationAction("mystery"), []*model.GrievanceTicket{
			grievanceTicket(1, model.CategoryNeedsAdjudication),
		})

		client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty ticket list is a no-op", func(t *testing.T) {
		client := new(MockRedisClient)
		service := usecase.NewNotificationService(client, zap.NewNop())

		assert.NotPanics(t, func() {
			service.SendAllNotifications(ctx, usecase.ActionTicketResolved, nil)
		})
		client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
