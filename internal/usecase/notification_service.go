package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/messaging"
)

// NotificationAction identifies which event a notification announces.
type NotificationAction string

const (
	ActionVerificationTicketCreated NotificationAction = "verification_ticket_created"
	ActionAdjudicationTicketCreated NotificationAction = "adjudication_ticket_created"
	ActionTicketResolved            NotificationAction = "ticket_resolved"
)

// GrievanceNotifier announces ticket events to interested consumers.
// Delivery is best effort: failures are logged and swallowed, never
// propagated to the caller.
type GrievanceNotifier interface {
	SendAllNotifications(ctx context.Context, action NotificationAction, tickets []*model.GrievanceTicket)
}

// ticketNotification is the published message shape.
type ticketNotification struct {
	Action       NotificationAction   `json:"action"`
	Channel      string               `json:"channel"`
	TicketID     int64                `json:"ticket_id"`
	UniversalID  string               `json:"universal_id"`
	Category     model.TicketCategory `json:"category"`
	BusinessArea string               `json:"business_area"`
	CreatedAt    time.Time            `json:"created_at"`
}

// notificationRoute fixes the target channel and payload construction
// for one action.
type notificationRoute struct {
	channel string
	build   func(action NotificationAction, ticket *model.GrievanceTicket) ticketNotification
}

// NotificationService publishes ticket events over redis pub/sub. The
// routing table is built once at construction; there is no runtime
// lookup by name.
type NotificationService struct {
	client messaging.RedisClient
	routes map[NotificationAction]notificationRoute
	logger *zap.Logger
}

// NewNotificationService creates the grievance notification dispatcher
func NewNotificationService(client messaging.RedisClient, logger *zap.Logger) *NotificationService {
	build := func(channel string) notificationRoute {
		return notificationRoute{
			channel: channel,
			build: func(action NotificationAction, ticket *model.GrievanceTicket) ticketNotification {
				return ticketNotification{
					Action:       action,
					Channel:      channel,
					TicketID:     ticket.ID,
					UniversalID:  ticket.UniversalID.String(),
					Category:     ticket.Category,
					BusinessArea: ticket.BusinessArea,
					CreatedAt:    time.Now(),
				}
			},
		}
	}
	return &NotificationService{
		client: client,
		routes: map[NotificationAction]notificationRoute{
			ActionVerificationTicketCreated: build("grievance.verification"),
			ActionAdjudicationTicketCreated: build("grievance.adjudication"),
			ActionTicketResolved:            build("grievance.resolved"),
		},
		logger: logger,
	}
}

// SendAllNotifications publishes one message per ticket. Any failure is
// logged and swallowed so the primary state transition never blocks.
func (s *NotificationService) SendAllNotifications(ctx context.Context, action NotificationAction, tickets []*model.GrievanceTicket) {
	route, ok := s.routes[action]
	if !ok {
		s.logger.Error("no notification route for action",
			zap.String("action", string(action)))
		return
	}

	for _, ticket := range tickets {
		msg := route.build(action, ticket)
		if err := s.client.Publish(ctx, route.channel, msg); err != nil {
			s.logger.Error("failed to publish ticket notification",
				zap.String("action", string(action)),
				zap.Int64("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}
