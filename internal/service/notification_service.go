package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/zain-0/bus-track-ticket/internal/events"
)

// Role-addressed recipients; individual recipients are addressed by email.
const (
	RecipientSupervisors = "role:supervisor"
	RecipientPurchase    = "role:purchase"
)

// Notifier delivers a notification intent. Delivery transport (toast, email,
// push) is an external collaborator; the engine only states who should hear
// about what.
type Notifier interface {
	Notify(ctx context.Context, recipient string, kind events.EventType, ticketID string)
}

// LogNotifier records notification intents in the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs the logging notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, recipient string, kind events.EventType, ticketID string) {
	n.logger.Info("notify",
		zap.String("recipient", recipient),
		zap.String("event", string(kind)),
		zap.String("ticket_id", ticketID),
	)
}

// NotificationService resolves who to notify after each successful lifecycle
// transition and hands the intents to the Notifier.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, notifier: notifier, logger: logger}
}

// RegisterHandlers subscribes to the transitions that carry notification
// side effects.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAcknowledged, n.handleAcknowledged)
	n.dispatcher.Subscribe(events.EventQuotationApproved, n.handleQuotationReviewed)
	n.dispatcher.Subscribe(events.EventQuotationRejected, n.handleQuotationReviewed)
	n.dispatcher.Subscribe(events.EventServiceStarted, n.handleServiceStarted)
	n.dispatcher.Subscribe(events.EventInvoiceSubmitted, n.handleInvoiceSubmitted)
	n.dispatcher.Subscribe(events.EventRepairRequested, n.handleRepairRequested)
}

// acknowledge -> creator and supervisors hear the vendor picked it up.
func (n *NotificationService) handleAcknowledged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketLifecyclePayload)
	if !ok {
		return nil
	}
	n.notifier.Notify(ctx, payload.CreatedBy, event.Type, event.TicketID)
	n.notifier.Notify(ctx, RecipientSupervisors, event.Type, event.TicketID)
	return nil
}

// quotation review -> vendor hears the verdict.
func (n *NotificationService) handleQuotationReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketLifecyclePayload)
	if !ok {
		return nil
	}
	n.notifier.Notify(ctx, payload.AssignedVendor, event.Type, event.TicketID)
	return nil
}

// service start -> creator hears work began.
func (n *NotificationService) handleServiceStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketLifecyclePayload)
	if !ok {
		return nil
	}
	n.notifier.Notify(ctx, payload.CreatedBy, event.Type, event.TicketID)
	return nil
}

// invoice -> creator and purchase track the cost.
func (n *NotificationService) handleInvoiceSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InvoiceSubmittedPayload)
	if !ok {
		return nil
	}
	n.notifier.Notify(ctx, payload.CreatedBy, event.Type, event.TicketID)
	n.notifier.Notify(ctx, RecipientPurchase, event.Type, event.TicketID)
	return nil
}

// repair request -> supervisors decide; purchase also hears when an invoice
// came along.
func (n *NotificationService) handleRepairRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RepairRequestedPayload)
	if !ok {
		return nil
	}
	n.notifier.Notify(ctx, RecipientSupervisors, event.Type, event.TicketID)
	if payload.WithInvoice {
		n.notifier.Notify(ctx, RecipientPurchase, event.Type, event.TicketID)
	}
	return nil
}
