package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/events"
)

type recordedIntent struct {
	Recipient string
	Kind      events.EventType
	TicketID  string
}

type fakeNotifier struct {
	intents []recordedIntent
}

func (f *fakeNotifier) Notify(ctx context.Context, recipient string, kind events.EventType, ticketID string) {
	f.intents = append(f.intents, recordedIntent{Recipient: recipient, Kind: kind, TicketID: ticketID})
}

func TestNotificationRecipients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier := &fakeNotifier{}
	NewNotificationService(env.dispatcher, notifier, zap.NewNop()).RegisterHandlers()

	ticket := env.seedTicket(t, domain.TicketStatusApproved)

	if _, err := env.svc.Acknowledge(ctx, vendor, ticket.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{creator.Email, events.EventTicketAcknowledged, ticket.ID},
		{RecipientSupervisors, events.EventTicketAcknowledged, ticket.ID},
	})

	notifier.intents = nil
	if _, err := env.svc.SubmitQuotation(ctx, vendor, ticket.ID, QuotationInput{Amount: 300}); err != nil {
		t.Fatalf("submit quotation: %v", err)
	}
	// quotation submission itself carries no notification
	wantIntents(t, notifier, nil)

	if _, err := env.svc.ApproveQuotation(ctx, supervisor, ticket.ID); err != nil {
		t.Fatalf("approve quotation: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{vendor.Email, events.EventQuotationApproved, ticket.ID},
	})

	notifier.intents = nil
	if _, err := env.svc.StartService(ctx, vendor, ticket.ID); err != nil {
		t.Fatalf("start service: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{creator.Email, events.EventServiceStarted, ticket.ID},
	})

	notifier.intents = nil
	if _, err := env.svc.SubmitInvoice(ctx, vendor, ticket.ID, InvoiceInput{Amount: 320}); err != nil {
		t.Fatalf("submit invoice: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{creator.Email, events.EventInvoiceSubmitted, ticket.ID},
		{RecipientPurchase, events.EventInvoiceSubmitted, ticket.ID},
	})
}

func TestNotificationQuotationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier := &fakeNotifier{}
	NewNotificationService(env.dispatcher, notifier, zap.NewNop()).RegisterHandlers()

	ticket := env.seedTicket(t, domain.TicketStatusQuoted, func(tk *domain.Ticket) {
		tk.Quotation = &domain.Quotation{VendorEmail: vendor.Email, Amount: 900, Status: domain.QuotationStatusPending}
	})
	if _, err := env.svc.RejectQuotation(ctx, supervisor, ticket.ID, "too high"); err != nil {
		t.Fatalf("reject quotation: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{vendor.Email, events.EventQuotationRejected, ticket.ID},
	})
}

func TestNotificationRepairRequested(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier := &fakeNotifier{}
	NewNotificationService(env.dispatcher, notifier, zap.NewNop()).RegisterHandlers()

	ticket := env.seedTicket(t, domain.TicketStatusUnderService)
	if _, err := env.svc.RequestRepair(ctx, vendor, ticket.ID, RepairInput{Description: "brakes"}); err != nil {
		t.Fatalf("request repair: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{RecipientSupervisors, events.EventRepairRequested, ticket.ID},
	})

	notifier.intents = nil
	other := env.seedTicket(t, domain.TicketStatusUnderService)
	if _, err := env.svc.RequestRepairWithInvoice(ctx, vendor, other.ID,
		RepairInput{Description: "radiator"}, InvoiceInput{Amount: 120}); err != nil {
		t.Fatalf("request repair with invoice: %v", err)
	}
	wantIntents(t, notifier, []recordedIntent{
		{RecipientSupervisors, events.EventRepairRequested, other.ID},
		{RecipientPurchase, events.EventRepairRequested, other.ID},
	})
}

func wantIntents(t *testing.T, notifier *fakeNotifier, want []recordedIntent) {
	t.Helper()
	if len(notifier.intents) != len(want) {
		t.Fatalf("intents = %#v, want %#v", notifier.intents, want)
	}
	for i := range want {
		if notifier.intents[i] != want[i] {
			t.Fatalf("intent[%d] = %#v, want %#v", i, notifier.intents[i], want[i])
		}
	}
}
