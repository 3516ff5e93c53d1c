package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/events"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

var (
	creator    = domain.Actor{ID: "u1", Name: "Dana", Email: "dana@fleet.test", Role: domain.RoleCreator}
	supervisor = domain.Actor{ID: "u2", Name: "Sam", Email: "sam@fleet.test", Role: domain.RoleSupervisor}
	vendor     = domain.Actor{ID: "u3", Name: "Volvo Care", Email: "service@volvocare.test", Role: domain.RoleVendor}
	purchaser  = domain.Actor{ID: "u4", Name: "Pat", Email: "pat@fleet.test", Role: domain.RolePurchase}
)

type testEnv struct {
	svc        *TicketService
	tickets    repository.TicketRepository
	presets    repository.BusPresetRepository
	vendors    repository.VendorRepository
	dispatcher events.Dispatcher
	published  *[]events.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketApproved,
		events.EventTicketRejected,
		events.EventTicketAcknowledged,
		events.EventQuotationSubmitted,
		events.EventQuotationApproved,
		events.EventQuotationRejected,
		events.EventServiceStarted,
		events.EventInvoiceSubmitted,
		events.EventRepairRequested,
		events.EventRepairApproved,
		events.EventTicketCompleted,
		events.EventNoteAdded,
		events.EventStatusOverridden,
	} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			*published = append(*published, event)
			return nil
		})
	}

	tickets := repository.NewMemoryTicketRepository()
	presets := repository.NewMemoryBusPresetRepository()
	vendors := repository.NewMemoryVendorRepository()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		PresetRepo: presets,
		VendorRepo: vendors,
		Dispatcher: dispatcher,
	})
	return &testEnv{svc: svc, tickets: tickets, presets: presets, vendors: vendors, dispatcher: dispatcher, published: published}
}

func (e *testEnv) seedTicket(t *testing.T, status domain.TicketStatus, mutate ...func(*domain.Ticket)) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:          "Engine overhaul",
		Description:    "engine noise above 60kph",
		Status:         status,
		ServiceType:    domain.ServiceTypeRepair,
		RepairCategory: domain.RepairCategoryEngine,
		Priority:       domain.TicketPriorityMedium,
		CreatedBy:      creator.Email,
		AssignedVendor: vendor.Email,
		Bus:            domain.BusDetails{BusNumber: "BUS-101", Manufacturer: "Volvo", Issue: "engine noise"},
	}
	for _, fn := range mutate {
		fn(ticket)
	}
	if err := e.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func (e *testEnv) lastEvent(t *testing.T, eventType events.EventType) events.Event {
	t.Helper()
	for i := len(*e.published) - 1; i >= 0; i-- {
		if (*e.published)[i].Type == eventType {
			return (*e.published)[i]
		}
	}
	t.Fatalf("no %s event published", eventType)
	return events.Event{}
}

func toDomainErr(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil {
		t.Fatal("expected a domain error, got nil")
	}
	return domainErr
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusPending)

	if _, err := env.svc.Approve(ctx, supervisor, ticket.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := env.svc.Acknowledge(ctx, vendor, ticket.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if _, err := env.svc.SubmitQuotation(ctx, vendor, ticket.ID, QuotationInput{Amount: 4200, Description: "parts and labor"}); err != nil {
		t.Fatalf("submit quotation: %v", err)
	}
	if _, err := env.svc.ApproveQuotation(ctx, supervisor, ticket.ID); err != nil {
		t.Fatalf("approve quotation: %v", err)
	}
	if _, err := env.svc.StartService(ctx, vendor, ticket.ID); err != nil {
		t.Fatalf("start service: %v", err)
	}
	if _, err := env.svc.SubmitInvoice(ctx, vendor, ticket.ID, InvoiceInput{Amount: 4400, Description: "final"}); err != nil {
		t.Fatalf("submit invoice: %v", err)
	}
	final, err := env.svc.Complete(ctx, supervisor, ticket.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if final.Status != domain.TicketStatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
	if final.ApprovedAt == nil || final.AcknowledgedAt == nil || final.UnderServiceAt == nil || final.CompletedAt == nil {
		t.Fatal("expected all milestone timestamps to be set")
	}
	if final.ApprovedBy != supervisor.Email {
		t.Fatalf("approvedBy = %q, want %q", final.ApprovedBy, supervisor.Email)
	}
	if final.Quotation == nil || final.Quotation.Status != domain.QuotationStatusApproved {
		t.Fatal("expected approved quotation on ticket")
	}
	if final.Invoice == nil || final.Invoice.PaidAt == nil {
		t.Fatal("expected invoice marked paid at completion")
	}
	if final.FinalCost == nil || *final.FinalCost != 4400 {
		t.Fatalf("finalCost = %v, want 4400", final.FinalCost)
	}
}

func TestTransitionStatusPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	type op struct {
		name    string
		actor   domain.Actor
		invoke  func(ticketID string) error
		allowed map[domain.TicketStatus]bool
	}
	ops := []op{
		{
			name:  "approve",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.Approve(ctx, supervisor, id)
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusPending: true},
		},
		{
			name:  "reject",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.Reject(ctx, supervisor, id, "not needed")
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusPending: true},
		},
		{
			name:  "acknowledge",
			actor: vendor,
			invoke: func(id string) error {
				_, err := env.svc.Acknowledge(ctx, vendor, id)
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusApproved: true},
		},
		{
			name:  "submitQuotation",
			actor: vendor,
			invoke: func(id string) error {
				_, err := env.svc.SubmitQuotation(ctx, vendor, id, QuotationInput{Amount: 100})
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusAcknowledged: true},
		},
		{
			name:  "approveQuotation",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.ApproveQuotation(ctx, supervisor, id)
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusQuoted: true},
		},
		{
			name:  "rejectQuotation",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.RejectQuotation(ctx, supervisor, id, "too expensive")
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusQuoted: true},
		},
		{
			name:  "startService",
			actor: vendor,
			invoke: func(id string) error {
				_, err := env.svc.StartService(ctx, vendor, id)
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusQuoteApproved: true},
		},
		{
			name:  "submitInvoice",
			actor: vendor,
			invoke: func(id string) error {
				_, err := env.svc.SubmitInvoice(ctx, vendor, id, InvoiceInput{Amount: 100})
				return err
			},
			allowed: map[domain.TicketStatus]bool{
				domain.TicketStatusAcknowledged: true,
				domain.TicketStatusUnderService: true,
			},
		},
		{
			name:  "requestRepair",
			actor: vendor,
			invoke: func(id string) error {
				_, err := env.svc.RequestRepair(ctx, vendor, id, RepairInput{Description: "brakes worn"})
				return err
			},
			allowed: map[domain.TicketStatus]bool{
				domain.TicketStatusAcknowledged: true,
				domain.TicketStatusUnderService: true,
			},
		},
		{
			name:  "approveRepair",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.ApproveRepair(ctx, supervisor, id, "rep-1")
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusRepairRequested: true},
		},
		{
			name:  "complete",
			actor: supervisor,
			invoke: func(id string) error {
				_, err := env.svc.Complete(ctx, supervisor, id)
				return err
			},
			allowed: map[domain.TicketStatus]bool{domain.TicketStatusInvoiced: true},
		},
	}

	for _, operation := range ops {
		for _, status := range domain.AllTicketStatuses {
			t.Run(operation.name+"/"+string(status), func(t *testing.T) {
				ticket := env.seedTicket(t, status, func(tk *domain.Ticket) {
					if status == domain.TicketStatusQuoted || status == domain.TicketStatusQuoteApproved || status == domain.TicketStatusQuoteRejected {
						tk.Quotation = &domain.Quotation{VendorEmail: vendor.Email, Amount: 100, Status: domain.QuotationStatusPending}
					}
					if status == domain.TicketStatusRepairRequested {
						tk.RepairRequests = []domain.RepairRequest{{ID: "rep-1", Description: "brakes worn", EstimatedCost: 50, CreatedAt: time.Now()}}
					}
				})
				err := operation.invoke(ticket.ID)
				if operation.allowed[status] {
					if err != nil {
						t.Fatalf("expected success from %s, got %v", status, err)
					}
					return
				}
				assertCode(t, err, "INVALID_STATE_TRANSITION")

				stored, getErr := env.tickets.GetByID(ctx, ticket.ID)
				if getErr != nil {
					t.Fatalf("get after failed transition: %v", getErr)
				}
				if stored.Status != status {
					t.Fatalf("failed transition mutated status: %s -> %s", status, stored.Status)
				}
			})
		}
	}
}

func TestTransitionRoleGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		status domain.TicketStatus
		actor  domain.Actor
		invoke func(actor domain.Actor, id string) error
	}{
		{"approve not creator", domain.TicketStatusPending, creator, func(a domain.Actor, id string) error {
			_, err := env.svc.Approve(ctx, a, id)
			return err
		}},
		{"approve not vendor", domain.TicketStatusPending, vendor, func(a domain.Actor, id string) error {
			_, err := env.svc.Approve(ctx, a, id)
			return err
		}},
		{"reject not purchase", domain.TicketStatusPending, purchaser, func(a domain.Actor, id string) error {
			_, err := env.svc.Reject(ctx, a, id, "no")
			return err
		}},
		{"acknowledge not supervisor", domain.TicketStatusApproved, supervisor, func(a domain.Actor, id string) error {
			_, err := env.svc.Acknowledge(ctx, a, id)
			return err
		}},
		{"quotation not creator", domain.TicketStatusAcknowledged, creator, func(a domain.Actor, id string) error {
			_, err := env.svc.SubmitQuotation(ctx, a, id, QuotationInput{Amount: 10})
			return err
		}},
		{"approve quotation not vendor", domain.TicketStatusQuoted, vendor, func(a domain.Actor, id string) error {
			_, err := env.svc.ApproveQuotation(ctx, a, id)
			return err
		}},
		{"start service not purchase", domain.TicketStatusQuoteApproved, purchaser, func(a domain.Actor, id string) error {
			_, err := env.svc.StartService(ctx, a, id)
			return err
		}},
		{"invoice not creator", domain.TicketStatusUnderService, creator, func(a domain.Actor, id string) error {
			_, err := env.svc.SubmitInvoice(ctx, a, id, InvoiceInput{Amount: 10})
			return err
		}},
		{"complete not creator", domain.TicketStatusInvoiced, creator, func(a domain.Actor, id string) error {
			_, err := env.svc.Complete(ctx, a, id)
			return err
		}},
		{"override not vendor", domain.TicketStatusPending, vendor, func(a domain.Actor, id string) error {
			_, err := env.svc.OverrideStatus(ctx, a, id, domain.TicketStatusApproved, "because")
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := env.seedTicket(t, tc.status, func(tk *domain.Ticket) {
				if tc.status == domain.TicketStatusQuoted {
					tk.Quotation = &domain.Quotation{VendorEmail: vendor.Email, Amount: 10, Status: domain.QuotationStatusPending}
				}
			})
			assertCode(t, tc.invoke(tc.actor, ticket.ID), "PERMISSION_DENIED")
		})
	}
}

func TestVendorIdentityGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	otherVendor := domain.Actor{ID: "u9", Email: "other@vendors.test", Role: domain.RoleVendor}

	ticket := env.seedTicket(t, domain.TicketStatusApproved)
	_, err := env.svc.Acknowledge(ctx, otherVendor, ticket.ID)
	assertCode(t, err, "PERMISSION_DENIED")

	ticket = env.seedTicket(t, domain.TicketStatusInvoiced, func(tk *domain.Ticket) {
		tk.Invoice = &domain.Invoice{ID: "inv-1", Amount: 50}
	})
	_, err = env.svc.Complete(ctx, otherVendor, ticket.ID)
	assertCode(t, err, "PERMISSION_DENIED")

	// Vendor email matching is case-insensitive.
	shouting := domain.Actor{ID: vendor.ID, Email: strings.ToUpper(vendor.Email), Role: domain.RoleVendor}
	ticket = env.seedTicket(t, domain.TicketStatusApproved)
	if _, err := env.svc.Acknowledge(ctx, shouting, ticket.ID); err != nil {
		t.Fatalf("case-insensitive vendor match failed: %v", err)
	}
}

func TestRejectKeepsReason(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.seedTicket(t, domain.TicketStatusPending)

	updated, err := env.svc.Reject(context.Background(), supervisor, ticket.ID, "duplicate of another ticket")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != domain.TicketStatusRejected {
		t.Fatalf("status = %s, want rejected", updated.Status)
	}
	if updated.RejectedReason != "duplicate of another ticket" {
		t.Fatalf("rejectedReason = %q", updated.RejectedReason)
	}
	event := env.lastEvent(t, events.EventTicketRejected)
	payload, ok := event.Payload.(events.TicketLifecyclePayload)
	if !ok || payload.Reason != "duplicate of another ticket" {
		t.Fatalf("event payload = %#v", event.Payload)
	}
}

func TestQuotationRejectionKeepsQuotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusAcknowledged)

	if _, err := env.svc.SubmitQuotation(ctx, vendor, ticket.ID, QuotationInput{Amount: 900, Description: "estimate"}); err != nil {
		t.Fatalf("submit quotation: %v", err)
	}
	updated, err := env.svc.RejectQuotation(ctx, supervisor, ticket.ID, "too expensive")
	if err != nil {
		t.Fatalf("reject quotation: %v", err)
	}
	if updated.Status != domain.TicketStatusQuoteRejected {
		t.Fatalf("status = %s, want quote_rejected", updated.Status)
	}
	q := updated.Quotation
	if q == nil || q.Status != domain.QuotationStatusRejected || q.RejectedReason != "too expensive" {
		t.Fatalf("quotation = %#v", q)
	}
	if q.Amount != 900 || q.ReviewedBy != supervisor.Email || q.ReviewedAt == nil {
		t.Fatalf("quotation history lost: %#v", q)
	}
}

func TestQuotationReviewWithoutQuotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusApproved)

	// a status override can land a ticket in quoted with no document attached
	if _, err := env.svc.OverrideStatus(ctx, supervisor, ticket.ID, domain.TicketStatusQuoted, "admin fixup"); err != nil {
		t.Fatalf("override: %v", err)
	}

	_, err := env.svc.ApproveQuotation(ctx, supervisor, ticket.ID)
	assertCode(t, err, "INVALID_STATE_TRANSITION")

	_, err = env.svc.RejectQuotation(ctx, supervisor, ticket.ID, "no document")
	assertCode(t, err, "INVALID_STATE_TRANSITION")

	stored, err := env.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.TicketStatusQuoted || stored.Quotation != nil {
		t.Fatalf("failed review mutated ticket: status=%s quotation=%#v", stored.Status, stored.Quotation)
	}
}

func TestSubmitInvoiceOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusUnderService)

	if _, err := env.svc.SubmitInvoice(ctx, vendor, ticket.ID, InvoiceInput{Amount: 700}); err != nil {
		t.Fatalf("first invoice: %v", err)
	}

	// Force the ticket back to an invoice-eligible state; the invoice itself
	// must still block a second submission.
	if _, err := env.svc.OverrideStatus(ctx, supervisor, ticket.ID, domain.TicketStatusUnderService, "rework"); err != nil {
		t.Fatalf("override: %v", err)
	}
	_, err := env.svc.SubmitInvoice(ctx, vendor, ticket.ID, InvoiceInput{Amount: 999})
	assertCode(t, err, "INVALID_STATE_TRANSITION")

	stored, _ := env.svc.GetByID(ctx, ticket.ID)
	if stored.Invoice == nil || stored.Invoice.Amount != 700 {
		t.Fatalf("invoice = %#v, want original preserved", stored.Invoice)
	}
}

func TestRequestRepairWithInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusUnderService)

	updated, err := env.svc.RequestRepairWithInvoice(ctx, vendor, ticket.ID,
		RepairInput{Description: "cracked radiator", EstimatedCost: 300},
		InvoiceInput{Amount: 450, Description: "work so far"},
	)
	if err != nil {
		t.Fatalf("repair with invoice: %v", err)
	}
	if updated.Status != domain.TicketStatusRepairRequested {
		t.Fatalf("status = %s, want repair_requested", updated.Status)
	}
	if len(updated.RepairRequests) != 1 || updated.RepairRequests[0].Approved {
		t.Fatalf("repairRequests = %#v", updated.RepairRequests)
	}
	if updated.Invoice == nil || updated.Invoice.Amount != 450 {
		t.Fatalf("invoice = %#v", updated.Invoice)
	}
	if updated.FinalCost == nil || *updated.FinalCost != 450 {
		t.Fatalf("finalCost = %v", updated.FinalCost)
	}

	event := env.lastEvent(t, events.EventRepairRequested)
	payload, ok := event.Payload.(events.RepairRequestedPayload)
	if !ok || !payload.WithInvoice {
		t.Fatalf("event payload = %#v", event.Payload)
	}
}

func TestApproveRepairSpawnsTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusUnderService)

	if _, err := env.svc.RequestRepair(ctx, vendor, ticket.ID, RepairInput{Description: "cracked radiator", EstimatedCost: 300}); err != nil {
		t.Fatalf("request repair: %v", err)
	}
	stored, _ := env.svc.GetByID(ctx, ticket.ID)
	repairID := stored.RepairRequests[0].ID

	result, err := env.svc.ApproveRepair(ctx, supervisor, ticket.ID, repairID)
	if err != nil {
		t.Fatalf("approve repair: %v", err)
	}

	if result.Updated.Status != domain.TicketStatusAcknowledged {
		t.Fatalf("updated status = %s, want acknowledged", result.Updated.Status)
	}
	repair := result.Updated.RepairRequestByID(repairID)
	if repair == nil || !repair.Approved || repair.ApprovedBy != supervisor.Email || repair.ApprovedAt == nil {
		t.Fatalf("repair = %#v", repair)
	}

	spawned := result.Spawned
	if spawned.ID == "" || spawned.ID == ticket.ID {
		t.Fatalf("spawned id = %q", spawned.ID)
	}
	if spawned.Status != domain.TicketStatusPending {
		t.Fatalf("spawned status = %s, want pending", spawned.Status)
	}
	if spawned.Title != "Repair for "+ticket.Title {
		t.Fatalf("spawned title = %q", spawned.Title)
	}
	if spawned.ServiceType != domain.ServiceTypeRepair {
		t.Fatalf("spawned serviceType = %s", spawned.ServiceType)
	}
	if spawned.Description != "cracked radiator" {
		t.Fatalf("spawned description = %q", spawned.Description)
	}
	if spawned.AssignedVendor != ticket.AssignedVendor || spawned.Bus.BusNumber != ticket.Bus.BusNumber {
		t.Fatal("spawned ticket lost vendor or bus snapshot")
	}
	if spawned.EstimatedCost == nil || *spawned.EstimatedCost != 300 {
		t.Fatalf("spawned estimatedCost = %v", spawned.EstimatedCost)
	}
	if spawned.CreatedBy != supervisor.Email {
		t.Fatalf("spawned createdBy = %q", spawned.CreatedBy)
	}

	// second approval of the same request is rejected
	if _, err := env.svc.RequestRepair(ctx, vendor, ticket.ID, RepairInput{Description: "again"}); err != nil {
		t.Fatalf("re-request repair: %v", err)
	}
	_, err = env.svc.ApproveRepair(ctx, supervisor, ticket.ID, repairID)
	assertCode(t, err, "INVALID_STATE_TRANSITION")

	_, err = env.svc.ApproveRepair(ctx, supervisor, ticket.ID, "missing-id")
	assertCode(t, err, "NOT_FOUND")
}

func TestCompleteByAssignedVendor(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.seedTicket(t, domain.TicketStatusInvoiced, func(tk *domain.Ticket) {
		tk.Invoice = &domain.Invoice{ID: "inv-1", Amount: 120}
	})
	updated, err := env.svc.Complete(context.Background(), vendor, ticket.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.CompletedAt == nil || updated.Invoice.PaidAt == nil {
		t.Fatal("expected completion and payment timestamps")
	}
}

func TestAddNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusRejected)

	// notes are allowed at any status and for any known role
	for _, actor := range []domain.Actor{creator, supervisor, vendor, purchaser} {
		if _, err := env.svc.AddNote(ctx, actor, ticket.ID, "note from "+string(actor.Role)); err != nil {
			t.Fatalf("add note as %s: %v", actor.Role, err)
		}
	}
	stored, _ := env.svc.GetByID(ctx, ticket.ID)
	if len(stored.Notes) != 4 {
		t.Fatalf("notes = %d, want 4", len(stored.Notes))
	}
	if stored.Status != domain.TicketStatusRejected {
		t.Fatalf("adding notes changed status to %s", stored.Status)
	}

	_, err := env.svc.AddNote(ctx, creator, ticket.ID, "   ")
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = env.svc.AddNote(ctx, domain.Actor{Role: "auditor"}, ticket.ID, "hi")
	assertCode(t, err, "PERMISSION_DENIED")
}

func TestOverrideStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(t, domain.TicketStatusPending)

	_, err := env.svc.OverrideStatus(ctx, supervisor, ticket.ID, domain.TicketStatusUnderService, "")
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = env.svc.OverrideStatus(ctx, supervisor, ticket.ID, "imaginary", "because")
	assertCode(t, err, "VALIDATION_FAILED")

	updated, err := env.svc.OverrideStatus(ctx, supervisor, ticket.ID, domain.TicketStatusUnderService, "paperwork lost")
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if updated.Status != domain.TicketStatusUnderService {
		t.Fatalf("status = %s, want under_service", updated.Status)
	}
	if len(updated.Notes) != 1 {
		t.Fatalf("notes = %#v, want one audit entry", updated.Notes)
	}
	note := updated.Notes[0]
	for _, fragment := range []string{supervisor.Email, "pending", "under_service", "paperwork lost"} {
		if !strings.Contains(note, fragment) {
			t.Fatalf("audit note %q missing %q", note, fragment)
		}
	}
}

func TestOperationsOnMissingTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Approve(ctx, supervisor, "nope")
	assertCode(t, err, "NOT_FOUND")
	_, err = env.svc.GetByID(ctx, "nope")
	assertCode(t, err, "NOT_FOUND")
}
