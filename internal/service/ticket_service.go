package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/events"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// TicketService is the lifecycle engine. Every mutation loads the current
// snapshot, checks the actor role and state precondition, mutates the loaded
// copy and writes it back as one unit; a failed check returns a typed error
// and leaves the store untouched.
type TicketService struct {
	tickets    repository.TicketRepository
	presets    repository.BusPresetRepository
	vendors    repository.VendorRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	PresetRepo repository.BusPresetRepository
	VendorRepo repository.VendorRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		presets:    deps.PresetRepo,
		vendors:    deps.VendorRepo,
		dispatcher: deps.Dispatcher,
	}
}

// QuotationInput describes a vendor quotation payload.
type QuotationInput struct {
	Amount      float64
	Description string
}

// InvoiceInput describes a vendor invoice payload.
type InvoiceInput struct {
	Amount      float64
	Description string
}

// RepairInput describes an additional-repair payload.
type RepairInput struct {
	Description   string
	EstimatedCost float64
}

// RepairApproval is the result of approving a repair request: the original
// ticket back in acknowledged state plus the spawned follow-up ticket.
type RepairApproval struct {
	Updated *domain.Ticket
	Spawned *domain.Ticket
}

// Approve moves a pending ticket to approved.
func (s *TicketService) Approve(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusPending); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusApproved
	ticket.ApprovedAt = &now
	ticket.ApprovedBy = actor.Email
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventTicketApproved, actor, ticket, oldStatus, "")
	return ticket, nil
}

// Reject moves a pending ticket to rejected with a reason. Rejected is
// terminal for the approval branch; the ticket returns to its creator.
func (s *TicketService) Reject(ctx context.Context, actor domain.Actor, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusPending); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusRejected
	ticket.RejectedReason = reason
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventTicketRejected, actor, ticket, oldStatus, reason)
	return ticket, nil
}

// Acknowledge moves an approved ticket to acknowledged. Only the assigned
// vendor may acknowledge.
func (s *TicketService) Acknowledge(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedVendor(ticket, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusApproved); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusAcknowledged
	ticket.AcknowledgedAt = &now
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventTicketAcknowledged, actor, ticket, oldStatus, "")
	return ticket, nil
}

// SubmitQuotation attaches a quotation and moves the ticket to quoted.
func (s *TicketService) SubmitQuotation(ctx context.Context, actor domain.Actor, ticketID string, input QuotationInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedVendor(ticket, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusAcknowledged); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusQuoted
	ticket.Quotation = &domain.Quotation{
		VendorEmail: actor.Email,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.QuotationStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventQuotationSubmitted, actor, ticket, oldStatus, "")
	return ticket, nil
}

// ApproveQuotation marks the attached quotation approved. The quotation is
// mutated in place so amount and description history is kept.
func (s *TicketService) ApproveQuotation(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusQuoted); err != nil {
		return nil, err
	}
	if err := requireQuotation(ticket); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusQuoteApproved
	ticket.Quotation.Status = domain.QuotationStatusApproved
	ticket.Quotation.ReviewedBy = actor.Email
	ticket.Quotation.ReviewedAt = &now
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventQuotationApproved, actor, ticket, oldStatus, "")
	return ticket, nil
}

// RejectQuotation marks the attached quotation rejected with a reason.
func (s *TicketService) RejectQuotation(ctx context.Context, actor domain.Actor, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusQuoted); err != nil {
		return nil, err
	}
	if err := requireQuotation(ticket); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusQuoteRejected
	ticket.Quotation.Status = domain.QuotationStatusRejected
	ticket.Quotation.ReviewedBy = actor.Email
	ticket.Quotation.ReviewedAt = &now
	ticket.Quotation.RejectedReason = reason
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventQuotationRejected, actor, ticket, oldStatus, reason)
	return ticket, nil
}

// StartService moves a quote-approved ticket to under_service.
func (s *TicketService) StartService(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedVendor(ticket, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusQuoteApproved); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusUnderService
	ticket.UnderServiceAt = &now
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventServiceStarted, actor, ticket, oldStatus, "")
	return ticket, nil
}

// SubmitInvoice attaches the invoice, sets the final cost from its amount and
// moves the ticket to invoiced. A ticket carries at most one invoice.
func (s *TicketService) SubmitInvoice(ctx context.Context, actor domain.Actor, ticketID string, input InvoiceInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedVendor(ticket, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusAcknowledged, domain.TicketStatusUnderService); err != nil {
		return nil, err
	}
	if ticket.Invoice != nil {
		return nil, apperrors.NewInvalidStateTransition("ticket already has an invoice", map[string]any{
			"ticket_id": ticket.ID, "invoice_id": ticket.Invoice.ID,
		})
	}
	oldStatus := ticket.Status
	attachInvoice(ticket, input)
	ticket.Status = domain.TicketStatusInvoiced
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventInvoiceSubmitted,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.InvoiceSubmittedPayload{
			TicketLifecyclePayload: lifecyclePayload(ticket, oldStatus, ""),
			InvoiceID:              ticket.Invoice.ID,
			Amount:                 ticket.Invoice.Amount,
		},
	})
	return ticket, nil
}

// RequestRepair appends a pending repair request and moves the ticket to
// repair_requested.
func (s *TicketService) RequestRepair(ctx context.Context, actor domain.Actor, ticketID string, input RepairInput) (*domain.Ticket, error) {
	return s.requestRepair(ctx, actor, ticketID, input, nil)
}

// RequestRepairWithInvoice appends a pending repair request and attaches the
// invoice for the work already done in the same transition.
func (s *TicketService) RequestRepairWithInvoice(ctx context.Context, actor domain.Actor, ticketID string, repair RepairInput, invoice InvoiceInput) (*domain.Ticket, error) {
	return s.requestRepair(ctx, actor, ticketID, repair, &invoice)
}

func (s *TicketService) requestRepair(ctx context.Context, actor domain.Actor, ticketID string, input RepairInput, invoice *InvoiceInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedVendor(ticket, actor); err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusAcknowledged, domain.TicketStatusUnderService); err != nil {
		return nil, err
	}
	if invoice != nil && ticket.Invoice != nil {
		return nil, apperrors.NewInvalidStateTransition("ticket already has an invoice", map[string]any{
			"ticket_id": ticket.ID, "invoice_id": ticket.Invoice.ID,
		})
	}
	oldStatus := ticket.Status
	repair := domain.RepairRequest{
		ID:            uuid.NewString(),
		Description:   strings.TrimSpace(input.Description),
		EstimatedCost: input.EstimatedCost,
		CreatedAt:     time.Now(),
	}
	ticket.RepairRequests = append(ticket.RepairRequests, repair)
	if invoice != nil {
		attachInvoice(ticket, *invoice)
	}
	ticket.Status = domain.TicketStatusRepairRequested
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventRepairRequested,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.RepairRequestedPayload{
			TicketLifecyclePayload: lifecyclePayload(ticket, oldStatus, ""),
			RepairID:               repair.ID,
			EstimatedCost:          repair.EstimatedCost,
			WithInvoice:            invoice != nil,
		},
	})
	return ticket, nil
}

// ApproveRepair marks the matching repair request approved, returns the
// ticket to acknowledged and spawns a new repair ticket pre-filled from the
// approved entry. Sibling repair requests are not altered.
func (s *TicketService) ApproveRepair(ctx context.Context, actor domain.Actor, ticketID, repairID string) (*RepairApproval, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(ticket, domain.TicketStatusRepairRequested); err != nil {
		return nil, err
	}
	repair := ticket.RepairRequestByID(repairID)
	if repair == nil {
		return nil, apperrors.NewNotFound("repair request", map[string]any{"repair_id": repairID})
	}
	if repair.Approved {
		return nil, apperrors.NewInvalidStateTransition("repair request already approved", map[string]any{
			"repair_id": repairID,
		})
	}
	oldStatus := ticket.Status
	now := time.Now()
	repair.Approved = true
	repair.ApprovedBy = actor.Email
	repair.ApprovedAt = &now
	ticket.Status = domain.TicketStatusAcknowledged

	estimated := repair.EstimatedCost
	spawned := &domain.Ticket{
		Title:          "Repair for " + ticket.Title,
		Description:    repair.Description,
		Status:         domain.TicketStatusPending,
		ServiceType:    domain.ServiceTypeRepair,
		Priority:       ticket.Priority,
		RepairCategory: ticket.RepairCategory,
		CreatedBy:      actor.Email,
		AssignedVendor: ticket.AssignedVendor,
		Bus:            ticket.Bus,
		EstimatedCost:  &estimated,
	}

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, spawned); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventRepairApproved,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.RepairApprovedPayload{
			TicketLifecyclePayload: lifecyclePayload(ticket, oldStatus, ""),
			RepairID:               repairID,
			SpawnedTicketID:        spawned.ID,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: spawned.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Title:          spawned.Title,
			ServiceType:    spawned.ServiceType,
			Priority:       spawned.Priority,
			BusNumber:      spawned.Bus.BusNumber,
			CreatedBy:      spawned.CreatedBy,
			AssignedVendor: spawned.AssignedVendor,
			SpawnedFrom:    ticket.ID,
		},
	})
	return &RepairApproval{Updated: ticket, Spawned: spawned}, nil
}

// Complete closes out an invoiced ticket. Allowed for the supervisor or the
// assigned vendor; stamps completedAt and marks the invoice paid.
func (s *TicketService) Complete(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor, domain.RoleVendor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleVendor {
		if err := requireAssignedVendor(ticket, actor); err != nil {
			return nil, err
		}
	}
	if err := requireStatus(ticket, domain.TicketStatusInvoiced); err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusCompleted
	ticket.CompletedAt = &now
	if ticket.Invoice != nil && ticket.Invoice.PaidAt == nil {
		ticket.Invoice.PaidAt = &now
	}
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventTicketCompleted, actor, ticket, oldStatus, "")
	return ticket, nil
}

// AddNote appends a free-text note. Allowed for any authenticated actor at
// any status; does not change status.
func (s *TicketService) AddNote(ctx context.Context, actor domain.Actor, ticketID, text string) (*domain.Ticket, error) {
	if !actor.Role.IsValid() {
		return nil, apperrors.NewPermissionDenied("unknown role")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("note text required", map[string]any{"missing": []string{"text"}})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Notes = append(ticket.Notes, text)
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventNoteAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload:  events.NoteAddedPayload{NotePreview: stringPreview(text, 120)},
	})
	return ticket, nil
}

// OverrideStatus is the administrative escape hatch: it bypasses the
// transition table, so it is restricted to supervisors, requires a reason and
// leaves an audit note on the ticket.
func (s *TicketService) OverrideStatus(ctx context.Context, actor domain.Actor, ticketID string, status domain.TicketStatus, reason string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("override reason required", map[string]any{"missing": []string{"reason"}})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	ticket.Status = status
	ticket.Notes = append(ticket.Notes, "status override by "+actor.Email+": "+string(oldStatus)+" -> "+string(status)+" ("+reason+")")
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.EventStatusOverridden, actor, ticket, oldStatus, reason)
	return ticket, nil
}

// GetByID fetches a single ticket snapshot.
func (s *TicketService) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// ListByDate returns tickets created in [from, to].
func (s *TicketService) ListByDate(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{CreatedFrom: &from, CreatedTo: &to})
}

// ListByVendor returns tickets assigned to the given vendor email.
func (s *TicketService) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssignedVendor: &vendorEmail})
}

// ListByBus returns tickets whose bus snapshot carries the given bus number.
func (s *TicketService) ListByBus(ctx context.Context, busNumber string) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{BusNumber: &busNumber})
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

func (s *TicketService) save(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
		default:
			return apperrors.NewInternalError(err)
		}
	}
	return nil
}

func (s *TicketService) publishLifecycle(ctx context.Context, eventType events.EventType, actor domain.Actor, ticket *domain.Ticket, oldStatus domain.TicketStatus, reason string) {
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload:  lifecyclePayload(ticket, oldStatus, reason),
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireRole(actor domain.Actor, allowed ...domain.Role) error {
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return apperrors.NewPermissionDenied("operation not allowed for role " + string(actor.Role))
}

func requireStatus(ticket *domain.Ticket, allowed ...domain.TicketStatus) error {
	for _, status := range allowed {
		if ticket.Status == status {
			return nil
		}
	}
	return apperrors.NewInvalidStateTransition("operation not allowed from status "+string(ticket.Status), map[string]any{
		"ticket_id": ticket.ID,
		"status":    string(ticket.Status),
	})
}

// requireQuotation guards the quotation review paths: a status override can
// leave a ticket in quoted without a document attached.
func requireQuotation(ticket *domain.Ticket) error {
	if ticket.Quotation == nil {
		return apperrors.NewInvalidStateTransition("ticket has no quotation to review", map[string]any{
			"ticket_id": ticket.ID,
			"status":    string(ticket.Status),
		})
	}
	return nil
}

func requireAssignedVendor(ticket *domain.Ticket, actor domain.Actor) error {
	if !strings.EqualFold(ticket.AssignedVendor, actor.Email) {
		return apperrors.NewPermissionDenied("ticket is assigned to a different vendor")
	}
	return nil
}

func attachInvoice(ticket *domain.Ticket, input InvoiceInput) {
	ticket.Invoice = &domain.Invoice{
		ID:          uuid.NewString(),
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   time.Now(),
	}
	amount := input.Amount
	ticket.FinalCost = &amount
}

func lifecyclePayload(ticket *domain.Ticket, oldStatus domain.TicketStatus, reason string) events.TicketLifecyclePayload {
	return events.TicketLifecyclePayload{
		OldStatus:      oldStatus,
		NewStatus:      ticket.Status,
		CreatedBy:      ticket.CreatedBy,
		AssignedVendor: ticket.AssignedVendor,
		Reason:         reason,
	}
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{ID: actor.ID, Email: actor.Email, Role: actor.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
