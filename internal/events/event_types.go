package events

import (
	"time"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// EventType enumerates supported event identifiers, one per lifecycle
// transition plus the out-of-band note channel.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketApproved     EventType = "ticket_approved"
	EventTicketRejected     EventType = "ticket_rejected"
	EventTicketAcknowledged EventType = "ticket_acknowledged"
	EventQuotationSubmitted EventType = "quotation_submitted"
	EventQuotationApproved  EventType = "quotation_approved"
	EventQuotationRejected  EventType = "quotation_rejected"
	EventServiceStarted     EventType = "service_started"
	EventInvoiceSubmitted   EventType = "invoice_submitted"
	EventRepairRequested    EventType = "repair_requested"
	EventRepairApproved     EventType = "repair_approved"
	EventTicketCompleted    EventType = "ticket_completed"
	EventNoteAdded          EventType = "note_added"
	EventStatusOverridden   EventType = "status_overridden"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketLifecyclePayload carries the fields notification recipients are
// resolved from after a successful transition.
type TicketLifecyclePayload struct {
	OldStatus      domain.TicketStatus `json:"old_status"`
	NewStatus      domain.TicketStatus `json:"new_status"`
	CreatedBy      string              `json:"created_by"`
	AssignedVendor string              `json:"assigned_vendor,omitempty"`
	Reason         string              `json:"reason,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title          string                `json:"title"`
	ServiceType    domain.ServiceType    `json:"service_type"`
	Priority       domain.TicketPriority `json:"priority"`
	BusNumber      string                `json:"bus_number"`
	CreatedBy      string                `json:"created_by"`
	AssignedVendor string                `json:"assigned_vendor,omitempty"`
	SpawnedFrom    string                `json:"spawned_from,omitempty"`
}

// InvoiceSubmittedPayload payload.
type InvoiceSubmittedPayload struct {
	TicketLifecyclePayload
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
}

// RepairRequestedPayload payload.
type RepairRequestedPayload struct {
	TicketLifecyclePayload
	RepairID      string  `json:"repair_id"`
	EstimatedCost float64 `json:"estimated_cost"`
	WithInvoice   bool    `json:"with_invoice"`
}

// RepairApprovedPayload payload.
type RepairApprovedPayload struct {
	TicketLifecyclePayload
	RepairID        string `json:"repair_id"`
	SpawnedTicketID string `json:"spawned_ticket_id"`
}

// NoteAddedPayload payload.
type NoteAddedPayload struct {
	NotePreview string `json:"note_preview"`
}
