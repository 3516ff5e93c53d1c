package dto

import (
	"time"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	ServiceType    domain.ServiceType    `json:"service_type"`
	Priority       domain.TicketPriority `json:"priority"`
	RepairCategory domain.RepairCategory `json:"repair_category,omitempty"`
	BusNumber      string                `json:"bus_number,omitempty"`
	Bus            *domain.BusDetails    `json:"bus,omitempty"`
	Issue          string                `json:"issue,omitempty"`
	AssignedVendor string                `json:"assigned_vendor,omitempty"`
	EstimatedCost  *float64              `json:"estimated_cost,omitempty"`
}

// Input converts the request into the service payload.
func (r CreateTicketRequest) Input() service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:          r.Title,
		Description:    r.Description,
		ServiceType:    r.ServiceType,
		Priority:       r.Priority,
		RepairCategory: r.RepairCategory,
		BusNumber:      r.BusNumber,
		Bus:            r.Bus,
		Issue:          r.Issue,
		AssignedVendor: r.AssignedVendor,
		EstimatedCost:  r.EstimatedCost,
	}
}

// ReasonRequest carries a rejection or override reason.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// QuotationRequest payload.
type QuotationRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// InvoiceRequest payload.
type InvoiceRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// RepairRequestPayload payload.
type RepairRequestPayload struct {
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// RepairWithInvoiceRequest combines a repair request and an invoice.
type RepairWithInvoiceRequest struct {
	Repair  RepairRequestPayload `json:"repair"`
	Invoice InvoiceRequest       `json:"invoice"`
}

// NoteRequest payload.
type NoteRequest struct {
	Text string `json:"text"`
}

// OverrideStatusRequest payload for the administrative escape hatch.
type OverrideStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason string              `json:"reason"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Status         domain.TicketStatus    `json:"status"`
	ServiceType    domain.ServiceType     `json:"service_type"`
	Priority       domain.TicketPriority  `json:"priority"`
	RepairCategory domain.RepairCategory  `json:"repair_category,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	AssignedVendor string                 `json:"assigned_vendor,omitempty"`
	Bus            domain.BusDetails      `json:"bus"`
	Quotation      *domain.Quotation      `json:"quotation,omitempty"`
	RepairRequests []domain.RepairRequest `json:"repair_requests,omitempty"`
	Invoice        *domain.Invoice        `json:"invoice,omitempty"`
	EstimatedCost  *float64               `json:"estimated_cost,omitempty"`
	FinalCost      *float64               `json:"final_cost,omitempty"`
	Notes          []string               `json:"notes,omitempty"`
	RejectedReason string                 `json:"rejected_reason,omitempty"`
	ApprovedBy     string                 `json:"approved_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	ApprovedAt     *time.Time             `json:"approved_at,omitempty"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty"`
	UnderServiceAt *time.Time             `json:"under_service_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Version        int64                  `json:"version"`
}

// FromTicket maps the domain aggregate to the response shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		ServiceType:    t.ServiceType,
		Priority:       t.Priority,
		RepairCategory: t.RepairCategory,
		CreatedBy:      t.CreatedBy,
		AssignedVendor: t.AssignedVendor,
		Bus:            t.Bus,
		Quotation:      t.Quotation,
		RepairRequests: t.RepairRequests,
		Invoice:        t.Invoice,
		EstimatedCost:  t.EstimatedCost,
		FinalCost:      t.FinalCost,
		Notes:          t.Notes,
		RejectedReason: t.RejectedReason,
		ApprovedBy:     t.ApprovedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ApprovedAt:     t.ApprovedAt,
		AcknowledgedAt: t.AcknowledgedAt,
		UnderServiceAt: t.UnderServiceAt,
		CompletedAt:    t.CompletedAt,
		Version:        t.Version,
	}
}

// FromTickets maps a ticket list.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, len(tickets))
	for i := range tickets {
		out[i] = FromTicket(&tickets[i])
	}
	return out
}

// RepairApprovalResponse returns the updated ticket beside the spawned one.
type RepairApprovalResponse struct {
	Updated TicketResponse `json:"updated"`
	Spawned TicketResponse `json:"spawned"`
}
