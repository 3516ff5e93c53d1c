package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zain-0/bus-track-ticket/internal/api/dto"
	"github.com/zain-0/bus-track-ticket/internal/auth"
	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/service"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// TicketsHandler exposes the lifecycle operation contract over HTTP.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), actor, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List handles GET /tickets, returning the actor's relevant tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.RelevantTickets(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// ListByDate handles GET /tickets/by-date?from=...&to=...
func (h *TicketsHandler) ListByDate(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListByDate(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// ListByVendor handles GET /tickets/by-vendor/:email.
func (h *TicketsHandler) ListByVendor(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	tickets, err := h.tickets.ListByVendor(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// ListByBus handles GET /tickets/by-bus/:busNumber.
func (h *TicketsHandler) ListByBus(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	tickets, err := h.tickets.ListByBus(c.UserContext(), c.Params("busNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	ticket, err := h.tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Approve handles POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.tickets.Approve)
}

// Reject handles POST /tickets/:id/reject.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.Reject(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Acknowledge handles POST /tickets/:id/acknowledge.
func (h *TicketsHandler) Acknowledge(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.tickets.Acknowledge)
}

// SubmitQuotation handles POST /tickets/:id/quotation.
func (h *TicketsHandler) SubmitQuotation(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.QuotationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.SubmitQuotation(c.UserContext(), actor, c.Params("id"), service.QuotationInput{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ApproveQuotation handles POST /tickets/:id/quotation/approve.
func (h *TicketsHandler) ApproveQuotation(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.tickets.ApproveQuotation)
}

// RejectQuotation handles POST /tickets/:id/quotation/reject.
func (h *TicketsHandler) RejectQuotation(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.RejectQuotation(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// StartService handles POST /tickets/:id/start-service.
func (h *TicketsHandler) StartService(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.tickets.StartService)
}

// SubmitInvoice handles POST /tickets/:id/invoice.
func (h *TicketsHandler) SubmitInvoice(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.SubmitInvoice(c.UserContext(), actor, c.Params("id"), service.InvoiceInput{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// RequestRepair handles POST /tickets/:id/repairs.
func (h *TicketsHandler) RequestRepair(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.RepairRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.RequestRepair(c.UserContext(), actor, c.Params("id"), service.RepairInput{
		Description:   req.Description,
		EstimatedCost: req.EstimatedCost,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// RequestRepairWithInvoice handles POST /tickets/:id/repairs/with-invoice.
func (h *TicketsHandler) RequestRepairWithInvoice(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.RepairWithInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.RequestRepairWithInvoice(c.UserContext(), actor, c.Params("id"),
		service.RepairInput{
			Description:   req.Repair.Description,
			EstimatedCost: req.Repair.EstimatedCost,
		},
		service.InvoiceInput{
			Amount:      req.Invoice.Amount,
			Description: req.Invoice.Description,
		},
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ApproveRepair handles POST /tickets/:id/repairs/:repairId/approve.
func (h *TicketsHandler) ApproveRepair(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	result, err := h.tickets.ApproveRepair(c.UserContext(), actor, c.Params("id"), c.Params("repairId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RepairApprovalResponse{
		Updated: dto.FromTicket(result.Updated),
		Spawned: dto.FromTicket(result.Spawned),
	}})
}

// Complete handles POST /tickets/:id/complete.
func (h *TicketsHandler) Complete(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.tickets.Complete)
}

// AddNote handles POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.AddNote(c.UserContext(), actor, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// OverrideStatus handles POST /tickets/:id/status-override.
func (h *TicketsHandler) OverrideStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.OverrideStatus(c.UserContext(), actor, c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

type transitionFn func(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error)

func (h *TicketsHandler) simpleTransition(c *fiber.Ctx, fn transitionFn) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, err := fn(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

func parseDateQuery(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(key+" query parameter required", map[string]any{"missing": []string{key}})
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// accept bare dates too
		parsed, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, apperrors.NewValidationError("invalid "+key+" date", map[string]any{key: raw})
		}
	}
	return parsed, nil
}
