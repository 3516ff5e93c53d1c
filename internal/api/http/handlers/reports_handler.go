package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/service"
)

// ReportsHandler serves cost and dashboard aggregations.
type ReportsHandler struct {
	reports *service.ReportingService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportingService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	counts, err := h.reports.Dashboard(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// Spend handles GET /reports/spend?from=...&to=...
func (h *ReportsHandler) Spend(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
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
	summary, err := h.reports.Spend(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// CostsByBus handles GET /reports/costs-by-bus?from=...&to=...
func (h *ReportsHandler) CostsByBus(c *fiber.Ctx) error {
	return h.costReport(c, h.reports.CostsByBus)
}

// CostsByServiceType handles GET /reports/costs-by-service-type?from=...&to=...
func (h *ReportsHandler) CostsByServiceType(c *fiber.Ctx) error {
	return h.costReport(c, h.reports.CostsByServiceType)
}

func (h *ReportsHandler) costReport(c *fiber.Ctx, fn func(ctx context.Context, actor domain.Actor, from, to time.Time) ([]service.CostBucket, error)) error {
	actor, err := requireActor(c)
	if err != nil {
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
	buckets, err := fn(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": buckets})
}
