package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/zain-0/bus-track-ticket/internal/api/dto"
	"github.com/zain-0/bus-track-ticket/internal/service"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// CatalogHandler manages bus presets and the vendor directory.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// AddBusPreset handles POST /buses.
func (h *CatalogHandler) AddBusPreset(c *fiber.Ctx) error {
	var req dto.AddBusPresetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	preset := req.Preset()
	if err := h.catalog.AddBusPreset(c.UserContext(), preset); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": preset})
}

// ListBusPresets handles GET /buses.
func (h *CatalogHandler) ListBusPresets(c *fiber.Ctx) error {
	presets, err := h.catalog.ListBusPresets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": presets})
}

// AddVendor handles POST /vendors.
func (h *CatalogHandler) AddVendor(c *fiber.Ctx) error {
	var req dto.AddVendorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	vendor := req.Vendor()
	if err := h.catalog.AddVendor(c.UserContext(), vendor); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromVendor(vendor)})
}

// ListVendors handles GET /vendors.
func (h *CatalogHandler) ListVendors(c *fiber.Ctx) error {
	vendors, err := h.catalog.ListVendors(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.VendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, dto.FromVendor(&vendors[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}
