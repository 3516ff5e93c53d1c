package service

import (
	"context"
	"errors"
	"strings"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// SelectVendor picks the first vendor whose name contains the bus
// manufacturer, case-insensitive. Returns nil when nothing matches.
func SelectVendor(manufacturer string, catalog []domain.Vendor) *domain.Vendor {
	needle := strings.ToLower(strings.TrimSpace(manufacturer))
	if needle == "" {
		return nil
	}
	for i := range catalog {
		if strings.Contains(strings.ToLower(catalog[i].Name), needle) {
			return &catalog[i]
		}
	}
	return nil
}

// CatalogService manages the bus preset and vendor reference catalogs.
type CatalogService struct {
	presets repository.BusPresetRepository
	vendors repository.VendorRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(presets repository.BusPresetRepository, vendors repository.VendorRepository) *CatalogService {
	return &CatalogService{presets: presets, vendors: vendors}
}

// AddBusPreset appends a preset to the catalog; duplicate bus numbers are
// rejected and leave the catalog unchanged.
func (s *CatalogService) AddBusPreset(ctx context.Context, preset *domain.BusPreset) error {
	missing := []string{}
	if strings.TrimSpace(preset.BusNumber) == "" {
		missing = append(missing, "busNumber")
	}
	if strings.TrimSpace(preset.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(preset.Manufacturer) == "" {
		missing = append(missing, "manufacturer")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"missing": missing})
	}
	if err := s.presets.Add(ctx, preset); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return apperrors.NewDuplicateKey("bus number already exists", map[string]any{"bus_number": preset.BusNumber})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ListBusPresets returns the bus catalog.
func (s *CatalogService) ListBusPresets(ctx context.Context) ([]domain.BusPreset, error) {
	return s.presets.List(ctx)
}

// AddVendor registers a vendor; duplicate emails are rejected.
func (s *CatalogService) AddVendor(ctx context.Context, vendor *domain.Vendor) error {
	missing := []string{}
	if strings.TrimSpace(vendor.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(vendor.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"missing": missing})
	}
	vendor.Email = strings.ToLower(vendor.Email)
	if err := s.vendors.Add(ctx, vendor); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return apperrors.NewDuplicateKey("vendor email already exists", map[string]any{"email": vendor.Email})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ListVendors returns the vendor catalog.
func (s *CatalogService) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return s.vendors.List(ctx)
}
