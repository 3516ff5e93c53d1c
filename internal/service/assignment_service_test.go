package service

import (
	"context"
	"testing"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/repository"
)

func TestSelectVendor(t *testing.T) {
	catalog := []domain.Vendor{
		{Name: "RoadGrip Tyres", Email: "tyres@roadgrip.test"},
		{Name: "Volvo Care Workshop", Email: "service@volvocare.test"},
		{Name: "Scania Service Hub", Email: "hub@scania.test"},
	}

	cases := []struct {
		name         string
		manufacturer string
		wantEmail    string
	}{
		{"exact word match", "Volvo", "service@volvocare.test"},
		{"case insensitive", "sCaNiA", "hub@scania.test"},
		{"first match wins", "o", "tyres@roadgrip.test"},
		{"no match", "Mercedes", ""},
		{"empty manufacturer", "", ""},
		{"whitespace manufacturer", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := SelectVendor(tc.manufacturer, catalog)
			if tc.wantEmail == "" {
				if match != nil {
					t.Fatalf("got %q, want no match", match.Email)
				}
				return
			}
			if match == nil || match.Email != tc.wantEmail {
				t.Fatalf("got %#v, want %q", match, tc.wantEmail)
			}
		})
	}
}

func TestCatalogServiceBusPresets(t *testing.T) {
	presets := repository.NewMemoryBusPresetRepository()
	vendors := repository.NewMemoryVendorRepository()
	svc := NewCatalogService(presets, vendors)
	ctx := context.Background()

	err := svc.AddBusPreset(ctx, &domain.BusPreset{BusNumber: "BUS-1"})
	assertCode(t, err, "VALIDATION_FAILED")

	preset := &domain.BusPreset{BusNumber: "BUS-1", Model: "9700", Manufacturer: "Volvo"}
	if err := svc.AddBusPreset(ctx, preset); err != nil {
		t.Fatalf("add preset: %v", err)
	}

	err = svc.AddBusPreset(ctx, &domain.BusPreset{BusNumber: "BUS-1", Model: "9900", Manufacturer: "Volvo"})
	assertCode(t, err, "DUPLICATE_KEY")

	list, err := svc.ListBusPresets(ctx)
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(list) != 1 || list[0].Model != "9700" {
		t.Fatalf("presets = %#v, want original preserved", list)
	}
}

func TestCatalogServiceVendors(t *testing.T) {
	presets := repository.NewMemoryBusPresetRepository()
	vendors := repository.NewMemoryVendorRepository()
	svc := NewCatalogService(presets, vendors)
	ctx := context.Background()

	err := svc.AddVendor(ctx, &domain.Vendor{Name: "No Email"})
	assertCode(t, err, "VALIDATION_FAILED")

	if err := svc.AddVendor(ctx, &domain.Vendor{Name: "Volvo Care", Email: "Service@VolvoCare.test"}); err != nil {
		t.Fatalf("add vendor: %v", err)
	}

	// emails are normalized, so a different casing is still a duplicate
	err = svc.AddVendor(ctx, &domain.Vendor{Name: "Volvo Care Again", Email: "service@volvocare.TEST"})
	assertCode(t, err, "DUPLICATE_KEY")

	list, err := svc.ListVendors(ctx)
	if err != nil {
		t.Fatalf("list vendors: %v", err)
	}
	if len(list) != 1 || list[0].Email != "service@volvocare.test" {
		t.Fatalf("vendors = %#v", list)
	}
}
