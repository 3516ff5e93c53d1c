package domain

import (
	"testing"
	"time"
)

func TestTicketCloneIsDeep(t *testing.T) {
	now := time.Now()
	cost := 500.0
	original := &Ticket{
		ID:             "t1",
		Title:          "Engine overhaul",
		Status:         TicketStatusQuoted,
		ServiceType:    ServiceTypeRepair,
		RepairCategory: RepairCategoryEngine,
		AssignedVendor: "service@volvocare.test",
		Bus:            BusDetails{BusNumber: "BUS-1"},
		Quotation: &Quotation{
			VendorEmail: "service@volvocare.test",
			Amount:      500,
			Status:      QuotationStatusPending,
			CreatedAt:   now,
		},
		Invoice: &Invoice{ID: "inv-1", Amount: 500, CreatedAt: now},
		RepairRequests: []RepairRequest{
			{ID: "r1", Description: "radiator", ApprovedAt: &now},
		},
		Notes:       []string{"first"},
		FinalCost:   &cost,
		ApprovedAt:  &now,
		CompletedAt: &now,
		Version:     3,
	}

	clone := original.Clone()

	clone.Quotation.Amount = 999
	clone.Invoice.Amount = 999
	clone.RepairRequests[0].Description = "changed"
	*clone.RepairRequests[0].ApprovedAt = now.Add(time.Hour)
	clone.Notes[0] = "changed"
	*clone.FinalCost = 999
	*clone.ApprovedAt = now.Add(time.Hour)

	if original.Quotation.Amount != 500 {
		t.Fatal("quotation shared between clone and original")
	}
	if original.Invoice.Amount != 500 {
		t.Fatal("invoice shared between clone and original")
	}
	if original.RepairRequests[0].Description != "radiator" {
		t.Fatal("repair requests shared between clone and original")
	}
	if !original.RepairRequests[0].ApprovedAt.Equal(now) {
		t.Fatal("repair timestamp shared between clone and original")
	}
	if original.Notes[0] != "first" {
		t.Fatal("notes shared between clone and original")
	}
	if *original.FinalCost != 500 {
		t.Fatal("final cost shared between clone and original")
	}
	if !original.ApprovedAt.Equal(now) {
		t.Fatal("approval timestamp shared between clone and original")
	}
	if clone.Version != 3 || clone.ID != "t1" {
		t.Fatalf("clone lost scalar fields: %#v", clone)
	}
}

func TestTicketCloneNil(t *testing.T) {
	var ticket *Ticket
	if ticket.Clone() != nil {
		t.Fatal("nil clone should be nil")
	}
}

func TestRepairRequestByID(t *testing.T) {
	ticket := &Ticket{RepairRequests: []RepairRequest{{ID: "a"}, {ID: "b"}}}
	if got := ticket.RepairRequestByID("b"); got == nil || got.ID != "b" {
		t.Fatalf("got %#v", got)
	}
	if ticket.RepairRequestByID("c") != nil {
		t.Fatal("found a repair that does not exist")
	}
	// the returned pointer aliases the slice entry so callers can mutate it
	ticket.RepairRequestByID("a").Approved = true
	if !ticket.RepairRequests[0].Approved {
		t.Fatal("returned repair is a copy")
	}
}

func TestStatusAndRoleValidity(t *testing.T) {
	for _, status := range AllTicketStatuses {
		if !status.IsValid() {
			t.Fatalf("%s should be valid", status)
		}
	}
	if TicketStatus("archived").IsValid() {
		t.Fatal("unknown status accepted")
	}

	for _, role := range []Role{RoleCreator, RoleSupervisor, RoleVendor, RolePurchase} {
		if !role.IsValid() {
			t.Fatalf("%s should be valid", role)
		}
	}
	if Role("janitor").IsValid() {
		t.Fatal("unknown role accepted")
	}
}

func TestRequiresManualVendor(t *testing.T) {
	cases := map[RepairCategory]bool{
		RepairCategoryBatteryReplacement: true,
		RepairCategoryTyreReplacement:    true,
		RepairCategoryEngine:             false,
		RepairCategoryElectrical:         false,
		RepairCategory(""):               false,
	}
	for category, want := range cases {
		if got := category.RequiresManualVendor(); got != want {
			t.Fatalf("%q.RequiresManualVendor() = %v, want %v", category, got, want)
		}
	}
}
