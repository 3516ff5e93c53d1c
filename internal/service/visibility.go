package service

import (
	"context"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/repository"
)

// VendorVisibleStatuses are the states a vendor may see its assigned tickets
// in. Tickets still pending approval (or rejected) stay hidden from vendors.
var VendorVisibleStatuses = []domain.TicketStatus{
	domain.TicketStatusApproved,
	domain.TicketStatusAcknowledged,
	domain.TicketStatusQuoted,
	domain.TicketStatusQuoteApproved,
	domain.TicketStatusQuoteRejected,
	domain.TicketStatusUnderService,
	domain.TicketStatusCompleted,
	domain.TicketStatusInvoiced,
	domain.TicketStatusRepairRequested,
}

// PurchaseVisibleStatuses are the states the purchase role tracks.
var PurchaseVisibleStatuses = []domain.TicketStatus{
	domain.TicketStatusInvoiced,
	domain.TicketStatusCompleted,
}

// RelevantTickets is the single read-authorization boundary: every "my
// tickets" or dashboard view goes through this filter.
//   - vendor: assigned tickets in vendor-visible states
//   - creator: own tickets, all states
//   - supervisor: everything
//   - purchase: invoiced and completed tickets
//   - anything else: nothing
func (s *TicketService) RelevantTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	filter, visible := relevantFilter(actor)
	if !visible {
		return []domain.Ticket{}, nil
	}
	return s.tickets.ListWithFilter(ctx, filter)
}

func relevantFilter(actor domain.Actor) (repository.TicketFilter, bool) {
	switch actor.Role {
	case domain.RoleVendor:
		email := actor.Email
		return repository.TicketFilter{
			AssignedVendor: &email,
			Statuses:       VendorVisibleStatuses,
		}, true
	case domain.RoleCreator:
		email := actor.Email
		return repository.TicketFilter{CreatedBy: &email}, true
	case domain.RoleSupervisor:
		return repository.TicketFilter{}, true
	case domain.RolePurchase:
		return repository.TicketFilter{Statuses: PurchaseVisibleStatuses}, true
	default:
		return repository.TicketFilter{}, false
	}
}
