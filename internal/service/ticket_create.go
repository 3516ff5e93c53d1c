package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/events"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// TicketCreateInput describes ticket creation payload. The bus can come from
// a preset (BusNumber) with optional manual overrides, or be fully manual.
type TicketCreateInput struct {
	Title          string
	Description    string
	ServiceType    domain.ServiceType
	Priority       domain.TicketPriority
	RepairCategory domain.RepairCategory
	BusNumber      string
	Bus            *domain.BusDetails
	Issue          string
	AssignedVendor string
	EstimatedCost  *float64
}

// Create validates input per the service-type rules and persists a new ticket
// in pending status. No partial ticket is stored on validation failure.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleCreator, domain.RoleSupervisor); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Issue = strings.TrimSpace(input.Issue)
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}

	bus, err := s.resolveBus(ctx, input)
	if err != nil {
		return nil, err
	}

	// minor/major get templated description and issue when left empty.
	if input.ServiceType == domain.ServiceTypeMinor || input.ServiceType == domain.ServiceTypeMajor {
		template := fmt.Sprintf("%s service for bus %s", input.ServiceType, bus.BusNumber)
		if input.Description == "" {
			input.Description = template
		}
		if input.Issue == "" {
			input.Issue = template
		}
	}

	missing := []string{}
	if input.Title == "" {
		missing = append(missing, "title")
	}
	switch input.ServiceType {
	case domain.ServiceTypeMinor, domain.ServiceTypeMajor:
	case domain.ServiceTypeRepair:
		if input.RepairCategory == "" {
			missing = append(missing, "repairCategory")
		}
		if input.Description == "" {
			missing = append(missing, "description")
		}
		if input.Issue == "" {
			missing = append(missing, "issue")
		}
	case domain.ServiceTypeOther:
		if input.Description == "" {
			missing = append(missing, "description")
		}
		if input.Issue == "" {
			missing = append(missing, "issue")
		}
	default:
		missing = append(missing, "serviceType")
	}
	if bus.BusNumber == "" {
		missing = append(missing, "busNumber")
	}

	vendorEmail, vendorMissing, err := s.resolveVendor(ctx, input, bus.Manufacturer)
	if err != nil {
		return nil, err
	}
	missing = append(missing, vendorMissing...)

	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"missing": missing})
	}

	bus.Issue = input.Issue
	ticket := &domain.Ticket{
		Title:          input.Title,
		Description:    input.Description,
		Status:         domain.TicketStatusPending,
		ServiceType:    input.ServiceType,
		Priority:       input.Priority,
		RepairCategory: input.RepairCategory,
		CreatedBy:      actor.Email,
		AssignedVendor: vendorEmail,
		Bus:            bus,
		EstimatedCost:  input.EstimatedCost,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Title:          ticket.Title,
			ServiceType:    ticket.ServiceType,
			Priority:       ticket.Priority,
			BusNumber:      ticket.Bus.BusNumber,
			CreatedBy:      ticket.CreatedBy,
			AssignedVendor: ticket.AssignedVendor,
		},
	})
	return ticket, nil
}

// resolveBus builds the BusDetails snapshot: preset fields first, then any
// manual overrides from the input.
func (s *TicketService) resolveBus(ctx context.Context, input TicketCreateInput) (domain.BusDetails, error) {
	var bus domain.BusDetails
	if input.BusNumber != "" {
		preset, err := s.presets.GetByBusNumber(ctx, input.BusNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return bus, apperrors.NewNotFound("bus preset", map[string]any{"bus_number": input.BusNumber})
			}
			return bus, apperrors.NewInternalError(err)
		}
		bus = preset.Details()
	}
	if input.Bus != nil {
		overlayBus(&bus, *input.Bus)
	}
	return bus, nil
}

func overlayBus(bus *domain.BusDetails, manual domain.BusDetails) {
	if manual.BusNumber != "" {
		bus.BusNumber = manual.BusNumber
	}
	if manual.FleetNumber != "" {
		bus.FleetNumber = manual.FleetNumber
	}
	if manual.ChassisNumber != "" {
		bus.ChassisNumber = manual.ChassisNumber
	}
	if manual.RegistrationNumber != "" {
		bus.RegistrationNumber = manual.RegistrationNumber
	}
	if manual.Route != "" {
		bus.Route = manual.Route
	}
	if manual.Model != "" {
		bus.Model = manual.Model
	}
	if manual.Manufacturer != "" {
		bus.Manufacturer = manual.Manufacturer
	}
	if manual.Year != "" {
		bus.Year = manual.Year
	}
	if manual.EngineServiceInterval != 0 {
		bus.EngineServiceInterval = manual.EngineServiceInterval
	}
	if manual.TyreServiceInterval != 0 {
		bus.TyreServiceInterval = manual.TyreServiceInterval
	}
	if manual.ACServiceInterval != 0 {
		bus.ACServiceInterval = manual.ACServiceInterval
	}
	if manual.TransmissionServiceInterval != 0 {
		bus.TransmissionServiceInterval = manual.TransmissionServiceInterval
	}
	if manual.BrakePadServiceInterval != 0 {
		bus.BrakePadServiceInterval = manual.BrakePadServiceInterval
	}
}

// resolveVendor applies the assignment policy: battery and tyre replacements
// need an explicit vendor; everything else is auto-matched on the bus
// manufacturer, falling back to the caller's choice. An empty result is a
// validation failure either way.
func (s *TicketService) resolveVendor(ctx context.Context, input TicketCreateInput, manufacturer string) (string, []string, error) {
	if input.ServiceType == domain.ServiceTypeRepair && input.RepairCategory.RequiresManualVendor() {
		if input.AssignedVendor == "" {
			return "", []string{"assignedVendor"}, nil
		}
		return input.AssignedVendor, nil, nil
	}
	if manufacturer != "" {
		catalog, err := s.vendors.List(ctx)
		if err != nil {
			return "", nil, apperrors.NewInternalError(err)
		}
		if match := SelectVendor(manufacturer, catalog); match != nil {
			return match.Email, nil, nil
		}
	}
	// A ticket without a vendor could never be acknowledged.
	if input.AssignedVendor == "" {
		return "", []string{"assignedVendor"}, nil
	}
	return input.AssignedVendor, nil, nil
}
