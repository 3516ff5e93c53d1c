package repository

import (
	"context"
	"errors"
	"time"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// Sentinel errors shared by the memory and postgres implementations so the
// service layer stays storage-agnostic.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

// TicketFilter captures ticket listing parameters.
type TicketFilter struct {
	CreatedBy      *string
	AssignedVendor *string
	BusNumber      *string
	Statuses       []domain.TicketStatus
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// TicketRepository encapsulates ticket persistence. Update replaces the whole
// snapshot and rejects the write when the stored version differs from the one
// the caller read (ErrVersionConflict).
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// BusPresetRepository owns the append-only bus catalog keyed by bus number.
type BusPresetRepository interface {
	Add(ctx context.Context, preset *domain.BusPreset) error
	GetByBusNumber(ctx context.Context, busNumber string) (*domain.BusPreset, error)
	List(ctx context.Context) ([]domain.BusPreset, error)
}

// VendorRepository owns the vendor catalog keyed by email.
type VendorRepository interface {
	Add(ctx context.Context, vendor *domain.Vendor) error
	GetByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	List(ctx context.Context) ([]domain.Vendor, error)
}

// UserRepository stores login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// MatchesFilter reports whether a ticket satisfies the filter. The memory
// store and the visibility resolver share this predicate so "my tickets" is
// computed identically everywhere.
func MatchesFilter(t *domain.Ticket, filter TicketFilter) bool {
	if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
		return false
	}
	if filter.AssignedVendor != nil && t.AssignedVendor != *filter.AssignedVendor {
		return false
	}
	if filter.BusNumber != nil && t.Bus.BusNumber != *filter.BusNumber {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if t.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}
