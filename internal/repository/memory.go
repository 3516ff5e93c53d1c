package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// memoryTicketRepository keeps ticket snapshots in process memory. Reads and
// writes exchange deep clones, so callers can never reach into stored state,
// and Update does a compare-and-swap on Version.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryTicketRepository instantiates the in-memory ticket store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if _, exists := r.tickets[ticket.ID]; exists {
		return ErrDuplicateKey
	}
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	ticket.Version = 1
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.tickets[ticket.ID]
	if !exists {
		return ErrNotFound
	}
	if stored.Version != ticket.Version {
		return ErrVersionConflict
	}
	next := ticket.Clone()
	next.Version++
	next.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = next
	ticket.Version = next.Version
	ticket.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.tickets[id]
	if !exists {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{})
}

func (r *memoryTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if MatchesFilter(ticket, filter) {
			result = append(result, *ticket.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// memoryBusPresetRepository is the in-memory bus catalog.
type memoryBusPresetRepository struct {
	mu      sync.RWMutex
	presets map[string]domain.BusPreset
	order   []string
}

// NewMemoryBusPresetRepository instantiates the in-memory bus catalog.
func NewMemoryBusPresetRepository() BusPresetRepository {
	return &memoryBusPresetRepository{presets: make(map[string]domain.BusPreset)}
}

func (r *memoryBusPresetRepository) Add(ctx context.Context, preset *domain.BusPreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.presets[preset.BusNumber]; exists {
		return ErrDuplicateKey
	}
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now()
	}
	r.presets[preset.BusNumber] = *preset
	r.order = append(r.order, preset.BusNumber)
	return nil
}

func (r *memoryBusPresetRepository) GetByBusNumber(ctx context.Context, busNumber string) (*domain.BusPreset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	preset, exists := r.presets[busNumber]
	if !exists {
		return nil, ErrNotFound
	}
	return &preset, nil
}

func (r *memoryBusPresetRepository) List(ctx context.Context) ([]domain.BusPreset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.BusPreset, 0, len(r.order))
	for _, busNumber := range r.order {
		result = append(result, r.presets[busNumber])
	}
	return result, nil
}

// memoryVendorRepository is the in-memory vendor catalog.
type memoryVendorRepository struct {
	mu      sync.RWMutex
	vendors map[string]domain.Vendor
	order   []string
}

// NewMemoryVendorRepository instantiates the in-memory vendor catalog.
func NewMemoryVendorRepository() VendorRepository {
	return &memoryVendorRepository{vendors: make(map[string]domain.Vendor)}
}

func (r *memoryVendorRepository) Add(ctx context.Context, vendor *domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(vendor.Email)
	if _, exists := r.vendors[key]; exists {
		return ErrDuplicateKey
	}
	if vendor.ID == "" {
		vendor.ID = uuid.NewString()
	}
	if vendor.CreatedAt.IsZero() {
		vendor.CreatedAt = time.Now()
	}
	r.vendors[key] = *vendor
	r.order = append(r.order, key)
	return nil
}

func (r *memoryVendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vendor, exists := r.vendors[strings.ToLower(email)]
	if !exists {
		return nil, ErrNotFound
	}
	return &vendor, nil
}

func (r *memoryVendorRepository) List(ctx context.Context) ([]domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Vendor, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.vendors[key])
	}
	return result, nil
}

// memoryUserRepository is the in-memory account store.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository instantiates the in-memory account store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}
