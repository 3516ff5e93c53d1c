package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	apperrors "github.com/zain-0/bus-track-ticket/pkg/util"
)

// ReportingService aggregates ticket data for dashboards and the purchase
// role's spend views. Dashboard counts are cached in Redis briefly; the cache
// is a best-effort layer and all reads fall back to the ticket store.
type ReportingService struct {
	tickets  *TicketService
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportingService constructs the service. cache may be nil.
func NewReportingService(tickets *TicketService, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ReportingService {
	return &ReportingService{tickets: tickets, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// DashboardCounts is the per-status ticket count for an actor's view.
type DashboardCounts struct {
	Total    int                         `json:"total"`
	ByStatus map[domain.TicketStatus]int `json:"by_status"`
}

// SpendSummary aggregates final costs of invoiced and completed tickets.
type SpendSummary struct {
	TicketCount  int     `json:"ticket_count"`
	TotalSpent   float64 `json:"total_spent"`
	AverageSpent float64 `json:"average_spent"`
}

// CostBucket is a named cost aggregation entry.
type CostBucket struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Dashboard returns per-status counts over the actor's relevant tickets.
func (s *ReportingService) Dashboard(ctx context.Context, actor domain.Actor) (*DashboardCounts, error) {
	cacheKey := "dashboard:" + string(actor.Role) + ":" + actor.Email
	if cached := s.readCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	tickets, err := s.tickets.RelevantTickets(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts := &DashboardCounts{
		Total:    len(tickets),
		ByStatus: make(map[domain.TicketStatus]int),
	}
	for _, ticket := range tickets {
		counts.ByStatus[ticket.Status]++
	}

	s.writeCache(ctx, cacheKey, counts)
	return counts, nil
}

// Spend returns total and average spend between the given dates. Restricted
// to the purchase and supervisor roles.
func (s *ReportingService) Spend(ctx context.Context, actor domain.Actor, from, to time.Time) (*SpendSummary, error) {
	tickets, err := s.financialTickets(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	summary := &SpendSummary{}
	for _, ticket := range tickets {
		if ticket.FinalCost == nil {
			continue
		}
		summary.TicketCount++
		summary.TotalSpent += *ticket.FinalCost
	}
	if summary.TicketCount > 0 {
		summary.AverageSpent = summary.TotalSpent / float64(summary.TicketCount)
	}
	return summary, nil
}

// CostsByBus groups final costs by bus number.
func (s *ReportingService) CostsByBus(ctx context.Context, actor domain.Actor, from, to time.Time) ([]CostBucket, error) {
	return s.groupCosts(ctx, actor, from, to, func(t *domain.Ticket) string {
		return t.Bus.BusNumber
	})
}

// CostsByServiceType groups final costs by service type.
func (s *ReportingService) CostsByServiceType(ctx context.Context, actor domain.Actor, from, to time.Time) ([]CostBucket, error) {
	return s.groupCosts(ctx, actor, from, to, func(t *domain.Ticket) string {
		return string(t.ServiceType)
	})
}

func (s *ReportingService) groupCosts(ctx context.Context, actor domain.Actor, from, to time.Time, keyFn func(*domain.Ticket) string) ([]CostBucket, error) {
	tickets, err := s.financialTickets(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	buckets := []CostBucket{}
	for i := range tickets {
		if tickets[i].FinalCost == nil {
			continue
		}
		key := keyFn(&tickets[i])
		pos, seen := index[key]
		if !seen {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, CostBucket{Key: key})
		}
		buckets[pos].Count++
		buckets[pos].Total += *tickets[i].FinalCost
	}
	return buckets, nil
}

func (s *ReportingService) financialTickets(ctx context.Context, actor domain.Actor, from, to time.Time) ([]domain.Ticket, error) {
	if err := requireRole(actor, domain.RolePurchase, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	filter := repository.TicketFilter{Statuses: PurchaseVisibleStatuses}
	if !from.IsZero() {
		filter.CreatedFrom = &from
	}
	if !to.IsZero() {
		filter.CreatedTo = &to
	}
	tickets, err := s.tickets.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

func (s *ReportingService) readCache(ctx context.Context, key string) *DashboardCounts {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var counts DashboardCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil
	}
	return &counts
}

func (s *ReportingService) writeCache(ctx context.Context, key string, counts *DashboardCounts) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
