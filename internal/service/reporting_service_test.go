package service

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

func newReportingEnv(t *testing.T) (*testEnv, *ReportingService) {
	t.Helper()
	env := newTestEnv(t)
	reports := NewReportingService(env.svc, nil, 0, zap.NewNop())
	return env, reports
}

func seedCosted(t *testing.T, env *testEnv, status domain.TicketStatus, bus string, serviceType domain.ServiceType, cost float64) {
	t.Helper()
	env.seedTicket(t, status, func(tk *domain.Ticket) {
		tk.Bus.BusNumber = bus
		tk.ServiceType = serviceType
		tk.FinalCost = &cost
	})
}

func TestSpendSummary(t *testing.T) {
	env, reports := newReportingEnv(t)
	ctx := context.Background()

	seedCosted(t, env, domain.TicketStatusCompleted, "BUS-1", domain.ServiceTypeMinor, 100)
	seedCosted(t, env, domain.TicketStatusInvoiced, "BUS-1", domain.ServiceTypeRepair, 250)
	seedCosted(t, env, domain.TicketStatusCompleted, "BUS-2", domain.ServiceTypeRepair, 400)
	// pending tickets are outside the financial view even when costed
	seedCosted(t, env, domain.TicketStatusPending, "BUS-3", domain.ServiceTypeMinor, 999)
	// costless invoiced tickets do not count
	env.seedTicket(t, domain.TicketStatusInvoiced)

	summary, err := reports.Spend(ctx, purchaser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if summary.TicketCount != 3 {
		t.Fatalf("ticketCount = %d, want 3", summary.TicketCount)
	}
	if summary.TotalSpent != 750 {
		t.Fatalf("totalSpent = %v, want 750", summary.TotalSpent)
	}
	if math.Abs(summary.AverageSpent-250) > 1e-9 {
		t.Fatalf("averageSpent = %v, want 250", summary.AverageSpent)
	}
}

func TestSpendDateWindow(t *testing.T) {
	env, reports := newReportingEnv(t)
	ctx := context.Background()

	seedCosted(t, env, domain.TicketStatusCompleted, "BUS-1", domain.ServiceTypeMinor, 100)

	future := time.Now().Add(24 * time.Hour)
	summary, err := reports.Spend(ctx, supervisor, future, future.Add(time.Hour))
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if summary.TicketCount != 0 || summary.TotalSpent != 0 || summary.AverageSpent != 0 {
		t.Fatalf("summary = %#v, want empty window", summary)
	}
}

func TestCostGrouping(t *testing.T) {
	env, reports := newReportingEnv(t)
	ctx := context.Background()

	seedCosted(t, env, domain.TicketStatusCompleted, "BUS-1", domain.ServiceTypeMinor, 100)
	seedCosted(t, env, domain.TicketStatusInvoiced, "BUS-1", domain.ServiceTypeRepair, 250)
	seedCosted(t, env, domain.TicketStatusCompleted, "BUS-2", domain.ServiceTypeRepair, 400)

	byBus, err := reports.CostsByBus(ctx, purchaser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("costs by bus: %v", err)
	}
	wantBuckets(t, byBus, map[string][2]float64{
		"BUS-1": {2, 350},
		"BUS-2": {1, 400},
	})

	byType, err := reports.CostsByServiceType(ctx, purchaser, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("costs by service type: %v", err)
	}
	wantBuckets(t, byType, map[string][2]float64{
		"minor":  {1, 100},
		"repair": {2, 650},
	})
}

func TestFinancialReportsGatedByRole(t *testing.T) {
	_, reports := newReportingEnv(t)
	ctx := context.Background()

	for _, actor := range []domain.Actor{creator, vendor} {
		_, err := reports.Spend(ctx, actor, time.Time{}, time.Time{})
		assertCode(t, err, "PERMISSION_DENIED")
		_, err = reports.CostsByBus(ctx, actor, time.Time{}, time.Time{})
		assertCode(t, err, "PERMISSION_DENIED")
	}
}

func TestDashboardCounts(t *testing.T) {
	env, reports := newReportingEnv(t)
	ctx := context.Background()

	env.seedTicket(t, domain.TicketStatusPending)
	env.seedTicket(t, domain.TicketStatusPending)
	env.seedTicket(t, domain.TicketStatusApproved)
	env.seedTicket(t, domain.TicketStatusCompleted)

	counts, err := reports.Dashboard(ctx, supervisor)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if counts.Total != 4 {
		t.Fatalf("total = %d, want 4", counts.Total)
	}
	if counts.ByStatus[domain.TicketStatusPending] != 2 {
		t.Fatalf("pending = %d, want 2", counts.ByStatus[domain.TicketStatusPending])
	}

	// vendor dashboard honors the visibility rules
	vendorCounts, err := reports.Dashboard(ctx, vendor)
	if err != nil {
		t.Fatalf("vendor dashboard: %v", err)
	}
	if vendorCounts.Total != 2 {
		t.Fatalf("vendor total = %d, want 2", vendorCounts.Total)
	}
	if vendorCounts.ByStatus[domain.TicketStatusPending] != 0 {
		t.Fatal("pending tickets leaked into vendor dashboard")
	}
}

func wantBuckets(t *testing.T, buckets []CostBucket, want map[string][2]float64) {
	t.Helper()
	if len(buckets) != len(want) {
		t.Fatalf("buckets = %#v, want %d entries", buckets, len(want))
	}
	for _, bucket := range buckets {
		expected, ok := want[bucket.Key]
		if !ok {
			t.Fatalf("unexpected bucket %q", bucket.Key)
		}
		if bucket.Count != int(expected[0]) || bucket.Total != expected[1] {
			t.Fatalf("bucket %q = {count %d total %v}, want {%v %v}", bucket.Key, bucket.Count, bucket.Total, expected[0], expected[1])
		}
	}
}
