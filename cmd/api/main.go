package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/zain-0/bus-track-ticket/internal/api/http"
	"github.com/zain-0/bus-track-ticket/internal/api/http/handlers"
	"github.com/zain-0/bus-track-ticket/internal/auth"
	"github.com/zain-0/bus-track-ticket/internal/config"
	"github.com/zain-0/bus-track-ticket/internal/events"
	"github.com/zain-0/bus-track-ticket/internal/observability"
	"github.com/zain-0/bus-track-ticket/internal/persistence"
	"github.com/zain-0/bus-track-ticket/internal/repository"
	"github.com/zain-0/bus-track-ticket/internal/service"
	"github.com/zain-0/bus-track-ticket/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo repository.TicketRepository
		presetRepo repository.BusPresetRepository
		vendorRepo repository.VendorRepository
		userRepo   repository.UserRepository
	)
	if pool != nil {
		ticketRepo = repository.NewPostgresTicketRepository(pool)
		presetRepo = repository.NewPostgresBusPresetRepository(pool)
		vendorRepo = repository.NewPostgresVendorRepository(pool)
		userRepo = repository.NewPostgresUserRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		presetRepo = repository.NewMemoryBusPresetRepository()
		vendorRepo = repository.NewMemoryVendorRepository()
		userRepo = repository.NewMemoryUserRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		PresetRepo: presetRepo,
		VendorRepo: vendorRepo,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(presetRepo, vendorRepo)
	reportingService := service.NewReportingService(
		ticketService,
		redis.ClientHandle(),
		cfg.Reports.DashboardCacheTTL(),
		logger,
	)
	authService := service.NewAuthService(*cfg, userRepo)

	notificationService := service.NewNotificationService(dispatcher, service.NewLogNotifier(logger), logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Reports:        handlers.NewReportsHandler(reportingService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
