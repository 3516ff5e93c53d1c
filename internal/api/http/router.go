package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zain-0/bus-track-ticket/internal/api/http/handlers"
	"github.com/zain-0/bus-track-ticket/internal/auth"
	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Catalog        *handlers.CatalogHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role guards mirror the service layer
// gates so unauthorized calls fail before touching storage.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleCreator, domain.RoleSupervisor), cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/by-date", cfg.Tickets.ListByDate)
	tickets.Get("/by-vendor/:email", cfg.Tickets.ListByVendor)
	tickets.Get("/by-bus/:busNumber", cfg.Tickets.ListByBus)
	tickets.Get("/:id", cfg.Tickets.Get)

	tickets.Post("/:id/approve", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.Approve)
	tickets.Post("/:id/reject", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.Reject)
	tickets.Post("/:id/acknowledge", auth.RequireRole(domain.RoleVendor), cfg.Tickets.Acknowledge)
	tickets.Post("/:id/quotation", auth.RequireRole(domain.RoleVendor), cfg.Tickets.SubmitQuotation)
	tickets.Post("/:id/quotation/approve", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.ApproveQuotation)
	tickets.Post("/:id/quotation/reject", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.RejectQuotation)
	tickets.Post("/:id/start-service", auth.RequireRole(domain.RoleVendor), cfg.Tickets.StartService)
	tickets.Post("/:id/invoice", auth.RequireRole(domain.RoleVendor), cfg.Tickets.SubmitInvoice)
	tickets.Post("/:id/repairs", auth.RequireRole(domain.RoleVendor), cfg.Tickets.RequestRepair)
	tickets.Post("/:id/repairs/with-invoice", auth.RequireRole(domain.RoleVendor), cfg.Tickets.RequestRepairWithInvoice)
	tickets.Post("/:id/repairs/:repairId/approve", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.ApproveRepair)
	tickets.Post("/:id/complete", auth.RequireRole(domain.RoleSupervisor, domain.RoleVendor), cfg.Tickets.Complete)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)
	tickets.Post("/:id/status-override", auth.RequireRole(domain.RoleSupervisor), cfg.Tickets.OverrideStatus)

	buses := api.Group("/buses")
	buses.Post("", auth.RequireRole(domain.RoleSupervisor), cfg.Catalog.AddBusPreset)
	buses.Get("", cfg.Catalog.ListBusPresets)

	vendors := api.Group("/vendors")
	vendors.Post("", auth.RequireRole(domain.RoleSupervisor), cfg.Catalog.AddVendor)
	vendors.Get("", cfg.Catalog.ListVendors)

	reports := api.Group("/reports")
	reports.Get("/dashboard", cfg.Reports.Dashboard)

	financial := reports.Group("", auth.RequireRole(domain.RoleSupervisor, domain.RolePurchase))
	financial.Get("/spend", cfg.Reports.Spend)
	financial.Get("/costs-by-bus", cfg.Reports.CostsByBus)
	financial.Get("/costs-by-service-type", cfg.Reports.CostsByServiceType)
}
