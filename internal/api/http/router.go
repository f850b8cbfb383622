package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/atm-maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	Maintenance    *handlers.MaintenanceHandler
	SLAs           *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Accounts.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/auth/password/change", cfg.Accounts.ChangePassword)

	supervisors := auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin)

	technicians := protected.Group("/technicians")
	technicians.Post("", supervisors, cfg.Accounts.CreateTechnician)
	technicians.Get("", cfg.Accounts.ListTechnicians)
	technicians.Get("/:id/maintenance", cfg.Maintenance.ListByTechnician)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/overdue", cfg.Tickets.ListOverdue)
	tickets.Get("/attention", cfg.Tickets.ListRequiringAttention)
	tickets.Get("/key/:key", cfg.Tickets.GetTicketByKey)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Post("/:id/assign", supervisors, cfg.Tickets.Assign)
	tickets.Delete("/:id", supervisors, cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Get("/:id/maintenance", cfg.Maintenance.ListByTicket)
	tickets.Get("/:id/maintenance/active", cfg.Maintenance.GetActiveByTicket)

	maintenance := protected.Group("/maintenance")
	maintenance.Post("", cfg.Maintenance.Start)
	maintenance.Get("/:id", cfg.Maintenance.Get)
	maintenance.Post("/:id/complete", cfg.Maintenance.Complete)
	maintenance.Post("/:id/parts", cfg.Maintenance.AddParts)
	maintenance.Put("/:id/measurements", cfg.Maintenance.UpdateMeasurements)
	maintenance.Post("/:id/follow-up", cfg.Maintenance.SetFollowUp)
	maintenance.Delete("/:id", supervisors, cfg.Maintenance.Delete)

	slas := protected.Group("/slas")
	slas.Post("", supervisors, cfg.SLAs.Create)
	slas.Get("/:id", cfg.SLAs.Get)
	slas.Put("/:id", supervisors, cfg.SLAs.Update)
	slas.Delete("/:id", supervisors, cfg.SLAs.Delete)
	slas.Get("/:id/compliance", cfg.SLAs.Compliance)
	slas.Post("/:id/validate/:ticket_id", cfg.SLAs.Validate)

	protected.Get("/zones", cfg.Tickets.ListZones)
	protected.Get("/zones/:id/slas", cfg.SLAs.ListByZone)
	protected.Get("/zones/:id/atms", cfg.Tickets.ListZoneATMs)
}
