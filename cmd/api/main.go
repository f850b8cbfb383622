package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/atm-maintenance-service/internal/api/http"
	"github.com/spec-kit/atm-maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/config"
	"github.com/spec-kit/atm-maintenance-service/internal/events"
	"github.com/spec-kit/atm-maintenance-service/internal/observability"
	"github.com/spec-kit/atm-maintenance-service/internal/persistence"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	"github.com/spec-kit/atm-maintenance-service/internal/service"
	"github.com/spec-kit/atm-maintenance-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	atmRepo := repository.NewATMRepository(pool)
	zoneRepo := repository.NewZoneRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	reservations := persistence.NewTechnicianReservations(redis.Client, cfg.Redis.ReservationTTL())

	accountService := service.NewAccountService(*cfg, technicianRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		ATMRepo:        atmRepo,
		ZoneRepo:       zoneRepo,
		TechnicianRepo: technicianRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
	})
	maintenanceService := service.NewMaintenanceService(service.MaintenanceDependencies{
		MaintenanceRepo: maintenanceRepo,
		TicketRepo:      ticketRepo,
		TechnicianRepo:  technicianRepo,
		HistoryRepo:     historyRepo,
		Reservations:    reservations,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	slaService := service.NewSLAService(service.SLADependencies{
		SLARepo:    slaRepo,
		ZoneRepo:   zoneRepo,
		ClientRepo: clientRepo,
	})
	complianceService := service.NewComplianceService(service.ComplianceDependencies{
		SLARepo:         slaRepo,
		TicketRepo:      ticketRepo,
		MaintenanceRepo: maintenanceRepo,
		Dispatcher:      dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(accountService.TokenManager(), technicianRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Maintenance:    handlers.NewMaintenanceHandler(maintenanceService),
		SLAs:           handlers.NewSLAHandler(slaService, complianceService),
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
