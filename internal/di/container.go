package di

import (
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/handler"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/pkg/logger"
)

// Container holds all dependencies for the booking core
type Container struct {
	// Repositories
	EventRepo   repository.EventRepository
	BookingRepo repository.BookingRepository
	ReviewRepo  repository.ReviewRepository

	// Services
	EventService     service.EventService
	BookingService   service.BookingService
	ReviewService    service.ReviewService
	DashboardService service.DashboardService

	// Handlers
	HealthHandler  *handler.HealthHandler
	EventHandler   *handler.EventHandler
	BookingHandler *handler.BookingHandler
	ReviewHandler  *handler.ReviewHandler
	AdminHandler   *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	EventRepo   repository.EventRepository
	BookingRepo repository.BookingRepository
	ReviewRepo  repository.ReviewRepository
	SeatLocker  repository.SeatLocker
	Notifier    service.Notifier
	Metrics     *metrics.Metrics
	Logger      *logger.Logger

	// HealthChecks are probed by /ready
	HealthChecks map[string]handler.HealthChecker

	EventConfig   *service.EventServiceConfig
	BookingConfig *service.BookingServiceConfig
	ReviewConfig  *service.ReviewServiceConfig
	Eligibility   domain.ReviewEligibility
}

// NewContainer creates a new dependency injection container.
// Missing repositories fall back to in-memory implementations.
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		EventRepo:   cfg.EventRepo,
		BookingRepo: cfg.BookingRepo,
		ReviewRepo:  cfg.ReviewRepo,
	}
	if c.EventRepo == nil {
		c.EventRepo = repository.NewMemoryEventRepository()
	}
	if c.BookingRepo == nil {
		c.BookingRepo = repository.NewMemoryBookingRepository()
	}
	if c.ReviewRepo == nil {
		c.ReviewRepo = repository.NewMemoryReviewRepository()
	}

	// Initialize services
	c.EventService = service.NewEventService(c.EventRepo, cfg.Notifier, cfg.Metrics, cfg.EventConfig)
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.EventRepo,
		cfg.SeatLocker,
		cfg.Notifier,
		cfg.Metrics,
		cfg.Logger,
		cfg.BookingConfig,
	)
	gate := service.NewCheckInGate(c.BookingRepo, cfg.Eligibility)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.EventRepo, gate, cfg.Metrics, cfg.ReviewConfig)
	c.DashboardService = service.NewDashboardService(c.EventRepo, c.BookingRepo, c.ReviewRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(cfg.HealthChecks)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.BookingService, c.ReviewService, cfg.Logger)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService, cfg.Logger)
	c.ReviewHandler = handler.NewReviewHandler(c.ReviewService, cfg.Logger)
	c.AdminHandler = handler.NewAdminHandler(c.DashboardService, c.EventService, c.ReviewService, cfg.Logger)

	return c
}

// Routes returns the route table for the container's handlers
func (c *Container) Routes() *handler.Routes {
	return &handler.Routes{
		Health:  c.HealthHandler,
		Event:   c.EventHandler,
		Booking: c.BookingHandler,
		Review:  c.ReviewHandler,
		Admin:   c.AdminHandler,
	}
}
