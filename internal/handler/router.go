package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/middleware"
)

// Routes wires the handlers onto a gin engine
type Routes struct {
	Health  *HealthHandler
	Event   *EventHandler
	Booking *BookingHandler
	Review  *ReviewHandler
	Admin   *AdminHandler

	// Auth authenticates /api/v1. Required.
	Auth gin.HandlerFunc
	// Idempotency guards booking creation when set
	Idempotency gin.HandlerFunc
	// Metrics is served on MetricsPath when set
	Metrics     http.Handler
	MetricsPath string
}

// Register mounts every route on r
func (rt *Routes) Register(r *gin.Engine) {
	r.GET("/health", rt.Health.Health)
	r.GET("/ready", rt.Health.Ready)
	if rt.Metrics != nil {
		path := rt.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(rt.Metrics))
	}

	organizer := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	v1 := r.Group("/api/v1")
	v1.Use(rt.Auth)

	events := v1.Group("/events")
	{
		events.POST("", organizer, rt.Event.Create)
		events.GET("", rt.Event.List)
		events.GET("/:id", rt.Event.Get)
		events.PATCH("/:id", organizer, rt.Event.Update)
		events.GET("/:id/bookings", organizer, rt.Event.ListBookings)
		events.GET("/:id/reviews", rt.Event.ListReviews)
	}

	bookings := v1.Group("/bookings")
	{
		create := []gin.HandlerFunc{rt.Booking.Create}
		if rt.Idempotency != nil {
			create = append([]gin.HandlerFunc{rt.Idempotency}, create...)
		}
		bookings.POST("", create...)
		bookings.GET("", rt.Booking.ListMine)
		bookings.GET("/:id", rt.Booking.Get)
		bookings.PATCH("/:id/status", organizer, rt.Booking.UpdateStatus)
	}

	v1.POST("/tickets/verify", organizer, rt.Booking.VerifyTicket)

	reviews := v1.Group("/reviews")
	{
		reviews.POST("", rt.Review.Create)
		reviews.GET("/me", rt.Review.ListMine)
		reviews.GET("/eligibility/:eventId", rt.Review.Eligibility)
	}

	v1.GET("/organizer/dashboard", organizer, rt.Admin.OrganizerDashboard)

	admin := v1.Group("/admin", adminOnly)
	{
		admin.GET("/stats", rt.Admin.Stats)
		admin.PATCH("/events/:id/status", rt.Admin.ModerateEvent)
		admin.DELETE("/reviews/:id", rt.Admin.DeleteReview)
	}
}
