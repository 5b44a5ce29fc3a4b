package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/response"
	"go.uber.org/zap"
)

// AdminHandler handles dashboard and moderation endpoints
type AdminHandler struct {
	dashboardService service.DashboardService
	eventService     service.EventService
	reviewService    service.ReviewService
	log              *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	dashboardService service.DashboardService,
	eventService service.EventService,
	reviewService service.ReviewService,
	log *logger.Logger,
) *AdminHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AdminHandler{
		dashboardService: dashboardService,
		eventService:     eventService,
		reviewService:    reviewService,
		log:              log,
	}
}

// OrganizerDashboard handles GET /organizer/dashboard
func (h *AdminHandler) OrganizerDashboard(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.OrganizerDashboard(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Success(c, dashboard)
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.AdminStats(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Success(c, stats)
}

// ModerateEvent handles PATCH /admin/events/:id/status
func (h *AdminHandler) ModerateEvent(c *gin.Context) {
	var req dto.ModerateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.ModerateEvent(c.Request.Context(), c.Param("id"), domain.EventStatus(req.Status))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	actor, _ := actorFrom(c)
	h.log.Info("event moderated",
		zap.String("event_id", event.ID),
		zap.String("status", event.Status.String()),
		zap.String("admin_id", actor.UserID),
	)
	response.Success(c, event)
}

// DeleteReview handles DELETE /admin/reviews/:id
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.log, err)
		return
	}
	response.NoContent(c)
}
