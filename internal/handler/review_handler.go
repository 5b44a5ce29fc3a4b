package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/response"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService service.ReviewService
	log           *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService service.ReviewService, log *logger.Logger) *ReviewHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReviewHandler{reviewService: reviewService, log: log}
}

// Create handles POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.AddReview(c.Request.Context(), actor, req.EventID, req.Rating, req.Comment)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Created(c, review)
}

// ListMine handles GET /reviews/me
func (h *ReviewHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviewsForUser(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.List(c, reviews, len(reviews))
}

// Eligibility handles GET /reviews/eligibility/:eventId
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	eventID := c.Param("eventId")
	can, err := h.reviewService.CanReview(c.Request.Context(), actor.UserID, eventID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Success(c, dto.ReviewEligibilityResponse{EventID: eventID, CanReview: can})
}
