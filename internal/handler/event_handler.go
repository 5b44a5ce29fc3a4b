package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/response"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService   service.EventService
	bookingService service.BookingService
	reviewService  service.ReviewService
	log            *logger.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(
	eventService service.EventService,
	bookingService service.BookingService,
	reviewService service.ReviewService,
	log *logger.Logger,
) *EventHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &EventHandler{
		eventService:   eventService,
		bookingService: bookingService,
		reviewService:  reviewService,
		log:            log,
	}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(ctx, actor, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, h.log, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	response.Created(c, event)
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Success(c, event)
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	var q dto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), q.ToFilter())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.List(c, events, len(events))
}

// Update handles PATCH /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(ctx, c.Param("id"), actor, req.ToDomain())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, h.log, err)
		return
	}
	response.Success(c, event)
}

// ListBookings handles GET /events/:id/bookings
func (h *EventHandler) ListBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListBookingsForEvent(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.List(c, bookings, len(bookings))
}

// ListReviews handles GET /events/:id/reviews
func (h *EventHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviewsForEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.List(c, reviews, len(reviews))
}
