package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/response"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// BookingHandler handles booking and ticket HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
	log            *logger.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService, log *logger.Logger) *BookingHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &BookingHandler{bookingService: bookingService, log: log}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := requireActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", actor.UserID),
		attribute.String("event_id", req.EventID),
	)

	booking, err := h.bookingService.CreateBooking(ctx, actor, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if domain.IsSeatConflictError(err) {
			h.log.Info("seat conflict",
				zap.String("event_id", req.EventID),
				zap.String("seat_type", req.SeatType),
				zap.String("seat_number", req.SeatNumber),
			)
		}
		handleError(c, h.log, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, booking)
}

// ListMine handles GET /bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	tickets, err := h.bookingService.ListBookingsForUser(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.List(c, tickets, len(tickets))
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	response.Success(c, booking)
}

// UpdateStatus handles PATCH /bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.update_status")
	defer span.End()

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(ctx, c.Param("id"), actor, domain.BookingStatus(req.Status), req.Reason)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, h.log, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, booking)
}

// VerifyTicket handles POST /tickets/verify
func (h *BookingHandler) VerifyTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.verify")
	defer span.End()

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookingService.VerifyTicket(ctx, actor, req.Credential)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, h.log, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.VerifyTicketResponse{
		Ticket:           domain.NewTicketView(result.Booking, result.Event),
		AlreadyCheckedIn: result.AlreadyCheckedIn,
	})
}
