package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CredentialPrefix marks ticket credentials generated by the ledger
const CredentialPrefix = "TKT-"

// BookingService is the booking ledger
type BookingService interface {
	// CreateBooking books one seat for the actor. The new booking is confirmed.
	CreateBooking(ctx context.Context, actor domain.Actor, req *dto.CreateBookingRequest) (*domain.Booking, error)

	// GetBooking retrieves a booking visible to the actor
	GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error)

	// ListBookingsForUser returns the user's tickets, newest first
	ListBookingsForUser(ctx context.Context, userID string) ([]domain.TicketView, error)

	// ListBookingsForEvent returns an event's ledger for its organizer, newest first
	ListBookingsForEvent(ctx context.Context, eventID string, actor domain.Actor) ([]*domain.Booking, error)

	// UpdateBookingStatus moves a booking through the state machine on behalf of the event organizer
	UpdateBookingStatus(ctx context.Context, bookingID string, actor domain.Actor, status domain.BookingStatus, reason string) (*domain.Booking, error)

	// VerifyTicket checks a ticket in by its credential on behalf of the event
	// organizer or an admin. Re-scanning a checked-in ticket succeeds with
	// AlreadyCheckedIn set.
	VerifyTicket(ctx context.Context, actor domain.Actor, credential string) (*TicketVerification, error)
}

// TicketVerification is the outcome of a ticket scan
type TicketVerification struct {
	Booking *domain.Booking
	// Event is nil when the event no longer exists
	Event            *domain.Event
	AlreadyCheckedIn bool
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	SeatLockTTL time.Duration
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	locker      repository.SeatLocker
	notifier    Notifier
	metrics     *metrics.Metrics
	log         *logger.Logger
	lockTTL     time.Duration
	now         Clock
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	locker repository.SeatLocker,
	notifier Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg *BookingServiceConfig,
) BookingService {
	ttl := 5 * time.Second
	if cfg != nil && cfg.SeatLockTTL > 0 {
		ttl = cfg.SeatLockTTL
	}
	if locker == nil {
		locker = repository.NoopSeatLocker{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if m == nil {
		m = metrics.Nop()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		locker:      locker,
		notifier:    notifier,
		metrics:     m,
		log:         log,
		lockTTL:     ttl,
		now:         systemClock,
	}
}

// CreateBooking books one seat for the actor. The new booking is confirmed.
func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if req == nil {
		return nil, domain.ErrInvalidEventID
	}

	credential := strings.TrimSpace(req.TicketCredential)
	if credential == "" {
		credential = CredentialPrefix + uuid.New().String()
	}

	now := s.now()
	booking := &domain.Booking{
		ID:           uuid.New().String(),
		UserID:       actor.UserID,
		EventID:      strings.TrimSpace(req.EventID),
		SeatType:     strings.TrimSpace(req.SeatType),
		SeatNumber:   strings.TrimSpace(req.SeatNumber),
		AmountPaid:   req.AmountPaid,
		QRCode:       credential,
		AttendeeName: strings.TrimSpace(req.AttendeeName),
		Status:       domain.BookingStatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := booking.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user_id", booking.UserID),
		attribute.String("event_id", booking.EventID),
		attribute.String("seat", booking.SeatKey().String()),
	)

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	release, err := s.acquireSeat(ctx, booking.SeatKey())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	err = s.bookingRepo.Create(ctx, booking)
	release()
	if err != nil {
		if domain.IsSeatConflictError(err) {
			s.metrics.BookingConflicts.WithLabelValues("seat_taken").Inc()
		} else if !domain.IsConflictError(err) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.BookingsCreated.WithLabelValues(booking.SeatType, booking.Status.String()).Inc()
	s.notifier.Notify(ctx, domain.NewBookingNotification(booking, event, actor.Name, now))

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// acquireSeat serializes attempts on one seat. A lock backend failure is
// logged and the storage constraint alone guards the seat.
func (s *bookingService) acquireSeat(ctx context.Context, key domain.SeatKey) (func(), error) {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key, s.lockTTL)
	s.metrics.SeatLockWait.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, domain.ErrSeatLocked):
		s.metrics.BookingConflicts.WithLabelValues("seat_locked").Inc()
		return nil, err
	default:
		s.log.Warn("seat lock unavailable, relying on storage constraint",
			zap.String("seat", key.String()),
			zap.Error(err),
		)
		return func() {}, nil
	}
}

// GetBooking retrieves a booking visible to the actor: its owner, the event
// organizer or an admin.
func (s *bookingService) GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if booking.UserID == actor.UserID || actor.IsAdmin() {
		return booking, nil
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil && !domain.IsNotFoundError(err) {
		return nil, err
	}
	if event == nil || event.OrganizerID != actor.UserID {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrNotBookingOwner
	}
	return booking, nil
}

// ListBookingsForUser returns the user's tickets, newest first
func (s *bookingService) ListBookingsForUser(ctx context.Context, userID string) ([]domain.TicketView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_for_user")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUserID
	}

	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	events := make(map[string]*domain.Event)
	tickets := make([]domain.TicketView, 0, len(bookings))
	for _, b := range bookings {
		event, seen := events[b.EventID]
		if !seen {
			event, err = s.eventRepo.GetByID(ctx, b.EventID)
			if err != nil && !domain.IsNotFoundError(err) {
				span.RecordError(err)
				return nil, err
			}
			events[b.EventID] = event
		}
		tickets = append(tickets, domain.NewTicketView(b, event))
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// ListBookingsForEvent returns an event's ledger for its organizer, newest first
func (s *bookingService) ListBookingsForEvent(ctx context.Context, eventID string, actor domain.Actor) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_for_event")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if event.OrganizerID != actor.UserID && !actor.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrNotEventOrganizer
	}
	return s.bookingRepo.ListByEvent(ctx, eventID)
}

// UpdateBookingStatus moves a booking through the state machine on behalf of the event organizer
func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID string, actor domain.Actor, status domain.BookingStatus, reason string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("target_status", status.String()),
	)

	action, err := domain.ActionFor(status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil && !domain.IsNotFoundError(err) {
		return nil, err
	}
	if event == nil || event.OrganizerID != actor.UserID {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrNotEventOrganizer
	}

	var from domain.BookingStatus
	updated, err := s.bookingRepo.Mutate(ctx, bookingID, func(current *domain.Booking) (*domain.Booking, error) {
		from = current.Status
		return current.Apply(action, reason, s.now())
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.BookingTransitions.WithLabelValues(from.String(), updated.Status.String()).Inc()
	span.SetStatus(codes.Ok, "")
	return updated, nil
}

// VerifyTicket checks a ticket in by its credential
func (s *bookingService) VerifyTicket(ctx context.Context, actor domain.Actor, credential string) (*TicketVerification, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.verify_ticket")
	defer span.End()

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ErrInvalidCredential
	}

	booking, err := s.bookingRepo.GetByCredential(ctx, credential)
	if err != nil {
		s.metrics.CheckIns.WithLabelValues("unknown").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil && !domain.IsNotFoundError(err) {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !actor.IsAdmin() && (event == nil || event.OrganizerID != actor.UserID) {
		s.metrics.CheckIns.WithLabelValues("forbidden").Inc()
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrNotEventOrganizer
	}

	changed := false
	updated, err := s.bookingRepo.Mutate(ctx, booking.ID, func(current *domain.Booking) (*domain.Booking, error) {
		next, ok, err := current.CheckIn(s.now())
		changed = ok
		return next, err
	})
	if err != nil {
		s.metrics.CheckIns.WithLabelValues("rejected").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if changed {
		s.metrics.CheckIns.WithLabelValues("admitted").Inc()
		s.metrics.BookingTransitions.WithLabelValues(domain.BookingStatusConfirmed.String(), updated.Status.String()).Inc()
	} else {
		s.metrics.CheckIns.WithLabelValues("already_checked_in").Inc()
	}

	span.SetAttributes(
		attribute.String("booking_id", updated.ID),
		attribute.Bool("already_checked_in", !changed),
	)
	span.SetStatus(codes.Ok, "")
	return &TicketVerification{Booking: updated, Event: event, AlreadyCheckedIn: !changed}, nil
}
