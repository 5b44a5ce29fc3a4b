package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventService defines the interface for event business logic
type EventService interface {
	// CreateEvent creates an event owned by the actor and announces it
	CreateEvent(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)

	// ListEvents lists events matching filter, newest first
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)

	// UpdateEvent applies a partial update. Only the organizer may edit.
	UpdateEvent(ctx context.Context, eventID string, actor domain.Actor, update domain.EventUpdate) (*domain.Event, error)

	// ModerateEvent sets the moderation status
	ModerateEvent(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error)
}

// EventServiceConfig contains configuration for event service
type EventServiceConfig struct {
	DefaultStatus domain.EventStatus
}

type eventService struct {
	eventRepo     repository.EventRepository
	notifier      Notifier
	metrics       *metrics.Metrics
	defaultStatus domain.EventStatus
	now           Clock
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	notifier Notifier,
	m *metrics.Metrics,
	cfg *EventServiceConfig,
) EventService {
	status := domain.EventStatusApproved
	if cfg != nil && cfg.DefaultStatus.IsValid() {
		status = cfg.DefaultStatus
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &eventService{
		eventRepo:     eventRepo,
		notifier:      notifier,
		metrics:       m,
		defaultStatus: status,
		now:           systemClock,
	}
}

// CreateEvent creates an event owned by the actor and announces it
func (s *eventService) CreateEvent(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil {
		return nil, domain.ErrInvalidTitle
	}

	seatMap, _, err := domain.NewSeatMap(req.Capacity)
	if err != nil {
		span.SetStatus(codes.Error, "invalid capacity")
		return nil, err
	}

	now := s.now()
	event := &domain.Event{
		ID:          uuid.New().String(),
		OrganizerID: actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Venue:       strings.TrimSpace(req.Venue),
		Date:        req.Date,
		Time:        req.Time,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		BannerRef:   req.BannerRef,
		SeatMap:     seatMap,
		Price:       req.Price,
		Status:      s.defaultStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Price == nil {
		event.Price = make(map[string]decimal.Decimal)
	}
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.EventsCreated.Inc()
	s.notifier.Notify(ctx, domain.EventCreatedNotification(event, now))

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.Int("seat_total", event.SeatMap.Total),
	)
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, domain.ErrInvalidEventID
	}
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListEvents lists events matching filter, newest first
func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidEventStatus
	}
	return s.eventRepo.List(ctx, filter)
}

// UpdateEvent applies a partial update. Only the organizer may edit.
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, actor domain.Actor, update domain.EventUpdate) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if current.OrganizerID != actor.UserID {
		span.SetStatus(codes.Error, "not organizer")
		return nil, domain.ErrNotEventOrganizer
	}
	if update.IsEmpty() {
		return current, nil
	}

	next, err := update.Apply(current, s.now())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return next, nil
}

// ModerateEvent sets the moderation status
func (s *eventService) ModerateEvent(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.moderate")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("status", status.String()),
	)

	if !status.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, domain.ErrInvalidEventStatus
	}

	event, err := s.eventRepo.UpdateStatus(ctx, eventID, status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}
