package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create stores a new event
	Create(ctx context.Context, event *domain.Event) error

	// GetByID retrieves an event by its ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// List returns events matching filter, newest first
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)

	// Update overwrites the mutable fields of an existing event
	Update(ctx context.Context, event *domain.Event) error

	// UpdateStatus sets the moderation status and returns the updated event
	UpdateStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error)

	// CountByStatus counts events per moderation status
	CountByStatus(ctx context.Context) (map[domain.EventStatus]int, error)
}

// MutateFunc computes the next state of a booking from its current state.
// Returning an error aborts the update.
type MutateFunc func(current *domain.Booking) (*domain.Booking, error)

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create stores a new booking. It fails with domain.ErrSeatTaken when another
	// non-cancelled booking holds the same (event, seat type, seat number).
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByCredential retrieves a booking by its ticket credential
	GetByCredential(ctx context.Context, credential string) (*domain.Booking, error)

	// ListByUser returns a user's bookings, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)

	// ListByEvent returns an event's bookings, newest first
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error)

	// Mutate performs an atomic read-modify-write of one booking.
	// No other writer can change the booking between the read and the write.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Booking, error)

	// HasCheckedIn reports whether the user holds a booking for the event that
	// satisfies the eligibility policy
	HasCheckedIn(ctx context.Context, userID, eventID string, policy domain.ReviewEligibility) (bool, error)

	// SummarizeByEvent aggregates the ledger per event. Events without bookings
	// are absent from the result.
	SummarizeByEvent(ctx context.Context, eventIDs []string) (map[string]domain.SalesSummary, error)

	// Summarize aggregates the whole ledger and returns the total booking count
	Summarize(ctx context.Context) (domain.SalesSummary, int, error)
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create stores a review. It fails with domain.ErrReviewExists when the user
	// already reviewed the event.
	Create(ctx context.Context, review *domain.Review) error

	// Delete removes a review
	Delete(ctx context.Context, id string) error

	// ListByEvent returns an event's reviews, newest first
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Review, error)

	// ListByUser returns a user's reviews, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Review, error)

	// Count returns the number of stored reviews
	Count(ctx context.Context) (int, error)
}

// SeatLocker serializes concurrent attempts on one seat. A held lock yields
// domain.ErrSeatLocked.
type SeatLocker interface {
	Acquire(ctx context.Context, key domain.SeatKey, ttl time.Duration) (release func(), err error)
}

// NoopSeatLocker is used when no distributed lock is configured. The storage
// layer still enforces seat uniqueness.
type NoopSeatLocker struct{}

func (NoopSeatLocker) Acquire(ctx context.Context, key domain.SeatKey, ttl time.Duration) (func(), error) {
	return func() {}, nil
}
