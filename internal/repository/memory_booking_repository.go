package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/prohmpiriya/eventix/internal/domain"
)

// MemoryBookingRepository implements BookingRepository using in-memory storage.
// A single mutex makes seat check-and-insert and every Mutate atomic.
type MemoryBookingRepository struct {
	bookings     map[string]*domain.Booking
	byCredential map[string]string         // qrCode -> bookingID
	activeSeats  map[domain.SeatKey]string // seat -> bookingID of the non-cancelled holder
	mu           sync.RWMutex
}

// NewMemoryBookingRepository creates a new in-memory booking repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings:     make(map[string]*domain.Booking),
		byCredential: make(map[string]string),
		activeSeats:  make(map[domain.SeatKey]string),
	}
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.CheckedInAt != nil {
		t := *b.CheckedInAt
		c.CheckedInAt = &t
	}
	return &c
}

// Create stores a new booking
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return domain.ErrConflict
	}
	if _, exists := r.byCredential[booking.QRCode]; exists {
		return domain.ErrCredentialExists
	}
	key := booking.SeatKey()
	if booking.Status.IsActive() {
		if _, held := r.activeSeats[key]; held {
			return domain.ErrSeatTaken
		}
		r.activeSeats[key] = booking.ID
	}

	r.bookings[booking.ID] = cloneBooking(booking)
	r.byCredential[booking.QRCode] = booking.ID
	return nil
}

// GetByID retrieves a booking by its ID
func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.bookings[id]
	if !exists {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// GetByCredential retrieves a booking by its ticket credential
func (r *MemoryBookingRepository) GetByCredential(ctx context.Context, credential string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byCredential[credential]
	if !exists {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(r.bookings[id]), nil
}

// ListByUser returns a user's bookings, newest first
func (r *MemoryBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.UserID == userID }), nil
}

// ListByEvent returns an event's bookings, newest first
func (r *MemoryBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.EventID == eventID }), nil
}

func (r *MemoryBookingRepository) list(match func(b *domain.Booking) bool) []*domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Mutate performs an atomic read-modify-write of one booking
func (r *MemoryBookingRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.bookings[id]
	if !exists {
		return nil, domain.ErrBookingNotFound
	}

	next, err := fn(cloneBooking(current))
	if err != nil {
		return nil, err
	}

	key := current.SeatKey()
	if current.Status.IsActive() && !next.Status.IsActive() {
		delete(r.activeSeats, key)
	}

	r.bookings[id] = cloneBooking(next)
	return cloneBooking(next), nil
}

// HasCheckedIn reports whether the user holds a qualifying booking for the event
func (r *MemoryBookingRepository) HasCheckedIn(ctx context.Context, userID, eventID string, policy domain.ReviewEligibility) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.UserID != userID || b.EventID != eventID {
			continue
		}
		if b.Status == domain.BookingStatusCheckedIn {
			return true, nil
		}
		if policy == domain.EligibilityEverCheckedIn && b.CheckedInAt != nil {
			return true, nil
		}
	}
	return false, nil
}

// SummarizeByEvent aggregates the ledger per event
func (r *MemoryBookingRepository) SummarizeByEvent(ctx context.Context, eventIDs []string) (map[string]domain.SalesSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}

	out := make(map[string]domain.SalesSummary)
	for _, b := range r.bookings {
		if !wanted[b.EventID] {
			continue
		}
		s := out[b.EventID]
		s.Add(b)
		out[b.EventID] = s
	}
	return out, nil
}

// Summarize aggregates the whole ledger
func (r *MemoryBookingRepository) Summarize(ctx context.Context) (domain.SalesSummary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s domain.SalesSummary
	for _, b := range r.bookings {
		s.Add(b)
	}
	return s, len(r.bookings), nil
}
