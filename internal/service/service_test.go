package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/dto"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	organizerA = domain.Actor{UserID: "org-a", Role: domain.RoleOrganizer, Name: "Org A"}
	organizerB = domain.Actor{UserID: "org-b", Role: domain.RoleOrganizer, Name: "Org B"}
	attendee   = domain.Actor{UserID: "user-1", Role: domain.RoleUser, Name: "Alice"}
	attendee2  = domain.Actor{UserID: "user-2", Role: domain.RoleUser, Name: "Bob"}
	admin      = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin, Name: "Root"}
)

// recordingNotifier captures notifications synchronously
type recordingNotifier struct {
	mu    sync.Mutex
	items []*domain.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) byType(t domain.NotificationType) []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.items {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// lockedSeatLocker reports every seat as held by another request
type lockedSeatLocker struct{}

func (lockedSeatLocker) Acquire(ctx context.Context, key domain.SeatKey, ttl time.Duration) (func(), error) {
	return nil, domain.ErrSeatLocked
}

type fixture struct {
	events    EventService
	bookings  BookingService
	reviews   ReviewService
	dashboard DashboardService
	notifier  *recordingNotifier
	metrics   *metrics.Metrics
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLocker(t, nil, domain.EligibilityEverCheckedIn)
}

func newFixtureWithLocker(t *testing.T, locker repository.SeatLocker, policy domain.ReviewEligibility) *fixture {
	t.Helper()

	eventRepo := repository.NewMemoryEventRepository()
	bookingRepo := repository.NewMemoryBookingRepository()
	reviewRepo := repository.NewMemoryReviewRepository()
	n := &recordingNotifier{}
	m := metrics.New(nil)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &now
	var clockMu sync.Mutex
	tick := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		*clock = clock.Add(time.Second)
		return *clock
	}

	es := NewEventService(eventRepo, n, m, nil).(*eventService)
	es.now = tick
	bs := NewBookingService(bookingRepo, eventRepo, locker, n, m, nil, nil).(*bookingService)
	bs.now = tick
	rs := NewReviewService(reviewRepo, eventRepo, NewCheckInGate(bookingRepo, policy), m, nil).(*reviewService)
	rs.now = tick

	return &fixture{
		events:    es,
		bookings:  bs,
		reviews:   rs,
		dashboard: NewDashboardService(eventRepo, bookingRepo, reviewRepo),
		notifier:  n,
		metrics:   m,
		clock:     clock,
	}
}

func intPtr(v int) *int { return &v }

func (f *fixture) createEvent(t *testing.T, actor domain.Actor, general int) *domain.Event {
	t.Helper()
	event, err := f.events.CreateEvent(context.Background(), actor, &dto.CreateEventRequest{
		Title:    "Summer Fest",
		Venue:    "Main Hall",
		Date:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Category: "music",
		Capacity: &domain.CapacityInput{General: intPtr(general)},
		Price: map[string]decimal.Decimal{
			domain.TierVIP:     decimal.NewFromInt(500),
			domain.TierRegular: decimal.NewFromInt(100),
		},
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) book(t *testing.T, actor domain.Actor, eventID, seat string) *domain.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), actor, &dto.CreateBookingRequest{
		EventID:    eventID,
		SeatType:   domain.TierRegular,
		SeatNumber: seat,
		AmountPaid: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return b
}
