package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoSet bundles one storage backend's repositories for the shared contract tests
type repoSet struct {
	events   EventRepository
	bookings BookingRepository
	reviews  ReviewRepository
}

func createTestEvent(organizerID string, created time.Time) *domain.Event {
	return &domain.Event{
		ID:          uuid.NewString(),
		OrganizerID: organizerID,
		Title:       "Jazz Night",
		Venue:       "Blue Hall",
		Date:        created.Add(30 * 24 * time.Hour).Truncate(time.Second),
		Time:        "19:30",
		Category:    "Music",
		SeatMap:     domain.SeatMap{VIP: 10, Regular: 90, Total: 100},
		Price: map[string]decimal.Decimal{
			domain.TierVIP:     decimal.RequireFromString("150.00"),
			domain.TierRegular: decimal.RequireFromString("50.00"),
		},
		Status:    domain.EventStatusApproved,
		CreatedAt: created.Truncate(time.Microsecond),
		UpdatedAt: created.Truncate(time.Microsecond),
	}
}

func createTestBooking(userID, eventID, seatType, seatNumber string, status domain.BookingStatus) *domain.Booking {
	now := time.Now().Truncate(time.Microsecond)
	return &domain.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		EventID:    eventID,
		SeatType:   seatType,
		SeatNumber: seatNumber,
		AmountPaid: decimal.RequireFromString("50.00"),
		QRCode:     "TKT-" + uuid.NewString(),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func cancelFn(reason string) MutateFunc {
	return func(current *domain.Booking) (*domain.Booking, error) {
		return current.Apply(domain.ActionCancel, reason, time.Now())
	}
}

func runEventContract(t *testing.T, repos repoSet) {
	ctx := context.Background()
	organizer := "org-" + uuid.NewString()
	base := time.Now()

	older := createTestEvent(organizer, base.Add(-time.Hour))
	newer := createTestEvent(organizer, base)
	newer.Category = "Sports"
	newer.Status = domain.EventStatusPending
	require.NoError(t, repos.events.Create(ctx, older))
	require.NoError(t, repos.events.Create(ctx, newer))

	t.Run("GetByID round-trips seat map and prices", func(t *testing.T) {
		got, err := repos.events.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.SeatMap, got.SeatMap)
		assert.True(t, got.Price[domain.TierVIP].Equal(decimal.RequireFromString("150")))
		assert.Equal(t, domain.EventStatusApproved, got.Status)
	})

	t.Run("GetByID unknown", func(t *testing.T) {
		_, err := repos.events.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("List filters and orders newest first", func(t *testing.T) {
		all, err := repos.events.List(ctx, domain.EventFilter{OrganizerID: organizer})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID)

		sports, err := repos.events.List(ctx, domain.EventFilter{OrganizerID: organizer, Category: "sports"})
		require.NoError(t, err)
		require.Len(t, sports, 1)
		assert.Equal(t, newer.ID, sports[0].ID)

		approved, err := repos.events.List(ctx, domain.EventFilter{OrganizerID: organizer, Status: domain.EventStatusApproved})
		require.NoError(t, err)
		require.Len(t, approved, 1)
		assert.Equal(t, older.ID, approved[0].ID)
	})

	t.Run("Update keeps owner and status", func(t *testing.T) {
		edited := *older
		edited.Title = "Late Jazz Night"
		edited.Status = domain.EventStatusRejected
		edited.UpdatedAt = time.Now()
		require.NoError(t, repos.events.Update(ctx, &edited))

		got, err := repos.events.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "Late Jazz Night", got.Title)
		assert.Equal(t, domain.EventStatusApproved, got.Status)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		got, err := repos.events.UpdateStatus(ctx, newer.ID, domain.EventStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusApproved, got.Status)

		_, err = repos.events.UpdateStatus(ctx, uuid.NewString(), domain.EventStatusApproved)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("CountByStatus", func(t *testing.T) {
		counts, err := repos.events.CountByStatus(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, counts[domain.EventStatusApproved], 2)
	})
}

func runBookingContract(t *testing.T, repos repoSet) {
	ctx := context.Background()
	event := createTestEvent("org-"+uuid.NewString(), time.Now())
	require.NoError(t, repos.events.Create(ctx, event))

	t.Run("active seat is exclusive", func(t *testing.T) {
		first := createTestBooking("alice", event.ID, domain.TierVIP, "A1", domain.BookingStatusConfirmed)
		require.NoError(t, repos.bookings.Create(ctx, first))

		second := createTestBooking("bob", event.ID, domain.TierVIP, "A1", domain.BookingStatusConfirmed)
		err := repos.bookings.Create(ctx, second)
		assert.ErrorIs(t, err, domain.ErrSeatTaken)
		assert.True(t, domain.IsSeatConflictError(err))

		// Same number in another tier is a different seat
		other := createTestBooking("bob", event.ID, domain.TierRegular, "A1", domain.BookingStatusConfirmed)
		assert.NoError(t, repos.bookings.Create(ctx, other))
	})

	t.Run("cancelling frees the seat", func(t *testing.T) {
		first := createTestBooking("carol", event.ID, domain.TierVIP, "B1", domain.BookingStatusConfirmed)
		require.NoError(t, repos.bookings.Create(ctx, first))

		cancelled, err := repos.bookings.Mutate(ctx, first.ID, cancelFn("sick"))
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
		assert.Equal(t, "sick", cancelled.CancellationReason)

		again := createTestBooking("dave", event.ID, domain.TierVIP, "B1", domain.BookingStatusConfirmed)
		assert.NoError(t, repos.bookings.Create(ctx, again))
	})

	t.Run("concurrent creates admit one holder", func(t *testing.T) {
		const attempts = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b := createTestBooking(uuid.NewString(), event.ID, domain.TierRegular, "C7", domain.BookingStatusConfirmed)
				err := repos.bookings.Create(ctx, b)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else if domain.IsSeatConflictError(err) {
					conflicts++
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, conflicts)
	})

	t.Run("credential is unique and resolvable", func(t *testing.T) {
		b := createTestBooking("erin", event.ID, domain.TierRegular, "D1", domain.BookingStatusConfirmed)
		require.NoError(t, repos.bookings.Create(ctx, b))

		got, err := repos.bookings.GetByCredential(ctx, b.QRCode)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.True(t, got.AmountPaid.Equal(b.AmountPaid))

		dup := createTestBooking("erin", event.ID, domain.TierRegular, "D2", domain.BookingStatusConfirmed)
		dup.QRCode = b.QRCode
		assert.ErrorIs(t, repos.bookings.Create(ctx, dup), domain.ErrCredentialExists)

		_, err = repos.bookings.GetByCredential(ctx, "TKT-unknown")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("Mutate error leaves booking unchanged", func(t *testing.T) {
		b := createTestBooking("frank", event.ID, domain.TierRegular, "E1", domain.BookingStatusPending)
		require.NoError(t, repos.bookings.Create(ctx, b))

		_, err := repos.bookings.Mutate(ctx, b.ID, func(current *domain.Booking) (*domain.Booking, error) {
			return current.Apply(domain.ActionCheckIn, "", time.Now())
		})
		assert.True(t, domain.IsTransitionError(err))

		got, err := repos.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, got.Status)

		_, err = repos.bookings.Mutate(ctx, uuid.NewString(), cancelFn("x"))
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("HasCheckedIn follows policy", func(t *testing.T) {
		b := createTestBooking("grace", event.ID, domain.TierRegular, "F1", domain.BookingStatusConfirmed)
		require.NoError(t, repos.bookings.Create(ctx, b))

		ok, err := repos.bookings.HasCheckedIn(ctx, "grace", event.ID, domain.EligibilityEverCheckedIn)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repos.bookings.Mutate(ctx, b.ID, func(current *domain.Booking) (*domain.Booking, error) {
			return current.Apply(domain.ActionCheckIn, "", time.Now())
		})
		require.NoError(t, err)
		_, err = repos.bookings.Mutate(ctx, b.ID, cancelFn("left early"))
		require.NoError(t, err)

		ever, err := repos.bookings.HasCheckedIn(ctx, "grace", event.ID, domain.EligibilityEverCheckedIn)
		require.NoError(t, err)
		assert.True(t, ever)

		current, err := repos.bookings.HasCheckedIn(ctx, "grace", event.ID, domain.EligibilityCheckedIn)
		require.NoError(t, err)
		assert.False(t, current)
	})

	t.Run("summaries", func(t *testing.T) {
		summaries, err := repos.bookings.SummarizeByEvent(ctx, []string{event.ID})
		require.NoError(t, err)
		s := summaries[event.ID]
		assert.Greater(t, s.TicketsSold, 0)
		assert.True(t, s.Revenue.Equal(decimal.NewFromInt(int64(s.TicketsSold)*50)))
		assert.Equal(t, 1, s.PendingApprovals)
		assert.Equal(t, 2, s.Cancelled)

		list, err := repos.bookings.ListByEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, s.TicketsSold+s.PendingApprovals+s.Cancelled, len(list))

		total, count, err := repos.bookings.Summarize(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, len(list))
		assert.GreaterOrEqual(t, total.TicketsSold, s.TicketsSold)
	})

	t.Run("ListByUser newest first", func(t *testing.T) {
		user := "henry-" + uuid.NewString()
		first := createTestBooking(user, event.ID, domain.TierRegular, "G1", domain.BookingStatusConfirmed)
		second := createTestBooking(user, event.ID, domain.TierRegular, "G2", domain.BookingStatusConfirmed)
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		require.NoError(t, repos.bookings.Create(ctx, first))
		require.NoError(t, repos.bookings.Create(ctx, second))

		list, err := repos.bookings.ListByUser(ctx, user)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
	})
}

func runReviewContract(t *testing.T, repos repoSet) {
	ctx := context.Background()
	event := createTestEvent("org-"+uuid.NewString(), time.Now())
	require.NoError(t, repos.events.Create(ctx, event))

	review := &domain.Review{
		ID:        uuid.NewString(),
		UserID:    "ivy",
		EventID:   event.ID,
		Rating:    5,
		Comment:   "great",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.reviews.Create(ctx, review))

	dup := *review
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.reviews.Create(ctx, &dup), domain.ErrReviewExists)

	list, err := repos.reviews.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)

	byUser, err := repos.reviews.ListByUser(ctx, "ivy")
	require.NoError(t, err)
	assert.NotEmpty(t, byUser)

	require.NoError(t, repos.reviews.Delete(ctx, review.ID))
	assert.ErrorIs(t, repos.reviews.Delete(ctx, review.ID), domain.ErrReviewNotFound)

	// Deleting frees the (user, event) pair
	assert.NoError(t, repos.reviews.Create(ctx, &dup))

	t.Run("lists newest first with id tie-break", func(t *testing.T) {
		festival := createTestEvent("org-"+uuid.NewString(), time.Now())
		expo := createTestEvent("org-"+uuid.NewString(), time.Now())
		require.NoError(t, repos.events.Create(ctx, festival))
		require.NoError(t, repos.events.Create(ctx, expo))

		base := time.Now().UTC().Truncate(time.Millisecond)
		reviewer := "jack-" + uuid.NewString()
		newReview := func(userID, eventID string, created time.Time) *domain.Review {
			rv := &domain.Review{ID: uuid.NewString(), UserID: userID, EventID: eventID, Rating: 4, CreatedAt: created}
			require.NoError(t, repos.reviews.Create(ctx, rv))
			return rv
		}

		oldest := newReview(reviewer, festival.ID, base.Add(-time.Hour))
		tieA := newReview("kim-"+uuid.NewString(), festival.ID, base)
		tieB := newReview("lee-"+uuid.NewString(), festival.ID, base)
		newest := newReview("max-"+uuid.NewString(), festival.ID, base.Add(time.Hour))
		onExpo := newReview(reviewer, expo.ID, base)

		high, low := tieA, tieB
		if low.ID > high.ID {
			high, low = low, high
		}

		for i := 0; i < 3; i++ {
			list, err := repos.reviews.ListByEvent(ctx, festival.ID)
			require.NoError(t, err)
			ids := make([]string, 0, len(list))
			for _, rv := range list {
				ids = append(ids, rv.ID)
			}
			assert.Equal(t, []string{newest.ID, high.ID, low.ID, oldest.ID}, ids)
		}

		byUser, err := repos.reviews.ListByUser(ctx, reviewer)
		require.NoError(t, err)
		require.Len(t, byUser, 2)
		assert.Equal(t, onExpo.ID, byUser[0].ID)
		assert.Equal(t, oldest.ID, byUser[1].ID)
	})
}
