package service

import (
	"context"
	"testing"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	festival := f.createEvent(t, organizerA, 100)
	expo := f.createEvent(t, organizerA, 50)
	other := f.createEvent(t, organizerB, 10)

	checkedIn := f.book(t, attendee, festival.ID, "A-1")
	cancelled := f.book(t, attendee2, festival.ID, "A-2")
	f.book(t, attendee, expo.ID, "B-1")
	f.book(t, attendee, other.ID, "C-1")

	_, err := f.bookings.VerifyTicket(ctx, organizerA, checkedIn.QRCode)
	require.NoError(t, err)
	_, err = f.bookings.UpdateBookingStatus(ctx, cancelled.ID, organizerA, domain.BookingStatusCancelled, "refund")
	require.NoError(t, err)
	_, err = f.reviews.AddReview(ctx, attendee, festival.ID, 5, "")
	require.NoError(t, err)
	_, err = f.events.ModerateEvent(ctx, other.ID, domain.EventStatusPending)
	require.NoError(t, err)

	t.Run("organizer", func(t *testing.T) {
		d, err := f.dashboard.OrganizerDashboard(ctx, organizerA.UserID)
		require.NoError(t, err)

		assert.Equal(t, 2, d.TotalEvents)
		assert.Equal(t, 2, d.TicketsSold)
		assert.Equal(t, 1, d.CheckedIn)
		assert.Equal(t, 1, d.Cancelled)
		assert.True(t, decimal.NewFromInt(200).Equal(d.Revenue), d.Revenue.String())

		perEvent := make(map[string]domain.EventSales)
		for _, row := range d.Events {
			perEvent[row.EventID] = row
		}
		assert.Equal(t, 1, perEvent[festival.ID].TicketsSold)
		assert.Equal(t, 1, perEvent[expo.ID].TicketsSold)
		assert.Equal(t, 50, perEvent[expo.ID].SeatMap.Total)
	})

	t.Run("organizer without events", func(t *testing.T) {
		d, err := f.dashboard.OrganizerDashboard(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, d.TotalEvents)
		assert.Empty(t, d.Events)
		assert.True(t, d.Revenue.IsZero())
	})

	t.Run("admin", func(t *testing.T) {
		s, err := f.dashboard.AdminStats(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, s.TotalEvents)
		assert.Equal(t, 2, s.EventsByStatus[domain.EventStatusApproved])
		assert.Equal(t, 1, s.EventsByStatus[domain.EventStatusPending])
		assert.Equal(t, 4, s.TotalBookings)
		assert.Equal(t, 3, s.TicketsSold)
		assert.Equal(t, 1, s.TotalReviews)
		assert.True(t, decimal.NewFromInt(300).Equal(s.Revenue), s.Revenue.String())
	})
}
