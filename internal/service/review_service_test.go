package service

import (
	"context"
	"testing"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_RequiresCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, organizerA, 100)
	b := f.book(t, attendee, event.ID, "A-1")

	_, err := f.reviews.AddReview(ctx, attendee, event.ID, 5, "great")
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)

	ok, err := f.reviews.CanReview(ctx, attendee.UserID, event.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.bookings.VerifyTicket(ctx, organizerA, b.QRCode)
	require.NoError(t, err)

	review, err := f.reviews.AddReview(ctx, attendee, event.ID, 5, " great ")
	require.NoError(t, err)
	assert.Equal(t, "great", review.Comment)

	_, err = f.reviews.AddReview(ctx, attendee, event.ID, 4, "again")
	assert.ErrorIs(t, err, domain.ErrReviewExists)

	reviews, err := f.reviews.ListReviewsForEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReviewService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, organizerA, 100)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.reviews.AddReview(ctx, attendee, event.ID, rating, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRating, "rating %d", rating)
	}

	_, err := f.reviews.AddReview(ctx, attendee, "missing", 3, "")
	assert.True(t, domain.IsNotFoundError(err))
}

func TestReviewService_CancelledAfterCheckIn(t *testing.T) {
	tests := []struct {
		name   string
		policy domain.ReviewEligibility
		want   bool
	}{
		{name: "ever checked in keeps eligibility", policy: domain.EligibilityEverCheckedIn, want: true},
		{name: "current check-in only", policy: domain.EligibilityCheckedIn, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWithLocker(t, nil, tt.policy)
			ctx := context.Background()
			event := f.createEvent(t, organizerA, 100)
			b := f.book(t, attendee, event.ID, "A-1")

			_, err := f.bookings.VerifyTicket(ctx, organizerA, b.QRCode)
			require.NoError(t, err)
			_, err = f.bookings.UpdateBookingStatus(ctx, b.ID, organizerA, domain.BookingStatusCancelled, "refund")
			require.NoError(t, err)

			ok, err := f.reviews.CanReview(ctx, attendee.UserID, event.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestReviewService_DeleteAllowsNewReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, organizerA, 100)
	b := f.book(t, attendee, event.ID, "A-1")
	_, err := f.bookings.VerifyTicket(ctx, organizerA, b.QRCode)
	require.NoError(t, err)

	review, err := f.reviews.AddReview(ctx, attendee, event.ID, 2, "meh")
	require.NoError(t, err)
	require.NoError(t, f.reviews.DeleteReview(ctx, review.ID))

	err = f.reviews.DeleteReview(ctx, review.ID)
	assert.True(t, domain.IsNotFoundError(err))

	_, err = f.reviews.AddReview(ctx, attendee, event.ID, 4, "better on reflection")
	require.NoError(t, err)

	mine, err := f.reviews.ListReviewsForUser(ctx, attendee.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 4, mine[0].Rating)
}
