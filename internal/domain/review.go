package domain

import (
	"strings"
	"time"
)

// Review is an attendee's rating of an event. Reviews are never edited.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingRange is the inclusive range accepted for review ratings
type RatingRange struct {
	Min int
	Max int
}

// DefaultRatingRange is 1 to 5 stars
var DefaultRatingRange = RatingRange{Min: 1, Max: 5}

// Contains reports whether rating lies within the range
func (r RatingRange) Contains(rating int) bool {
	return rating >= r.Min && rating <= r.Max
}

// Validate checks the review against the rating range
func (r *Review) Validate(rng RatingRange) error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(r.EventID) == "" {
		return ErrInvalidEventID
	}
	if !rng.Contains(r.Rating) {
		return ErrInvalidRating
	}
	return nil
}

// ReviewEligibility decides whether a cancelled booking keeps review rights
type ReviewEligibility string

const (
	// EligibilityEverCheckedIn: once checked in, the right to review is never retracted
	EligibilityEverCheckedIn ReviewEligibility = "ever_checked_in"
	// EligibilityCheckedIn: only a booking currently in checked_in qualifies
	EligibilityCheckedIn ReviewEligibility = "checked_in"
)

// IsValid checks if the policy is known
func (p ReviewEligibility) IsValid() bool {
	return p == EligibilityEverCheckedIn || p == EligibilityCheckedIn
}
