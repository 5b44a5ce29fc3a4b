package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of these.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSeatConflict      = errors.New("seat conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
)

// Domain errors
var (
	// Not found
	ErrEventNotFound   = fmt.Errorf("event %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("review %w", ErrNotFound)

	// Validation
	ErrInvalidUserID      = fmt.Errorf("%w: user id is required", ErrInvalidInput)
	ErrInvalidEventID     = fmt.Errorf("%w: event id is required", ErrInvalidInput)
	ErrInvalidSeatType    = fmt.Errorf("%w: seat type is required", ErrInvalidInput)
	ErrInvalidSeatNumber  = fmt.Errorf("%w: seat number is required", ErrInvalidInput)
	ErrInvalidAmount      = fmt.Errorf("%w: amount paid must be non-negative, below 1e10, with at most 2 decimals", ErrInvalidInput)
	ErrInvalidCapacity    = fmt.Errorf("%w: capacity must be a non-negative integer within range", ErrInvalidInput)
	ErrInvalidPrice       = fmt.Errorf("%w: tier price cannot be negative", ErrInvalidInput)
	ErrInvalidTitle       = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrInvalidEventDate   = fmt.Errorf("%w: event date is required", ErrInvalidInput)
	ErrInvalidEventStatus = fmt.Errorf("%w: unknown event status", ErrInvalidInput)
	ErrInvalidStatus      = fmt.Errorf("%w: unknown booking status", ErrInvalidInput)
	ErrReasonRequired     = fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	ErrInvalidRating      = fmt.Errorf("%w: rating out of range", ErrInvalidInput)
	ErrInvalidCredential  = fmt.Errorf("%w: ticket credential is required", ErrInvalidInput)

	// Seat
	ErrSeatTaken  = fmt.Errorf("%w: seat is already booked", ErrSeatConflict)
	ErrSeatLocked = fmt.Errorf("%w: seat is being booked by another request", ErrSeatConflict)

	// Transition
	ErrBookingCancelled = fmt.Errorf("%w: booking is cancelled", ErrInvalidTransition)

	// Authorization
	ErrNotEventOrganizer = fmt.Errorf("%w: requestor is not the event organizer", ErrForbidden)
	ErrNotBookingOwner   = fmt.Errorf("%w: requestor cannot view this booking", ErrForbidden)
	ErrNotCheckedIn      = fmt.Errorf("%w: a checked-in booking is required to review this event", ErrForbidden)

	// Conflict
	ErrReviewExists     = fmt.Errorf("%w: review already exists for this event", ErrConflict)
	ErrCredentialExists = fmt.Errorf("%w: ticket credential already issued", ErrConflict)
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSeatConflictError checks if the error is a double-booking error
func IsSeatConflictError(err error) bool {
	return errors.Is(err, ErrSeatConflict)
}

// IsTransitionError checks if the error is an illegal status change
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsForbiddenError checks if the error is an authorization or eligibility failure
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsConflictError checks if the error is a duplicate-record error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// TransitionError describes a rejected booking status change
type TransitionError struct {
	From   BookingStatus
	Action BookingAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s a %s booking", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
