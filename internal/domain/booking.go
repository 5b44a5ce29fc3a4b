package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// IsActive reports whether a booking in this status holds its seat
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusCancelled
}

// CountsAsSold reports whether the booking counts toward revenue and tickets sold
func (s BookingStatus) CountsAsSold() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCheckedIn
}

// BookingAction is an input to the booking state machine
type BookingAction string

const (
	ActionConfirm BookingAction = "confirm"
	ActionCheckIn BookingAction = "check-in"
	ActionCancel  BookingAction = "cancel"
)

// Transition is the booking state machine:
//
//	pending   --confirm--> confirmed --check-in--> checked_in
//	pending | confirmed | checked_in --cancel--> cancelled
//
// cancelled is terminal.
func Transition(from BookingStatus, action BookingAction) (BookingStatus, error) {
	switch {
	case from == BookingStatusPending && action == ActionConfirm:
		return BookingStatusConfirmed, nil
	case from == BookingStatusConfirmed && action == ActionCheckIn:
		return BookingStatusCheckedIn, nil
	case from != BookingStatusCancelled && from.IsValid() && action == ActionCancel:
		return BookingStatusCancelled, nil
	}
	return from, &TransitionError{From: from, Action: action}
}

// ActionFor maps a requested target status onto the action that reaches it
func ActionFor(target BookingStatus) (BookingAction, error) {
	switch target {
	case BookingStatusConfirmed:
		return ActionConfirm, nil
	case BookingStatusCheckedIn:
		return ActionCheckIn, nil
	case BookingStatusCancelled:
		return ActionCancel, nil
	case BookingStatusPending:
		// Nothing transitions into pending
		return "", ErrInvalidTransition
	}
	return "", ErrInvalidStatus
}

// Booking represents a booking entity
type Booking struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	EventID            string          `json:"event_id"`
	SeatType           string          `json:"seat_type"`
	SeatNumber         string          `json:"seat_number"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	QRCode             string          `json:"qr_code"`
	AttendeeName       string          `json:"attendee_name,omitempty"`
	Status             BookingStatus   `json:"status"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CheckedInAt        *time.Time      `json:"checked_in_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// AmountScale is the number of fractional digits an amount may carry
const AmountScale = 2

// maxAmountPaid is the exclusive upper bound of amount_paid (NUMERIC(12, 2))
var maxAmountPaid = decimal.New(1, 10)

// Validate validates the fields required to create a booking
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(b.EventID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(b.SeatType) == "" {
		return ErrInvalidSeatType
	}
	if strings.TrimSpace(b.SeatNumber) == "" {
		return ErrInvalidSeatNumber
	}
	if b.AmountPaid.IsNegative() ||
		!b.AmountPaid.Equal(b.AmountPaid.Truncate(AmountScale)) ||
		b.AmountPaid.GreaterThanOrEqual(maxAmountPaid) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(b.QRCode) == "" {
		return ErrInvalidCredential
	}
	if !b.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// SeatKey identifies the physical seat a booking occupies
func (b *Booking) SeatKey() SeatKey {
	return SeatKey{EventID: b.EventID, SeatType: b.SeatType, SeatNumber: b.SeatNumber}
}

// Apply runs action against the booking and returns the resulting copy.
// A cancel action requires a non-empty reason.
func (b *Booking) Apply(action BookingAction, reason string, now time.Time) (*Booking, error) {
	reason = strings.TrimSpace(reason)
	if action == ActionCancel && reason == "" {
		return nil, ErrReasonRequired
	}

	status, err := Transition(b.Status, action)
	if err != nil {
		return nil, err
	}

	next := *b
	next.Status = status
	next.UpdatedAt = now
	switch status {
	case BookingStatusCancelled:
		next.CancellationReason = reason
	case BookingStatusCheckedIn:
		t := now
		next.CheckedInAt = &t
	}
	return &next, nil
}

// CheckIn admits a ticket at the venue. Re-scanning a checked-in ticket is a
// no-op (changed=false); cancelled and pending tickets are rejected.
func (b *Booking) CheckIn(now time.Time) (next *Booking, changed bool, err error) {
	switch b.Status {
	case BookingStatusCheckedIn:
		return b, false, nil
	case BookingStatusCancelled:
		return nil, false, ErrBookingCancelled
	}
	next, err = b.Apply(ActionCheckIn, "", now)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// SeatKey is the (event, tier, seat) tuple that at most one active booking may hold
type SeatKey struct {
	EventID    string
	SeatType   string
	SeatNumber string
}

func (k SeatKey) String() string {
	return k.EventID + ":" + k.SeatType + ":" + k.SeatNumber
}

// TicketView is the attendee-facing projection of a booking
type TicketView struct {
	TicketID           string          `json:"ticket_id"`
	BookingID          string          `json:"booking_id"`
	EventID            string          `json:"event_id"`
	Event              string          `json:"event"`
	Venue              string          `json:"venue"`
	Date               time.Time       `json:"date"`
	Time               string          `json:"time,omitempty"`
	Price              decimal.Decimal `json:"price"`
	ListedPrice        decimal.Decimal `json:"listed_price"`
	SeatType           string          `json:"seat_type"`
	Seat               string          `json:"seat"`
	AttendeeName       string          `json:"attendee_name,omitempty"`
	Status             BookingStatus   `json:"status"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	BookedAt           time.Time       `json:"booked_at"`
}

// NewTicketView projects b with its event details. e may be nil when the event is gone.
func NewTicketView(b *Booking, e *Event) TicketView {
	v := TicketView{
		TicketID:           b.QRCode,
		BookingID:          b.ID,
		EventID:            b.EventID,
		Price:              b.AmountPaid,
		SeatType:           b.SeatType,
		Seat:               b.SeatNumber,
		AttendeeName:       b.AttendeeName,
		Status:             b.Status,
		CancellationReason: b.CancellationReason,
		BookedAt:           b.CreatedAt,
	}
	if e != nil {
		v.Event = e.Title
		v.Venue = e.Venue
		v.Date = e.Date
		v.Time = e.Time
		v.ListedPrice = e.PriceFor(b.SeatType)
	}
	return v
}
