package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType names a domain event
type NotificationType string

const (
	NotificationNewBooking   NotificationType = "newBooking"
	NotificationEventCreated NotificationType = "eventCreated"
)

// Notification is a fire-and-forget domain event. Key groups related
// notifications (the event id) for ordered transports.
type Notification struct {
	Type      NotificationType `json:"type"`
	Key       string           `json:"key"`
	Payload   interface{}      `json:"payload"`
	EmittedAt time.Time        `json:"emitted_at"`
}

// NewBookingPayload is broadcast after a booking commits
type NewBookingPayload struct {
	EventTitle   string          `json:"eventTitle"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	SeatType     string          `json:"seatType"`
	SeatNumber   string          `json:"seatNumber"`
	Timestamp    time.Time       `json:"timestamp"`
	CustomerName string          `json:"customerName"`
}

// EventCreatedPayload is broadcast after an event is created
type EventCreatedPayload struct {
	EventID     string    `json:"eventId"`
	Title       string    `json:"title"`
	OrganizerID string    `json:"organizerId"`
	Venue       string    `json:"venue"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewBookingNotification builds the newBooking event for b
func NewBookingNotification(b *Booking, e *Event, customerName string, now time.Time) *Notification {
	if b.AttendeeName != "" {
		customerName = b.AttendeeName
	}
	return &Notification{
		Type: NotificationNewBooking,
		Key:  b.EventID,
		Payload: NewBookingPayload{
			EventTitle:   e.Title,
			AmountPaid:   b.AmountPaid,
			SeatType:     b.SeatType,
			SeatNumber:   b.SeatNumber,
			Timestamp:    now,
			CustomerName: customerName,
		},
		EmittedAt: now,
	}
}

// EventCreatedNotification builds the eventCreated event for e
func EventCreatedNotification(e *Event, now time.Time) *Notification {
	return &Notification{
		Type: NotificationEventCreated,
		Key:  e.ID,
		Payload: EventCreatedPayload{
			EventID:     e.ID,
			Title:       e.Title,
			OrganizerID: e.OrganizerID,
			Venue:       e.Venue,
			Date:        e.Date,
			Category:    e.Category,
			Timestamp:   now,
		},
		EmittedAt: now,
	}
}
