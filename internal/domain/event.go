package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus represents the moderation status of an event
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

func (s EventStatus) String() string {
	return string(s)
}

// Event represents an event entity
type Event struct {
	ID          string                     `json:"id"`
	OrganizerID string                     `json:"organizer_id"`
	Title       string                     `json:"title"`
	Venue       string                     `json:"venue"`
	Date        time.Time                  `json:"date"`
	Time        string                     `json:"time,omitempty"`
	Category    string                     `json:"category"`
	Description string                     `json:"description,omitempty"`
	BannerRef   string                     `json:"banner_ref,omitempty"`
	SeatMap     SeatMap                    `json:"seat_map"`
	Price       map[string]decimal.Decimal `json:"price"`
	Status      EventStatus                `json:"status"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Validate checks the fields every persisted event must carry
func (e *Event) Validate() error {
	if strings.TrimSpace(e.OrganizerID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrInvalidTitle
	}
	if e.Date.IsZero() {
		return ErrInvalidEventDate
	}
	if !e.Status.IsValid() {
		return ErrInvalidEventStatus
	}
	return ValidatePrices(e.Price)
}

// ValidatePrices rejects negative tier prices
func ValidatePrices(prices map[string]decimal.Decimal) error {
	for _, p := range prices {
		if p.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

// PriceFor returns the listed price of a tier, zero when the tier has no price
func (e *Event) PriceFor(tier string) decimal.Decimal {
	return e.Price[tier]
}

// EventUpdate is a partial update. Nil fields keep the current value.
type EventUpdate struct {
	Title       *string
	Venue       *string
	Date        *time.Time
	Time        *string
	Category    *string
	Description *string
	BannerRef   *string
	Capacity    *CapacityInput
	// Price entries are merged into the existing price list
	Price map[string]decimal.Decimal
}

// IsEmpty reports whether the update changes nothing
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Venue == nil && u.Date == nil && u.Time == nil &&
		u.Category == nil && u.Description == nil && u.BannerRef == nil &&
		u.Capacity == nil && len(u.Price) == 0
}

// Apply returns a copy of e with the update merged in
func (u EventUpdate) Apply(e *Event, now time.Time) (*Event, error) {
	next := *e
	next.Price = make(map[string]decimal.Decimal, len(e.Price)+len(u.Price))
	for k, v := range e.Price {
		next.Price[k] = v
	}

	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Venue != nil {
		next.Venue = *u.Venue
	}
	if u.Date != nil {
		next.Date = *u.Date
	}
	if u.Time != nil {
		next.Time = *u.Time
	}
	if u.Category != nil {
		next.Category = *u.Category
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.BannerRef != nil {
		next.BannerRef = *u.BannerRef
	}
	if u.Capacity != nil {
		sm, ok, err := NewSeatMap(u.Capacity)
		if err != nil {
			return nil, err
		}
		if ok {
			next.SeatMap = sm
		}
	}
	for k, v := range u.Price {
		next.Price[k] = v
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return &next, nil
}

// EventFilter narrows event listings. Empty fields match everything.
type EventFilter struct {
	Status      EventStatus
	Category    string
	OrganizerID string
}

// Matches reports whether e passes the filter
func (f EventFilter) Matches(e *Event) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
		return false
	}
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	return true
}
