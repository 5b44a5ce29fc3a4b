package domain

import "github.com/shopspring/decimal"

// SalesSummary aggregates the ledger of one or more events.
// Revenue and TicketsSold count confirmed and checked_in bookings only.
type SalesSummary struct {
	Revenue          decimal.Decimal `json:"revenue"`
	TicketsSold      int             `json:"tickets_sold"`
	CheckedIn        int             `json:"checked_in"`
	Cancelled        int             `json:"cancelled"`
	PendingApprovals int             `json:"pending_approvals"`
}

// Add folds one booking into the summary
func (s *SalesSummary) Add(b *Booking) {
	switch b.Status {
	case BookingStatusPending:
		s.PendingApprovals++
	case BookingStatusCancelled:
		s.Cancelled++
	case BookingStatusCheckedIn:
		s.CheckedIn++
	}
	if b.Status.CountsAsSold() {
		s.Revenue = s.Revenue.Add(b.AmountPaid)
		s.TicketsSold++
	}
}

// Merge adds other into s
func (s *SalesSummary) Merge(other SalesSummary) {
	s.Revenue = s.Revenue.Add(other.Revenue)
	s.TicketsSold += other.TicketsSold
	s.CheckedIn += other.CheckedIn
	s.Cancelled += other.Cancelled
	s.PendingApprovals += other.PendingApprovals
}

// EventSales is the per-event row of the organizer dashboard
type EventSales struct {
	EventID string      `json:"event_id"`
	Title   string      `json:"title"`
	Status  EventStatus `json:"status"`
	SeatMap SeatMap     `json:"seat_map"`
	SalesSummary
}

// OrganizerDashboard is the organizer's view across their events
type OrganizerDashboard struct {
	OrganizerID string       `json:"organizer_id"`
	TotalEvents int          `json:"total_events"`
	Events      []EventSales `json:"events"`
	SalesSummary
}

// AdminStats is the platform-wide view
type AdminStats struct {
	EventsByStatus map[EventStatus]int `json:"events_by_status"`
	TotalEvents    int                 `json:"total_events"`
	TotalBookings  int                 `json:"total_bookings"`
	TotalReviews   int                 `json:"total_reviews"`
	SalesSummary
}
