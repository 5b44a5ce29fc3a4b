package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func TestSplitCapacity(t *testing.T) {
	for total := 0; total <= 1000; total++ {
		sm, err := SplitCapacity(total)
		if err != nil {
			t.Fatalf("SplitCapacity(%d) error = %v", total, err)
		}
		wantVIP := (total + 9) / 10
		if sm.VIP != wantVIP {
			t.Fatalf("SplitCapacity(%d).VIP = %d, want ceil(10%%) = %d", total, sm.VIP, wantVIP)
		}
		if sm.VIP+sm.Regular != total || sm.Total != total {
			t.Fatalf("SplitCapacity(%d) = %+v, pools do not sum to total", total, sm)
		}
	}

	if _, err := SplitCapacity(-1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SplitCapacity(-1) error = %v, want ErrInvalidInput", err)
	}

	sm, err := SplitCapacity(MaxCapacity)
	if err != nil {
		t.Fatalf("SplitCapacity(MaxCapacity) error = %v", err)
	}
	if sm.VIP != (MaxCapacity+9)/10 || sm.VIP+sm.Regular != MaxCapacity {
		t.Errorf("SplitCapacity(MaxCapacity) = %+v", sm)
	}

	for _, total := range []int{MaxCapacity + 1, math.MaxInt64 / 10, math.MaxInt64} {
		if _, err := SplitCapacity(total); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("SplitCapacity(%d) error = %v, want ErrInvalidCapacity", total, err)
		}
	}
}

func TestNewSeatMap(t *testing.T) {
	tests := []struct {
		name    string
		in      *CapacityInput
		want    SeatMap
		wantOK  bool
		wantErr error
	}{
		{"general 100", &CapacityInput{General: intPtr(100)}, SeatMap{VIP: 10, Regular: 90, Total: 100}, true, nil},
		{"general 15", &CapacityInput{General: intPtr(15)}, SeatMap{VIP: 2, Regular: 13, Total: 15}, true, nil},
		{"general 0", &CapacityInput{General: intPtr(0)}, SeatMap{}, true, nil},
		{"general wins over split", &CapacityInput{General: intPtr(10), VIP: intPtr(5)}, SeatMap{VIP: 1, Regular: 9, Total: 10}, true, nil},
		{"pre-split", &CapacityInput{VIP: intPtr(20), Regular: intPtr(30)}, SeatMap{VIP: 20, Regular: 30, Total: 50}, true, nil},
		{"pre-split vip only", &CapacityInput{VIP: intPtr(5)}, SeatMap{VIP: 5, Total: 5}, true, nil},
		{"nil", nil, SeatMap{}, false, nil},
		{"empty", &CapacityInput{}, SeatMap{}, false, nil},
		{"negative general", &CapacityInput{General: intPtr(-5)}, SeatMap{}, false, ErrInvalidCapacity},
		{"negative split", &CapacityInput{VIP: intPtr(-1), Regular: intPtr(3)}, SeatMap{}, false, ErrInvalidCapacity},
		{"general too large", &CapacityInput{General: intPtr(MaxCapacity + 1)}, SeatMap{}, false, ErrInvalidCapacity},
		{"split at limit", &CapacityInput{VIP: intPtr(1), Regular: intPtr(MaxCapacity - 1)}, SeatMap{VIP: 1, Regular: MaxCapacity - 1, Total: MaxCapacity}, true, nil},
		{"split sum too large", &CapacityInput{VIP: intPtr(2), Regular: intPtr(MaxCapacity - 1)}, SeatMap{}, false, ErrInvalidCapacity},
		{"split overflows int", &CapacityInput{VIP: intPtr(math.MaxInt64), Regular: intPtr(1)}, SeatMap{}, false, ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := NewSeatMap(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NewSeatMap() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		action  BookingAction
		want    BookingStatus
		wantErr bool
	}{
		{BookingStatusPending, ActionConfirm, BookingStatusConfirmed, false},
		{BookingStatusConfirmed, ActionCheckIn, BookingStatusCheckedIn, false},
		{BookingStatusPending, ActionCancel, BookingStatusCancelled, false},
		{BookingStatusConfirmed, ActionCancel, BookingStatusCancelled, false},
		{BookingStatusCheckedIn, ActionCancel, BookingStatusCancelled, false},

		{BookingStatusPending, ActionCheckIn, BookingStatusPending, true},
		{BookingStatusConfirmed, ActionConfirm, BookingStatusConfirmed, true},
		{BookingStatusCheckedIn, ActionConfirm, BookingStatusCheckedIn, true},
		{BookingStatusCheckedIn, ActionCheckIn, BookingStatusCheckedIn, true},
		{BookingStatusCancelled, ActionCancel, BookingStatusCancelled, true},
		{BookingStatusCancelled, ActionConfirm, BookingStatusCancelled, true},
		{BookingStatusCancelled, ActionCheckIn, BookingStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := Transition(tt.from, tt.action)
			if tt.wantErr {
				if !IsTransitionError(err) {
					t.Fatalf("error = %v, want ErrInvalidTransition", err)
				}
				var te *TransitionError
				if !errors.As(err, &te) || te.From != tt.from {
					t.Errorf("expected TransitionError from %s, got %v", tt.from, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Transition() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestActionFor(t *testing.T) {
	if _, err := ActionFor(BookingStatusPending); !IsTransitionError(err) {
		t.Errorf("ActionFor(pending) error = %v, want transition error", err)
	}
	if _, err := ActionFor("refunded"); !IsValidationError(err) {
		t.Errorf("ActionFor(refunded) error = %v, want validation error", err)
	}
	if a, err := ActionFor(BookingStatusCheckedIn); err != nil || a != ActionCheckIn {
		t.Errorf("ActionFor(checked_in) = %s, %v", a, err)
	}
}

func newTestBooking(status BookingStatus) *Booking {
	return &Booking{
		ID:         "b-1",
		UserID:     "u-1",
		EventID:    "e-1",
		SeatType:   TierVIP,
		SeatNumber: "A1",
		AmountPaid: decimal.NewFromInt(100),
		QRCode:     "TKT-1",
		Status:     status,
	}
}

func TestBooking_Apply(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cancel requires reason", func(t *testing.T) {
		_, err := newTestBooking(BookingStatusConfirmed).Apply(ActionCancel, "  ", now)
		if !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("error = %v, want ErrReasonRequired", err)
		}
	})

	t.Run("cancel records reason and leaves original untouched", func(t *testing.T) {
		orig := newTestBooking(BookingStatusCheckedIn)
		next, err := orig.Apply(ActionCancel, "no-show refund", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.Status != BookingStatusCancelled || next.CancellationReason != "no-show refund" {
			t.Errorf("next = %+v", next)
		}
		if orig.Status != BookingStatusCheckedIn || orig.CancellationReason != "" {
			t.Error("Apply mutated the original booking")
		}
	})

	t.Run("check-in stamps time", func(t *testing.T) {
		next, err := newTestBooking(BookingStatusConfirmed).Apply(ActionCheckIn, "", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.CheckedInAt == nil || !next.CheckedInAt.Equal(now) {
			t.Errorf("CheckedInAt = %v, want %v", next.CheckedInAt, now)
		}
	})
}

func TestBooking_CheckIn(t *testing.T) {
	now := time.Now()

	next, changed, err := newTestBooking(BookingStatusConfirmed).CheckIn(now)
	if err != nil || !changed || next.Status != BookingStatusCheckedIn {
		t.Errorf("confirmed: %v %v %v", next, changed, err)
	}

	already := newTestBooking(BookingStatusCheckedIn)
	next, changed, err = already.CheckIn(now)
	if err != nil || changed || next != already {
		t.Errorf("checked_in should be idempotent: %v %v %v", next, changed, err)
	}

	if _, _, err = newTestBooking(BookingStatusCancelled).CheckIn(now); !errors.Is(err, ErrBookingCancelled) {
		t.Errorf("cancelled: error = %v, want ErrBookingCancelled", err)
	}
	if _, _, err = newTestBooking(BookingStatusPending).CheckIn(now); !IsTransitionError(err) {
		t.Errorf("pending: error = %v, want transition error", err)
	}
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Booking)
		want   error
	}{
		{"valid", func(b *Booking) {}, nil},
		{"blank seat type", func(b *Booking) { b.SeatType = " " }, ErrInvalidSeatType},
		{"blank seat number", func(b *Booking) { b.SeatNumber = "" }, ErrInvalidSeatNumber},
		{"negative amount", func(b *Booking) { b.AmountPaid = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"zero amount ok", func(b *Booking) { b.AmountPaid = decimal.Zero }, nil},
		{"cents ok", func(b *Booking) { b.AmountPaid = decimal.RequireFromString("10.05") }, nil},
		{"trailing zeros ok", func(b *Booking) { b.AmountPaid = decimal.RequireFromString("10.500") }, nil},
		{"sub-cent amount", func(b *Booking) { b.AmountPaid = decimal.RequireFromString("10.005") }, ErrInvalidAmount},
		{"largest amount", func(b *Booking) { b.AmountPaid = decimal.RequireFromString("9999999999.99") }, nil},
		{"amount too large", func(b *Booking) { b.AmountPaid = decimal.New(1, 10) }, ErrInvalidAmount},
		{"missing event", func(b *Booking) { b.EventID = "" }, ErrInvalidEventID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBooking(BookingStatusConfirmed)
			tt.mutate(b)
			if err := b.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEventUpdate_Apply(t *testing.T) {
	now := time.Now()
	orig := &Event{
		ID:          "e-1",
		OrganizerID: "org-1",
		Title:       "Jazz Night",
		Venue:       "Hall A",
		Date:        now.Add(48 * time.Hour),
		Category:    "music",
		SeatMap:     SeatMap{VIP: 10, Regular: 90, Total: 100},
		Price:       map[string]decimal.Decimal{TierVIP: decimal.NewFromInt(200), TierRegular: decimal.NewFromInt(50)},
		Status:      EventStatusApproved,
	}

	venue := "Hall B"
	next, err := EventUpdate{
		Venue:    &venue,
		Capacity: &CapacityInput{General: intPtr(50)},
		Price:    map[string]decimal.Decimal{TierRegular: decimal.NewFromInt(60)},
	}.Apply(orig, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Venue != "Hall B" || next.Title != "Jazz Night" || next.Category != "music" {
		t.Errorf("unexpected merge result: %+v", next)
	}
	if next.SeatMap != (SeatMap{VIP: 5, Regular: 45, Total: 50}) {
		t.Errorf("SeatMap = %+v", next.SeatMap)
	}
	if !next.Price[TierVIP].Equal(decimal.NewFromInt(200)) || !next.Price[TierRegular].Equal(decimal.NewFromInt(60)) {
		t.Errorf("Price = %v", next.Price)
	}
	if orig.Venue != "Hall A" || !orig.Price[TierRegular].Equal(decimal.NewFromInt(50)) {
		t.Error("Apply mutated the original event")
	}

	blank := ""
	if _, err := (EventUpdate{Title: &blank}).Apply(orig, now); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("blank title error = %v", err)
	}
	if _, err := (EventUpdate{Price: map[string]decimal.Decimal{TierVIP: decimal.NewFromInt(-1)}}).Apply(orig, now); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price error = %v", err)
	}
	if !(EventUpdate{}).IsEmpty() {
		t.Error("zero EventUpdate should be empty")
	}
}

func TestSalesSummary(t *testing.T) {
	var s SalesSummary
	for _, st := range []BookingStatus{BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusPending, BookingStatusCancelled} {
		s.Add(newTestBooking(st))
	}

	if !s.Revenue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Revenue = %s, want 200", s.Revenue)
	}
	if s.TicketsSold != 2 || s.PendingApprovals != 1 || s.Cancelled != 1 || s.CheckedIn != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestNotifications(t *testing.T) {
	now := time.Now()
	e := &Event{ID: "e-1", Title: "Jazz Night", OrganizerID: "org-1", Venue: "Hall A", Date: now, Category: "music"}
	b := newTestBooking(BookingStatusConfirmed)

	n := NewBookingNotification(b, e, "Alice", now)
	p := n.Payload.(NewBookingPayload)
	if n.Type != NotificationNewBooking || n.Key != "e-1" || p.CustomerName != "Alice" || p.EventTitle != "Jazz Night" {
		t.Errorf("newBooking = %+v", n)
	}

	b.AttendeeName = "Bob"
	if p := NewBookingNotification(b, e, "Alice", now).Payload.(NewBookingPayload); p.CustomerName != "Bob" {
		t.Errorf("attendee name should override purchaser, got %q", p.CustomerName)
	}

	c := EventCreatedNotification(e, now)
	if c.Type != NotificationEventCreated || c.Payload.(EventCreatedPayload).OrganizerID != "org-1" {
		t.Errorf("eventCreated = %+v", c)
	}
}
