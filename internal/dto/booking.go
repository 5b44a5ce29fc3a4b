package dto

import (
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest represents request to book one seat
type CreateBookingRequest struct {
	EventID          string          `json:"event_id" binding:"required,notblank"`
	SeatType         string          `json:"seat_type" binding:"required,notblank"`
	SeatNumber       string          `json:"seat_number" binding:"required,notblank"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	AttendeeName     string          `json:"attendee_name,omitempty"`
	TicketCredential string          `json:"ticket_credential,omitempty"`
}

// UpdateBookingStatusRequest represents an organizer status change
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// VerifyTicketRequest represents a ticket scan at the venue
type VerifyTicketRequest struct {
	Credential string `json:"credential" binding:"required,notblank"`
}

// VerifyTicketResponse represents the outcome of a ticket scan
type VerifyTicketResponse struct {
	Ticket           domain.TicketView `json:"ticket"`
	AlreadyCheckedIn bool              `json:"already_checked_in"`
}
