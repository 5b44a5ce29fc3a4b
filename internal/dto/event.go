package dto

import (
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateEventRequest represents request to create an event
type CreateEventRequest struct {
	Title       string                     `json:"title" binding:"required,notblank"`
	Venue       string                     `json:"venue" binding:"required,notblank"`
	Date        time.Time                  `json:"date" binding:"required"`
	Time        string                     `json:"time,omitempty"`
	Category    string                     `json:"category" binding:"required,notblank"`
	Description string                     `json:"description,omitempty"`
	BannerRef   string                     `json:"banner_ref,omitempty"`
	Capacity    *domain.CapacityInput      `json:"capacity,omitempty"`
	Price       map[string]decimal.Decimal `json:"price,omitempty"`
}

// UpdateEventRequest represents a partial event update. Omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string                    `json:"title,omitempty" binding:"omitempty,notblank"`
	Venue       *string                    `json:"venue,omitempty"`
	Date        *time.Time                 `json:"date,omitempty"`
	Time        *string                    `json:"time,omitempty"`
	Category    *string                    `json:"category,omitempty"`
	Description *string                    `json:"description,omitempty"`
	BannerRef   *string                    `json:"banner_ref,omitempty"`
	Capacity    *domain.CapacityInput      `json:"capacity,omitempty"`
	Price       map[string]decimal.Decimal `json:"price,omitempty"`
}

// ToDomain converts the request into a domain partial update
func (r *UpdateEventRequest) ToDomain() domain.EventUpdate {
	return domain.EventUpdate{
		Title:       r.Title,
		Venue:       r.Venue,
		Date:        r.Date,
		Time:        r.Time,
		Category:    r.Category,
		Description: r.Description,
		BannerRef:   r.BannerRef,
		Capacity:    r.Capacity,
		Price:       r.Price,
	}
}

// ModerateEventRequest represents an admin moderation decision
type ModerateEventRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

// ListEventsQuery represents event listing filters
type ListEventsQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Category    string `form:"category"`
	OrganizerID string `form:"organizer_id"`
}

// ToFilter converts the query into a domain filter
func (q *ListEventsQuery) ToFilter() domain.EventFilter {
	return domain.EventFilter{
		Status:      domain.EventStatus(q.Status),
		Category:    q.Category,
		OrganizerID: q.OrganizerID,
	}
}
