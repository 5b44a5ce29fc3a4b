package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryEventRepository implements EventRepository using in-memory storage.
// Used when PostgreSQL is unavailable and in tests.
type MemoryEventRepository struct {
	events map[string]*domain.Event
	mu     sync.RWMutex
}

// NewMemoryEventRepository creates a new in-memory event repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[string]*domain.Event),
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Price = make(map[string]decimal.Decimal, len(e.Price))
	for k, v := range e.Price {
		c.Price[k] = v
	}
	return &c
}

// Create stores a new event
func (r *MemoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; exists {
		return domain.ErrConflict
	}
	r.events[event.ID] = cloneEvent(event)
	return nil
}

// GetByID retrieves an event by its ID
func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.events[id]
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

// List returns events matching filter, newest first
func (r *MemoryEventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		if filter.Matches(e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update overwrites the mutable fields of an existing event
func (r *MemoryEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.events[event.ID]
	if !exists {
		return domain.ErrEventNotFound
	}

	next := cloneEvent(event)
	// Ownership, status and creation time are not editable here
	next.OrganizerID = current.OrganizerID
	next.Status = current.Status
	next.CreatedAt = current.CreatedAt
	r.events[event.ID] = next
	return nil
}

// UpdateStatus sets the moderation status and returns the updated event
func (r *MemoryEventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.events[id]
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

// CountByStatus counts events per moderation status
func (r *MemoryEventRepository) CountByStatus(ctx context.Context) (map[domain.EventStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.EventStatus]int)
	for _, e := range r.events {
		counts[e.Status]++
	}
	return counts, nil
}
