package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/prohmpiriya/eventix/internal/domain"
)

type reviewKey struct {
	userID  string
	eventID string
}

// MemoryReviewRepository implements ReviewRepository using in-memory storage
type MemoryReviewRepository struct {
	reviews map[string]*domain.Review
	byPair  map[reviewKey]string // (user, event) -> reviewID
	mu      sync.RWMutex
}

// NewMemoryReviewRepository creates a new in-memory review repository
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{
		reviews: make(map[string]*domain.Review),
		byPair:  make(map[reviewKey]string),
	}
}

// Create stores a review
func (r *MemoryReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reviewKey{userID: review.UserID, eventID: review.EventID}
	if _, exists := r.byPair[key]; exists {
		return domain.ErrReviewExists
	}

	c := *review
	r.reviews[review.ID] = &c
	r.byPair[key] = review.ID
	return nil
}

// Delete removes a review
func (r *MemoryReviewRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, exists := r.reviews[id]
	if !exists {
		return domain.ErrReviewNotFound
	}
	delete(r.byPair, reviewKey{userID: review.UserID, eventID: review.EventID})
	delete(r.reviews, id)
	return nil
}

// ListByEvent returns an event's reviews, newest first
func (r *MemoryReviewRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Review, error) {
	return r.list(func(rv *domain.Review) bool { return rv.EventID == eventID }), nil
}

// ListByUser returns a user's reviews, newest first
func (r *MemoryReviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	return r.list(func(rv *domain.Review) bool { return rv.UserID == userID }), nil
}

func (r *MemoryReviewRepository) list(match func(*domain.Review) bool) []*domain.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Review, 0)
	for _, rv := range r.reviews {
		if match(rv) {
			c := *rv
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of stored reviews
func (r *MemoryReviewRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reviews), nil
}
