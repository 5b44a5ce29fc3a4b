package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CheckInGate decides whether a user may review an event. It reads the
// ledger on every call.
type CheckInGate struct {
	bookingRepo repository.BookingRepository
	policy      domain.ReviewEligibility
}

// NewCheckInGate creates a gate with the given eligibility policy
func NewCheckInGate(bookingRepo repository.BookingRepository, policy domain.ReviewEligibility) *CheckInGate {
	if !policy.IsValid() {
		policy = domain.EligibilityEverCheckedIn
	}
	return &CheckInGate{bookingRepo: bookingRepo, policy: policy}
}

// CanReview reports whether userID holds a checked-in booking for eventID
func (g *CheckInGate) CanReview(ctx context.Context, userID, eventID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(eventID) == "" {
		return false, nil
	}
	return g.bookingRepo.HasCheckedIn(ctx, userID, eventID, g.policy)
}

// ReviewService defines the interface for the review registry
type ReviewService interface {
	// AddReview records the actor's single review of an attended event
	AddReview(ctx context.Context, actor domain.Actor, eventID string, rating int, comment string) (*domain.Review, error)

	// CanReview reports whether the user may review the event
	CanReview(ctx context.Context, userID, eventID string) (bool, error)

	// ListReviewsForEvent lists an event's reviews, newest first
	ListReviewsForEvent(ctx context.Context, eventID string) ([]*domain.Review, error)

	// ListReviewsForUser lists a user's reviews, newest first
	ListReviewsForUser(ctx context.Context, userID string) ([]*domain.Review, error)

	// DeleteReview removes a review. Authorization belongs to the caller.
	DeleteReview(ctx context.Context, reviewID string) error
}

// ReviewServiceConfig contains configuration for review service
type ReviewServiceConfig struct {
	RatingRange domain.RatingRange
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	eventRepo   repository.EventRepository
	gate        *CheckInGate
	metrics     *metrics.Metrics
	ratingRange domain.RatingRange
	now         Clock
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	eventRepo repository.EventRepository,
	gate *CheckInGate,
	m *metrics.Metrics,
	cfg *ReviewServiceConfig,
) ReviewService {
	rng := domain.DefaultRatingRange
	if cfg != nil && cfg.RatingRange.Min <= cfg.RatingRange.Max && cfg.RatingRange != (domain.RatingRange{}) {
		rng = cfg.RatingRange
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &reviewService{
		reviewRepo:  reviewRepo,
		eventRepo:   eventRepo,
		gate:        gate,
		metrics:     m,
		ratingRange: rng,
		now:         systemClock,
	}
}

// AddReview records the actor's single review of an attended event
func (s *reviewService) AddReview(ctx context.Context, actor domain.Actor, eventID string, rating int, comment string) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.add")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", actor.UserID),
		attribute.String("event_id", eventID),
	)

	review := &domain.Review{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		EventID:   strings.TrimSpace(eventID),
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}
	if err := review.Validate(s.ratingRange); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, review.EventID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ok, err := s.gate.CanReview(ctx, review.UserID, review.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		span.SetStatus(codes.Error, "not checked in")
		return nil, domain.ErrNotCheckedIn
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.ReviewsCreated.Inc()
	span.SetStatus(codes.Ok, "")
	return review, nil
}

// CanReview reports whether the user may review the event
func (s *reviewService) CanReview(ctx context.Context, userID, eventID string) (bool, error) {
	return s.gate.CanReview(ctx, userID, eventID)
}

// ListReviewsForEvent lists an event's reviews, newest first
func (s *reviewService) ListReviewsForEvent(ctx context.Context, eventID string) ([]*domain.Review, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByEvent(ctx, eventID)
}

// ListReviewsForUser lists a user's reviews, newest first
func (s *reviewService) ListReviewsForUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUserID
	}
	return s.reviewRepo.ListByUser(ctx, userID)
}

// DeleteReview removes a review
func (s *reviewService) DeleteReview(ctx context.Context, reviewID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.review.delete")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", reviewID))
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
