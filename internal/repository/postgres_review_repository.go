package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/database"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresReviewRepository implements ReviewRepository using PostgreSQL
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

const reviewColumns = `id::text, user_id, event_id::text, rating, COALESCE(comment, '') as comment, created_at`

// Create stores a review
func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("review_id", review.ID),
		attribute.String("event_id", review.EventID),
	)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (id, user_id, event_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		review.ID,
		review.UserID,
		review.EventID,
		review.Rating,
		nullString(review.Comment),
		review.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			span.SetStatus(codes.Error, "duplicate review")
			return domain.ErrReviewExists
		}
		if database.IsInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a review
func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.delete")
	defer span.End()

	result, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.ErrReviewNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByEvent returns an event's reviews, newest first
func (r *PostgresReviewRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.list_by_event")
	defer span.End()

	reviews, err := r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE event_id = $1 ORDER BY created_at DESC, id DESC`, eventID)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return []*domain.Review{}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return reviews, nil
}

// ListByUser returns a user's reviews, newest first
func (r *PostgresReviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.list_by_user")
	defer span.End()

	reviews, err := r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return reviews, nil
}

func (r *PostgresReviewRepository) list(ctx context.Context, query string, arg string) ([]*domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		review := &domain.Review{}
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.EventID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// Count returns the number of stored reviews
func (r *PostgresReviewRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
