package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/database"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `id::text, organizer_id, title, venue, date,
	COALESCE(time, '') as time,
	category,
	COALESCE(description, '') as description,
	COALESCE(banner_ref, '') as banner_ref,
	seat_vip, seat_regular, seat_total,
	COALESCE(price, '{}'::jsonb) as price,
	status, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		priceJSON []byte
		status    string
	)

	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Venue,
		&event.Date,
		&event.Time,
		&event.Category,
		&event.Description,
		&event.BannerRef,
		&event.SeatMap.VIP,
		&event.SeatMap.Regular,
		&event.SeatMap.Total,
		&priceJSON,
		&status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = domain.EventStatus(status)
	if len(priceJSON) > 0 {
		if err := json.Unmarshal(priceJSON, &event.Price); err != nil {
			return nil, fmt.Errorf("failed to decode event price: %w", err)
		}
	}
	return event, nil
}

func encodePrice(event *domain.Event) ([]byte, error) {
	if event.Price == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(event.Price)
}

// Create stores a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("organizer_id", event.OrganizerID),
	)

	price, err := encodePrice(event)
	if err != nil {
		return fmt.Errorf("failed to encode event price: %w", err)
	}

	query := `
		INSERT INTO events (
			id, organizer_id, title, venue, date, time, category, description,
			banner_ref, seat_vip, seat_regular, seat_total, price, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16
		)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Title,
		event.Venue,
		event.Date,
		nullString(event.Time),
		event.Category,
		nullString(event.Description),
		nullString(event.BannerRef),
		event.SeatMap.VIP,
		event.SeatMap.Regular,
		event.SeatMap.Total,
		price,
		event.Status.String(),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if database.IsUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List returns events matching filter, newest first
func (r *PostgresEventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status.String())
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if filter.OrganizerID != "" {
		args = append(args, filter.OrganizerID)
		conditions = append(conditions, fmt.Sprintf("organizer_id = $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// Update overwrites the mutable fields of an existing event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	price, err := encodePrice(event)
	if err != nil {
		return fmt.Errorf("failed to encode event price: %w", err)
	}

	query := `
		UPDATE events SET
			title = $2, venue = $3, date = $4, time = $5, category = $6,
			description = $7, banner_ref = $8, seat_vip = $9, seat_regular = $10,
			seat_total = $11, price = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Venue,
		event.Date,
		nullString(event.Time),
		event.Category,
		nullString(event.Description),
		nullString(event.BannerRef),
		event.SeatMap.VIP,
		event.SeatMap.Regular,
		event.SeatMap.Total,
		price,
		event.UpdatedAt,
	)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateStatus sets the moderation status and returns the updated event
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("status", status.String()),
	)

	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id, status.String(), time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidUUID(err) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// CountByStatus counts events per moderation status
func (r *PostgresEventRepository) CountByStatus(ctx context.Context) (map[domain.EventStatus]int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.count_by_status")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.EventStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[domain.EventStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event counts: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return counts, nil
}

// nullString converts empty strings to NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
