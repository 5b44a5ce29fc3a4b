package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/database"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Constraint names from migrations/0001_init.sql
const (
	constraintActiveSeat = "bookings_active_seat_key"
	constraintQRCode     = "bookings_qr_code_key"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool.
// Seat exclusivity is enforced by a partial unique index over non-cancelled bookings.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `id::text, user_id, event_id::text, seat_type, seat_number,
	amount_paid::text, qr_code,
	COALESCE(attendee_name, '') as attendee_name,
	status,
	COALESCE(cancellation_reason, '') as cancellation_reason,
	checked_in_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		amount      string
		status      string
		checkedInAt *time.Time
	)

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.SeatType,
		&booking.SeatNumber,
		&amount,
		&booking.QRCode,
		&booking.AttendeeName,
		&status,
		&booking.CancellationReason,
		&checkedInAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.AmountPaid, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount_paid %q: %w", amount, err)
	}
	booking.Status = domain.BookingStatus(status)
	booking.CheckedInAt = checkedInAt
	return booking, nil
}

// Create creates a new booking record in the database
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("user_id", booking.UserID),
		attribute.String("event_id", booking.EventID),
		attribute.String("seat", booking.SeatKey().String()),
	)

	query := `
		INSERT INTO bookings (
			id, user_id, event_id, seat_type, seat_number, amount_paid,
			qr_code, attendee_name, status, cancellation_reason, checked_in_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::numeric,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.SeatType,
		booking.SeatNumber,
		booking.AmountPaid.String(),
		booking.QRCode,
		nullString(booking.AttendeeName),
		booking.Status.String(),
		nullString(booking.CancellationReason),
		booking.CheckedInAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if database.IsUniqueViolation(err) {
			switch database.ConstraintName(err) {
			case constraintActiveSeat:
				return domain.ErrSeatTaken
			case constraintQRCode:
				return domain.ErrCredentialExists
			}
			return domain.ErrConflict
		}
		if database.IsInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	return r.getOne(ctx, span, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByCredential retrieves a booking by its ticket credential
func (r *PostgresBookingRepository) GetByCredential(ctx context.Context, credential string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_credential")
	defer span.End()

	return r.getOne(ctx, span, `SELECT `+bookingColumns+` FROM bookings WHERE qr_code = $1`, credential)
}

func (r *PostgresBookingRepository) getOne(ctx context.Context, span trace.Span, query string, arg string) (*domain.Booking, error) {
	booking, err := scanBooking(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByUser returns a user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, span, query, userID)
}

// ListByEvent returns an event's bookings, newest first
func (r *PostgresBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = $1 ORDER BY created_at DESC, id DESC`
	bookings, err := r.list(ctx, span, query, eventID)
	if err != nil && database.IsInvalidUUID(err) {
		return []*domain.Booking{}, nil
	}
	return bookings, err
}

func (r *PostgresBookingRepository) list(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// Mutate locks the booking row, applies fn and writes the result in one transaction
func (r *PostgresBookingRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.mutate")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	var updated *domain.Booking
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanBooking(tx.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidUUID(err) {
				return domain.ErrBookingNotFound
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE bookings SET
				status = $2, cancellation_reason = $3, checked_in_at = $4, updated_at = $5
			WHERE id = $1
		`,
			id,
			next.Status.String(),
			nullString(next.CancellationReason),
			next.CheckedInAt,
			next.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if !domain.IsNotFoundError(err) && !domain.IsTransitionError(err) && !domain.IsValidationError(err) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("status", updated.Status.String()))
	span.SetStatus(codes.Ok, "")
	return updated, nil
}

// HasCheckedIn reports whether the user holds a qualifying booking for the event
func (r *PostgresBookingRepository) HasCheckedIn(ctx context.Context, userID, eventID string, policy domain.ReviewEligibility) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.has_checked_in")
	defer span.End()

	query := `SELECT EXISTS (
		SELECT 1 FROM bookings WHERE user_id = $1 AND event_id = $2 AND status = 'checked_in'
	)`
	if policy == domain.EligibilityEverCheckedIn {
		query = `SELECT EXISTS (
			SELECT 1 FROM bookings WHERE user_id = $1 AND event_id = $2
			AND (status = 'checked_in' OR checked_in_at IS NOT NULL)
		)`
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, eventID).Scan(&exists); err != nil {
		if database.IsInvalidUUID(err) {
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

const summaryColumns = `
	COALESCE(SUM(amount_paid) FILTER (WHERE status IN ('confirmed', 'checked_in')), 0)::text,
	COUNT(*) FILTER (WHERE status IN ('confirmed', 'checked_in')),
	COUNT(*) FILTER (WHERE status = 'checked_in'),
	COUNT(*) FILTER (WHERE status = 'cancelled'),
	COUNT(*) FILTER (WHERE status = 'pending')`

func scanSummary(dest []interface{}, s *domain.SalesSummary) ([]interface{}, *string) {
	var revenue string
	return append(dest, &revenue, &s.TicketsSold, &s.CheckedIn, &s.Cancelled, &s.PendingApprovals), &revenue
}

// SummarizeByEvent aggregates the ledger per event
func (r *PostgresBookingRepository) SummarizeByEvent(ctx context.Context, eventIDs []string) (map[string]domain.SalesSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.summarize_by_event")
	defer span.End()

	span.SetAttributes(attribute.Int("event_count", len(eventIDs)))

	out := make(map[string]domain.SalesSummary)
	if len(eventIDs) == 0 {
		return out, nil
	}

	query := `SELECT event_id::text, ` + summaryColumns + `
		FROM bookings WHERE event_id = ANY($1::uuid[]) GROUP BY event_id`

	rows, err := r.pool.Query(ctx, query, eventIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to summarize bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID string
			summary domain.SalesSummary
		)
		dest, revenue := scanSummary([]interface{}{&eventID}, &summary)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if summary.Revenue, err = decimal.NewFromString(*revenue); err != nil {
			return nil, fmt.Errorf("failed to parse revenue: %w", err)
		}
		out[eventID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// Summarize aggregates the whole ledger
func (r *PostgresBookingRepository) Summarize(ctx context.Context) (domain.SalesSummary, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.summarize")
	defer span.End()

	var (
		summary domain.SalesSummary
		total   int
	)
	dest, revenue := scanSummary([]interface{}{&total}, &summary)

	query := `SELECT COUNT(*), ` + summaryColumns + ` FROM bookings`
	if err := r.pool.QueryRow(ctx, query).Scan(dest...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.SalesSummary{}, 0, fmt.Errorf("failed to summarize bookings: %w", err)
	}

	var err error
	if summary.Revenue, err = decimal.NewFromString(*revenue); err != nil {
		return domain.SalesSummary{}, 0, fmt.Errorf("failed to parse revenue: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return summary, total, nil
}
