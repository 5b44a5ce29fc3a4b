package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	pkgredis "github.com/prohmpiriya/eventix/pkg/redis"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed scripts/release_seat_lock.lua
var releaseSeatLockScript string

const scriptReleaseSeatLock = "release_seat_lock"

// releaseTimeout bounds the unlock call, which runs after the request context may be done
const releaseTimeout = 2 * time.Second

// RedisSeatLocker implements SeatLocker with SET NX PX and a token-checked release
type RedisSeatLocker struct {
	client   *pkgredis.Client
	newToken func() string
}

// NewRedisSeatLocker creates a new RedisSeatLocker
func NewRedisSeatLocker(client *pkgredis.Client) *RedisSeatLocker {
	return &RedisSeatLocker{client: client, newToken: uuid.NewString}
}

// LoadScripts loads the unlock script into Redis
func (l *RedisSeatLocker) LoadScripts(ctx context.Context) error {
	if _, err := l.client.LoadScript(ctx, scriptReleaseSeatLock, releaseSeatLockScript); err != nil {
		return fmt.Errorf("failed to load script %s: %w", scriptReleaseSeatLock, err)
	}
	return nil
}

// SeatLockKey builds the Redis key guarding one seat
func SeatLockKey(key domain.SeatKey) string {
	return fmt.Sprintf("seat:lock:%s:%s:%s", key.EventID, key.SeatType, key.SeatNumber)
}

// Acquire takes the seat lock for ttl. It returns domain.ErrSeatLocked when
// another request holds it.
func (l *RedisSeatLocker) Acquire(ctx context.Context, key domain.SeatKey, ttl time.Duration) (func(), error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.acquire")
	defer span.End()

	lockKey := SeatLockKey(key)
	token := l.newToken()
	span.SetAttributes(attribute.String("lock_key", lockKey))

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to acquire seat lock: %w", err)
	}
	if !ok {
		span.SetStatus(codes.Error, "seat locked")
		return nil, domain.ErrSeatLocked
	}

	span.SetStatus(codes.Ok, "")
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		// An expired lock is simply gone; nothing to report
		_ = l.client.EvalWithFallback(rctx, scriptReleaseSeatLock, releaseSeatLockScript, []string{lockKey}, token).Err()
	}
	return release, nil
}
