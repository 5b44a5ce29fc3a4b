package service

import (
	"context"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
)

// Notifier receives domain notifications after the triggering write commits.
// Implementations must not block and must not report failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, n *domain.Notification) {}

// Clock returns the current time
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
