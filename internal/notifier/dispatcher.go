// Package notifier broadcasts domain notifications to external sinks on a
// best-effort, at-most-once basis.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sink delivers a notification to one transport
type Sink interface {
	Name() string
	Publish(ctx context.Context, n *domain.Notification) error
	Close() error
}

// Config holds dispatcher settings
type Config struct {
	BufferSize     int
	Workers        int
	PublishTimeout time.Duration
}

// DefaultConfig returns default dispatcher settings
func DefaultConfig() *Config {
	return &Config{
		BufferSize:     1024,
		Workers:        4,
		PublishTimeout: 3 * time.Second,
	}
}

type envelope struct {
	spanCtx trace.SpanContext
	n       *domain.Notification
}

// Dispatcher fans notifications out to every sink from a bounded queue.
// Notify never blocks the caller; a full queue drops the notification.
type Dispatcher struct {
	config  *Config
	sinks   []Sink
	queue   chan envelope
	log     *logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(cfg *Config, log *logger.Logger, m *metrics.Metrics, sinks ...Sink) *Dispatcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultConfig().PublishTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}

	d := &Dispatcher{
		config:  cfg,
		sinks:   sinks,
		queue:   make(chan envelope, cfg.BufferSize),
		log:     log,
		metrics: m,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Notify enqueues n for delivery. It returns immediately.
func (d *Dispatcher) Notify(ctx context.Context, n *domain.Notification) {
	if n == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.NotificationsDropped.Inc()
		return
	}

	select {
	case d.queue <- envelope{spanCtx: trace.SpanContextFromContext(ctx), n: n}:
		d.metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
	default:
		d.metrics.NotificationsDropped.Inc()
		d.log.Warn("notification dropped, queue full",
			zap.String("type", string(n.Type)),
			zap.String("key", n.Key),
		)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for env := range d.queue {
		d.metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
		d.deliver(env)
	}
}

func (d *Dispatcher) deliver(env envelope) {
	// Detached from the request so delivery outlives it, but keeps the trace
	base := trace.ContextWithSpanContext(context.Background(), env.spanCtx)

	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(base, d.config.PublishTimeout)
		err := safePublish(ctx, sink, env.n)
		cancel()

		if err != nil {
			d.metrics.NotificationsSent.WithLabelValues(sink.Name(), "error").Inc()
			d.log.Warn("notification publish failed",
				zap.String("sink", sink.Name()),
				zap.String("type", string(env.n.Type)),
				zap.String("key", env.n.Key),
				zap.Error(err),
			)
			continue
		}
		d.metrics.NotificationsSent.WithLabelValues(sink.Name(), "ok").Inc()
	}
}

// safePublish keeps a panicking sink from killing the worker
func safePublish(ctx context.Context, sink Sink, n *domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Publish(ctx, n)
}

// Close stops accepting notifications, drains the queue and closes the sinks.
// Pending deliveries are abandoned when ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	for _, sink := range d.sinks {
		if cerr := sink.Close(); cerr != nil {
			d.log.Warn("failed to close notification sink", zap.String("sink", sink.Name()), zap.Error(cerr))
		}
	}
	return err
}

// Noop discards every notification
type Noop struct{}

// Notify is a no-op
func (Noop) Notify(ctx context.Context, n *domain.Notification) {}
