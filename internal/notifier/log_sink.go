package notifier

import (
	"context"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.uber.org/zap"
)

// LogSink writes every notification to the structured log
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a log sink
func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogSink{log: log}
}

// Name implements Sink
func (s *LogSink) Name() string { return "log" }

// Publish implements Sink
func (s *LogSink) Publish(ctx context.Context, n *domain.Notification) error {
	s.log.Info("domain notification",
		zap.String("type", string(n.Type)),
		zap.String("key", n.Key),
		zap.Any("payload", n.Payload),
		zap.String("trace_id", telemetry.GetTraceID(ctx)),
	)
	return nil
}

// Close implements Sink
func (s *LogSink) Close() error { return nil }
