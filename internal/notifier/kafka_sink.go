package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/kafka"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
)

// DefaultKafkaTopic receives every domain notification
const DefaultKafkaTopic = "ticketing.domain-events"

// jsonProducer is the subset of kafka.Producer the sink needs
type jsonProducer interface {
	ProduceJSON(ctx context.Context, topic string, key string, data interface{}, headers map[string]string) error
	Ping(ctx context.Context) error
	Close()
}

// KafkaSinkConfig contains configuration for the Kafka sink
type KafkaSinkConfig struct {
	Brokers     []string
	Topic       string
	ClientID    string
	ServiceName string
}

// KafkaSink publishes notifications to a Kafka topic keyed by event id
type KafkaSink struct {
	producer    jsonProducer
	topic       string
	serviceName string
}

// NewKafkaSink connects a producer for the sink
func NewKafkaSink(ctx context.Context, cfg *KafkaSinkConfig) (*KafkaSink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kafka sink config is required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventix-notifier"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newKafkaSink(producer, cfg.Topic, cfg.ServiceName), nil
}

func newKafkaSink(producer jsonProducer, topic, serviceName string) *KafkaSink {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	if serviceName == "" {
		serviceName = "eventix"
	}
	return &KafkaSink{producer: producer, topic: topic, serviceName: serviceName}
}

// Name implements Sink
func (s *KafkaSink) Name() string { return "kafka" }

// Publish implements Sink
func (s *KafkaSink) Publish(ctx context.Context, n *domain.Notification) error {
	headers := telemetry.InjectHeaders(ctx)
	headers["event_type"] = string(n.Type)
	headers["event_id"] = uuid.NewString()
	headers["source"] = s.serviceName
	headers["content_type"] = "application/json"

	if err := s.producer.ProduceJSON(ctx, s.topic, n.Key, n, headers); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", n.Type, err)
	}
	return nil
}

// HealthCheck reports broker reachability for the readiness check
func (s *KafkaSink) HealthCheck(ctx context.Context) error {
	if err := s.producer.Ping(ctx); err != nil {
		return fmt.Errorf("kafka unreachable: %w", err)
	}
	return nil
}

// Close implements Sink
func (s *KafkaSink) Close() error {
	if s.producer != nil {
		s.producer.Close()
	}
	return nil
}
