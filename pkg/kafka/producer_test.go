package kafka

import (
	"context"
	"testing"
	"time"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	if _, err := NewProducer(context.Background(), nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewProducer(context.Background(), &ProducerConfig{}); err == nil {
		t.Error("expected error for empty broker list")
	}
}

func TestNewProducer_UnreachableBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewProducer(ctx, &ProducerConfig{
		Brokers:       []string{"127.0.0.1:1"},
		ClientID:      "test",
		MaxRetries:    1,
		RetryInterval: 10 * time.Millisecond,
	})
	if err == nil {
		t.Error("expected error for unreachable broker")
	}
}

func TestProducer_CloseNil(t *testing.T) {
	p := &Producer{}
	p.Close()
}
