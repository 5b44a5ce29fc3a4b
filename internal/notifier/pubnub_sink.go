package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/eventix/internal/domain"
	pubnub "github.com/pubnub/go"
)

// DefaultPubNubChannel is the live dashboard channel
const DefaultPubNubChannel = "live-dashboard"

// PubNubSinkConfig contains configuration for the PubNub sink
type PubNubSinkConfig struct {
	PublishKey     string
	SubscribeKey   string
	UserID         string
	Channel        string
	PublishTimeout time.Duration
}

// PubNubSink pushes notifications to dashboard subscribers over PubNub
type PubNubSink struct {
	channel string
	publish func(channel string, message interface{}) error
}

// NewPubNubSink creates a PubNub client for the sink
func NewPubNubSink(cfg *PubNubSinkConfig) (*PubNubSink, error) {
	if cfg == nil || cfg.PublishKey == "" || cfg.SubscribeKey == "" {
		return nil, fmt.Errorf("pubnub publish and subscribe keys are required")
	}

	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.UUID = cfg.UserID
	if cfg.PublishTimeout > 0 {
		pnConfig.NonSubscribeRequestTimeout = int(cfg.PublishTimeout.Seconds() + 0.5)
	}

	pn := pubnub.NewPubNub(pnConfig)

	return newPubNubSink(cfg.Channel, func(channel string, message interface{}) error {
		_, status, err := pn.Publish().
			Channel(channel).
			Message(message).
			Execute()
		if err != nil {
			return err
		}
		if status.Error != nil {
			return status.Error
		}
		return nil
	}), nil
}

func newPubNubSink(channel string, publish func(channel string, message interface{}) error) *PubNubSink {
	if channel == "" {
		channel = DefaultPubNubChannel
	}
	return &PubNubSink{channel: channel, publish: publish}
}

// Name implements Sink
func (s *PubNubSink) Name() string { return "pubnub" }

// Publish implements Sink. The PubNub client applies its own request timeout.
func (s *PubNubSink) Publish(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := map[string]interface{}{
		"type":    n.Type,
		"key":     n.Key,
		"payload": n.Payload,
	}
	if err := s.publish(s.channel, message); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", n.Type, s.channel, err)
	}
	return nil
}

// Close implements Sink
func (s *PubNubSink) Close() error {
	return nil
}
