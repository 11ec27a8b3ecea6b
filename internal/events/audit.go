// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/metrics"
)

// AuditConsumer subscribes to preference updates and records each one. It
// is a suture.Service; a restart resubscribes.
type AuditConsumer struct {
	sub    message.Subscriber
	topic  string
	logger zerolog.Logger

	consumed  atomic.Int64
	malformed atomic.Int64

	readyOnce sync.Once
	ready     chan struct{}

	// onEvent, when set, is called for every decoded event.
	onEvent func(*PreferencesUpdated)
}

// NewAuditConsumer creates a consumer reading topic from sub.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditConsumer(sub message.Subscriber, topic string, logger zerolog.Logger) *AuditConsumer {
	return &AuditConsumer{
		sub:    sub,
		topic:  topic,
		logger: logger.With().Str("component", "audit-consumer").Str("topic", topic).Logger(),
		ready:  make(chan struct{}),
	}
}

// OnEvent registers a callback for decoded events. Call before Serve.
func (c *AuditConsumer) OnEvent(fn func(*PreferencesUpdated)) {
	c.onEvent = fn
}

// Ready is closed once the first subscription is active.
func (c *AuditConsumer) Ready() <-chan struct{} {
	return c.ready
}

// Consumed returns the number of events processed.
func (c *AuditConsumer) Consumed() int64 {
	return c.consumed.Load()
}

// Malformed returns the number of payloads that failed to decode.
func (c *AuditConsumer) Malformed() int64 {
	return c.malformed.Load()
}

// Serve implements suture.Service.
func (c *AuditConsumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Info().Msg("Audit consumer subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", c.topic)
			}
			c.handle(msg)
		}
	}
}

// handle always acks: a malformed payload will not improve on redelivery.
func (c *AuditConsumer) handle(msg *message.Message) {
	defer msg.Ack()

	event, err := Unmarshal(msg.Payload)
	if err != nil {
		c.malformed.Add(1)
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed preference event")
		return
	}

	c.consumed.Add(1)
	metrics.RecordEventConsumed(c.topic)
	c.logger.Debug().
		Str("event_id", event.EventID).
		Str("user_id", event.UserID).
		Uint64("version", event.Version).
		Str("request_id", event.RequestID).
		Msg("Preferences updated")

	if c.onEvent != nil {
		c.onEvent(event)
	}
}

// String implements fmt.Stringer for suture logging.
func (c *AuditConsumer) String() string {
	return "audit-consumer"
}
