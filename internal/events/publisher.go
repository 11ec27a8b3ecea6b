// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// ErrPublisherClosed is returned by a Publisher after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher turns persisted profile updates into PreferencesUpdated
// messages. It implements recommend.UpdateNotifier.
type Publisher struct {
	pub    message.Publisher
	topic  string
	topN   int
	mu     sync.RWMutex
	closed bool
}

var _ recommend.UpdateNotifier = (*Publisher)(nil)

// NewPublisher publishes to topic through pub. Close does not close pub;
// the Bus owns it.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic, topN: DefaultTopValues}
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string { return p.topic }

// NotifyProfileUpdated implements recommend.UpdateNotifier.
//
//nolint:gocritic // hugeParam: signature fixed by recommend.UpdateNotifier
func (p *Publisher) NotifyProfileUpdated(ctx context.Context, update recommend.ProfileUpdate) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	event := NewPreferencesUpdated(update, p.topN)
	data, err := Marshal(event)
	if err != nil {
		metrics.RecordEventPublish(p.topic, err)
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("version", strconv.FormatUint(event.Version, 10))
	if event.RequestID != "" {
		msg.Metadata.Set("request_id", event.RequestID)
	}
	msg.SetContext(ctx)

	err = p.pub.Publish(p.topic, msg)
	metrics.RecordEventPublish(p.topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	return nil
}

// Close stops further publishing.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
