// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package events

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/bookrec/internal/config"
)

// Bus pairs the publisher and subscriber of one backend.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	backend    string
}

// NewBus creates the backend named by cfg.Backend. url overrides
// cfg.NATS.URL when non-empty (used with the embedded server).
func NewBus(cfg *config.EventsConfig, url string, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Backend {
	case "memory":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
		return &Bus{Publisher: ch, Subscriber: ch, backend: "memory"}, nil
	case "nats":
		if url == "" {
			url = cfg.NATS.URL
		}
		return newNATSBus(&cfg.NATS, url, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// Backend names the transport ("memory", "nats").
func (b *Bus) Backend() string { return b.backend }

// Close closes the publisher and subscriber. The memory backend shares one
// instance for both.
func (b *Bus) Close() error {
	err := b.Publisher.Close()
	if b.backend != "memory" {
		err = errors.Join(err, b.Subscriber.Close())
	}
	return err
}

// newNATSBus uses core NATS; preference events are advisory and need no
// JetStream persistence.
func newNATSBus(cfg *config.NATSConfig, url string, logger watermill.LoggerAdapter) (*Bus, error) {
	opts := natsOptions(cfg, logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      opts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Bus{Publisher: pub, Subscriber: sub, backend: "nats"}, nil
}

func natsOptions(cfg *config.NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("bookrec"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}
