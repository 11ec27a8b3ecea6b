// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/events"
	"github.com/tomtom215/bookrec/internal/logging"
)

// eventComponents holds the preference event plumbing. All fields are nil
// when events are disabled.
type eventComponents struct {
	server    *events.EmbeddedServer
	bus       *events.Bus
	publisher *events.Publisher
	audit     *events.AuditConsumer

	closeTimeout time.Duration
}

// initEvents starts the embedded NATS server (if configured), connects the
// bus and builds the publisher and optional audit consumer.
func initEvents(cfg *config.EventsConfig) (*eventComponents, error) {
	ev := &eventComponents{closeTimeout: cfg.NATS.CloseTimeout}
	if !cfg.Enabled {
		logging.Info().Msg("Preference events disabled")
		return ev, nil
	}

	var url string
	if cfg.Backend == "nats" && cfg.NATS.EmbeddedServer {
		srv, err := events.NewEmbeddedServer(&cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		ev.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	bus, err := events.NewBus(cfg, url, logging.NewWatermillAdapter(logging.WithComponent("watermill")))
	if err != nil {
		ev.Close()
		return nil, fmt.Errorf("connect event bus: %w", err)
	}
	ev.bus = bus
	ev.publisher = events.NewPublisher(bus.Publisher, cfg.Topic)

	if cfg.AuditConsumer {
		ev.audit = events.NewAuditConsumer(bus.Subscriber, cfg.Topic, logging.WithComponent("events"))
	}

	logging.Info().
		Str("backend", bus.Backend()).
		Str("topic", cfg.Topic).
		Bool("audit_consumer", cfg.AuditConsumer).
		Msg("Preference events enabled")
	return ev, nil
}

// Close releases components in reverse start order.
func (ev *eventComponents) Close() {
	if ev.publisher != nil {
		if err := ev.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if ev.bus != nil {
		if err := ev.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if ev.server != nil {
		timeout := ev.closeTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := ev.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}
}
