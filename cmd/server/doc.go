// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Command server runs the Bookrec recommendation service.

Startup order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. Catalog: the book CSV read through DuckDB, then the whitened feature model
 4. Preference store: embedded BadgerDB or the remote preference service,
    seeded with a neutral global prior when store.seed_global is set
 5. Events (optional): Watermill over an in-process channel or NATS, with an
    embedded NATS server for single-node deployments
 6. Engine and HTTP API: chi router with request ids, access logs, CORS,
    rate limiting and Prometheus metrics
 7. Supervisor tree: suture v4 running the cache janitor, the audit consumer
    and the HTTP server

SIGINT or SIGTERM drains in-flight requests for server.shutdown_timeout, then
closes the event components and the preference store.

Example:

	CATALOG_PATH=data/books.csv \
	STORE_BADGER_DIR=/var/lib/bookrec \
	./bookrec
*/
package main
