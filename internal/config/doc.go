// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package config provides centralized configuration management for Bookrec.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, config.yaml, config.yml or
    /etc/bookrec/config.yaml
 3. Environment variables listed in the mapping table

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeouts, environment)
  - SecurityConfig: CORS origins, per-IP rate limit, body size cap
  - LoggingConfig: zerolog level, format and caller info
  - CatalogConfig: CSV catalog path and delimiter
  - RecommendConfig: prior strength, EMA alpha, fuzzy threshold,
    whitening epsilon, result limit, degraded mode, resolver cache
  - StoreConfig: preference store backend (badger or http) and its
    settings, including the remote client's circuit breaker
  - EventsConfig: preference update events (memory or nats)
  - SupervisorConfig: suture restart policy and janitor interval

# Environment Variables

A few commonly used variables:

  - HTTP_PORT, HTTP_HOST, ENVIRONMENT
  - LOG_LEVEL, LOG_FORMAT
  - CATALOG_PATH
  - RECOMMEND_ALPHA, RECOMMEND_PRIOR_STRENGTH, RECOMMEND_FUZZY_THRESHOLD
  - RECOMMEND_DEGRADED_MODE
  - STORE_BACKEND, STORE_BADGER_DIR, STORE_HTTP_BASE_URL
  - EVENTS_BACKEND, NATS_URL, NATS_EMBEDDED

Unknown variables are ignored so the process environment cannot leak into
the configuration.

# Validation

Load validates every section and reports the offending key:

	recommend.alpha must be in (0,1], got 1.5
*/
package config
