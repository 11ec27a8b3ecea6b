// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

	RootSupervisor ("bookrec")
	├── DataSupervisor ("data-layer")
	│   └── CacheJanitorService   sweeps expired title resolutions
	├── MessagingSupervisor ("messaging-layer")
	│   └── events.AuditConsumer  (events.audit_consumer)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with backoff. Supervisor events are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

Resources opened before the tree starts (the preference store, the event bus
and the embedded NATS server) are closed by the caller after Serve returns,
once the HTTP server has drained.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
