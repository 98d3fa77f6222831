// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor provides process supervision for Reelmatch using suture v4.

The tree separates the snapshot lifecycle from request serving:

	RootSupervisor ("reelmatch")
	├── CatalogSupervisor ("catalog-layer")
	│   └── CatalogService ("catalog-refresh")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

A catalog build that fails on startup is returned as a service error, so
the catalog layer restarts it with backoff. The API layer runs throughout
and answers 503 until the first snapshot is published.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddCatalogService(services.NewCatalogService(engine, catalogCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Configuration

TreeConfig zero values fall back to suture's defaults: 5 failures before
backoff, 30 second decay, 15 second backoff, 10 second shutdown timeout.

# Shutdown

UnstoppedServiceReport lists services that ignored cancellation past the
shutdown timeout.
*/
package supervisor
