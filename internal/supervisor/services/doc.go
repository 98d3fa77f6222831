// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services provides suture.Service wrappers for Reelmatch components.

  - CatalogService: builds the first snapshot and refreshes it on an interval
  - HTTPServerService: runs an *http.Server with graceful shutdown

# Error Handling

Return values determine supervisor behavior:

	nil         -> service stopped cleanly, will not restart
	error       -> service crashed, supervisor will restart
	ctx.Err()   -> shutdown requested, normal termination

CatalogService returns an error only when its startup build fails. Failed
scheduled refreshes are logged and the previous snapshot keeps serving.

# Service Identification

All services implement fmt.Stringer; suture uses the name in its events.
*/
package services
