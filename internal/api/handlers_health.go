// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests. It succeeds whenever the
// process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests. It returns 503 until the
// first catalog snapshot has been published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()

	statusCode := http.StatusOK
	status := "ready"
	if !st.Ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	data := map[string]interface{}{
		"status":           status,
		"ready_to_serve":   st.Ready,
		"snapshot_version": st.Version,
		"items":            st.Items,
		"uptime":           time.Since(h.startTime).Seconds(),
	}
	if st.LastError != "" {
		data["last_error"] = st.LastError
	}

	NewResponseWriter(w, r).SuccessWithStatus(statusCode, data, nil)
}
