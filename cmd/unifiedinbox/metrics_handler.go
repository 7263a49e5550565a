package main

import (
	"encoding/json"
	"net/http"

	"unifiedinbox/internal/service"
)

// handleMetrics returns a snapshot of the in-process metrics registry
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.registry.Snapshot()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(snapshot); err != nil {
			s.requestLogger(r).WithField(service.LogFieldEndpoint, "/metrics").WithError(err).
				Error("Failed to encode metrics response")
		}
	}
}
