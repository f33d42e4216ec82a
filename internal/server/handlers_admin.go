package server

import (
	"net/http"
	"time"
)

// handleHealth reports liveness plus store connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := "connected"
	if err := s.store.ReadDB().Ping(); err != nil {
		status = "unhealthy"
		database = "disconnected"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"database":  database,
		"uptime":    time.Since(s.startedAt).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
