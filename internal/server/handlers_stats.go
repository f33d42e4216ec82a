package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleDashboard returns the aggregated dashboard payload. Everything is
// computed fresh per request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Dashboard()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCampaignAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.store.AnalyzeCampaign(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
