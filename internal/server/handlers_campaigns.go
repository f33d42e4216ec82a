package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/slatehq/slate/internal/store"
)

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.store.ListCampaigns()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// campaignWithStats is the single-read projection: the campaign plus its
// per-column task counts.
type campaignWithStats struct {
	store.Campaign
	TaskStats map[string]int `json:"taskStats"`
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	campaign, err := s.store.GetCampaign(id)
	if err != nil {
		respondError(w, err)
		return
	}
	stats, err := s.store.CampaignTaskStats(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaignWithStats{Campaign: *campaign, TaskStats: stats})
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	campaign, err := s.store.CreateCampaign(body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	campaign, err := s.store.UpdateCampaign(chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// handleDeleteCampaign cascades: the campaign and all of its tasks are
// removed together.
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCampaign(chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Campaign and tasks deleted"})
}
