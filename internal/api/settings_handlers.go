package api

import (
	"net/http"

	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/services"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.Planner.Settings(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

// handleUpdateSettings applies a partial update and regenerates the plan.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch services.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		handleError(w, r, err)
		return
	}
	settings, err := s.Planner.UpdateSettings(r.Context(), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("settings updated")
	writeJSON(w, r, http.StatusOK, settings)
}
