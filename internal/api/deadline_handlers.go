package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/revplan/internal/services"
)

func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := s.Planner.ListDeadlines(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deadlines)
}

func (s *Server) handleAddDeadline(w http.ResponseWriter, r *http.Request) {
	var in services.DeadlineInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	d, err := s.Planner.AddDeadline(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, d)
}

func (s *Server) handleRemoveDeadline(w http.ResponseWriter, r *http.Request) {
	if err := s.Planner.RemoveDeadline(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
