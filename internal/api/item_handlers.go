package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/revplan/internal/services"
)

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.Planner.Scores(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, scores)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.Planner.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, score)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var upd services.ItemUpdate
	if err := decodeJSON(r, &upd); err != nil {
		handleError(w, r, err)
		return
	}
	score, err := s.Planner.UpdateItem(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, score)
}

func (s *Server) handlePriorityItem(w http.ResponseWriter, r *http.Request) {
	score, err := s.Planner.PriorityItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, score)
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.Planner.Subjects(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, subjects)
}
