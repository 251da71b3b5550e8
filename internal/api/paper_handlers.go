package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/revplan/internal/services"
)

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.Planner.ListPastPapers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, papers)
}

func (s *Server) handleAddPaper(w http.ResponseWriter, r *http.Request) {
	var in services.PaperInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	p, err := s.Planner.AddPastPaper(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleTogglePaper(w http.ResponseWriter, r *http.Request) {
	p, err := s.Planner.TogglePastPaper(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleRemovePaper(w http.ResponseWriter, r *http.Request) {
	if err := s.Planner.RemovePastPaper(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
