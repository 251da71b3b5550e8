package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/services"
)

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.Planner.Plan(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, plan)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	day, err := s.Planner.Today(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, day)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	day, err := s.Planner.Day(r.Context(), date)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, day)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	res, err := s.Planner.Generate(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("plan regenerated: %d days, %d misses swept", len(res.Plan.Days), len(res.Misses))
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	misses, err := s.Planner.Sweep(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"misses": misses})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req services.CompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rec, err := s.Planner.CompleteSession(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rec)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Planner.Metrics(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Planner.Reset(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Warn("all planner state reset")
	w.WriteHeader(http.StatusNoContent)
}
