package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/plan", s.handlePlan)
		r.Post("/plan/generate", s.handleGenerate)
		r.Get("/plan/today", s.handleToday)
		r.Get("/plan/{date}", s.handleDay)
		r.Post("/sweep", s.handleSweep)

		r.Post("/sessions", s.handleCompleteSession)

		r.Get("/items", s.handleScores)
		r.Get("/items/{id}", s.handleScore)
		r.Patch("/items/{id}", s.handleUpdateItem)
		r.Get("/topics/{id}/priority", s.handlePriorityItem)
		r.Get("/subjects", s.handleSubjects)

		r.Get("/metrics", s.handleMetrics)

		r.Get("/settings", s.handleSettings)
		r.Patch("/settings", s.handleUpdateSettings)

		r.Get("/deadlines", s.handleListDeadlines)
		r.Post("/deadlines", s.handleAddDeadline)
		r.Delete("/deadlines/{id}", s.handleRemoveDeadline)

		r.Get("/papers", s.handleListPapers)
		r.Post("/papers", s.handleAddPaper)
		r.Post("/papers/{id}/toggle", s.handleTogglePaper)
		r.Delete("/papers/{id}", s.handleRemovePaper)

		r.Post("/reset", s.handleReset)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, notFoundRoute(r))
	})
	return r
}
