package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clipcatch/internal/engine"
	"clipcatch/pkg/models"
)

// handleSubmitJob handles POST /api/jobs. The job is admitted and runs
// in the background; the response carries only its ID.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		http.Error(w, "no URL provided", http.StatusBadRequest)
		return
	}

	// A finished download for the same URL blocks resubmission unless
	// the caller asks to overwrite.
	if s.store.Exists(req.URL) && !req.Overwrite {
		http.Error(w, "URL already downloaded; set overwrite to repeat", http.StatusConflict)
		return
	}

	id, err := s.engine.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidURL), errors.Is(err, engine.ErrUnsupportedContent):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, engine.ErrDuplicateJob):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"id": id,
	})
}

// handleListJobs handles GET /api/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Jobs())
}

// handleGetJob handles GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, ok := s.engine.Job(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// handleListRecords handles GET /api/records
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.store.List())
}
