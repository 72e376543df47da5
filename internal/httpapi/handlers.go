package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ytleads/internal/jobs"
	"ytleads/internal/logging"
	"ytleads/internal/preflight"
	"ytleads/internal/services"
	"ytleads/internal/steps"
)

const maxBodyBytes = 64 << 10

type healthResponse struct {
	Status string             `json:"status"`
	Checks []preflight.Result `json:"checks,omitempty"`
}

type stepResponse struct {
	ID          steps.ID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

type jobListResponse struct {
	Jobs     []jobs.Job `json:"jobs"`
	Selected string     `json:"selected,omitempty"`
}

type createJobRequest struct {
	YoutubeURL string `json:"youtubeUrl"`
	URL        string `json:"url"`
}

type selectRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if s.checks != nil {
		resp.Checks = s.checks(r.Context())
		if preflight.Failed(resp.Checks) {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleSteps(w http.ResponseWriter, _ *http.Request) {
	defs := steps.All()
	out := make([]stepResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, stepResponse{ID: def.ID, Name: def.Name, Description: def.Description})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	resp := jobListResponse{Jobs: s.store.List()}
	if selected, ok := s.store.Selected(); ok {
		resp.Selected = selected.ID
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sourceURL := strings.TrimSpace(req.YoutubeURL)
	if sourceURL == "" {
		sourceURL = strings.TrimSpace(req.URL)
	}
	job, err := s.runner.Submit(r.Context(), sourceURL)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.start(r.Context(), job.ID)
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := steps.Parse(chi.URLParam(r, "step"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	result, ok := job.Result(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "step "+id.String()+" has no result yet")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil && !errors.Is(err, jobs.ErrPersist) {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSelected(w http.ResponseWriter, _ *http.Request) {
	job, ok := s.store.Selected()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no job selected")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := strings.TrimSpace(req.ID)
	if err := s.store.Select(r.Context(), id); err != nil && !errors.Is(err, jobs.ErrPersist) {
		s.writeFailure(w, err)
		return
	}
	if id == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.handleGetSelected(w, r)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if errors.Is(err, jobs.ErrJobNotFound) {
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
