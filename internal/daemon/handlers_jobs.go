package daemon

import (
	"errors"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleJobs godoc
// @Summary List jobs
// @Description Returns all extraction jobs with progress, oldest first.
// @Tags jobs
// @Produce json
// @Success 200 {array} Job
// @Router /jobs [get]
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		copyJob := *j
		list = append(list, copyJob)
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, list)
}

// handleCreateJob godoc
// @Summary Start extraction job
// @Description Validates the request against the current defaults and starts extracting frames in the background.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body CreateJobRequest true "Job to start"
// @Success 202 {object} StartJobResponse
// @Failure 400 {object} ErrorResponse
// @Router /jobs [post]
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	job, err := s.startJob(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, StartJobResponse{Status: "started", JobID: job.ID})
}

// handleGetJob godoc
// @Summary Get job details
// @Description Returns status and progress of a job.
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	_, job, err := s.jobFrames(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleFrames godoc
// @Summary List frames of a job
// @Description Returns the frames written so far, in timestamp order.
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {array} Frame
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID}/frames [get]
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	frames, _, err := s.jobFrames(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, frames)
}

// handleFrameFile streams one frame image of a job.
func (s *Server) handleFrameFile(w http.ResponseWriter, r *http.Request) {
	frames, job, err := s.jobFrames(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= len(frames) {
		writeError(w, http.StatusNotFound, "frame not found")
		return
	}
	http.ServeFile(w, r, filepath.Join(job.OutputDir, frames[index].File))
}

// handleCancel godoc
// @Summary Cancel extraction job
// @Description Stops a queued or running job. Frames already written are kept.
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} CancelJobResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /jobs/{jobID}/cancel [post]
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	err := s.cancelJob(chi.URLParam(r, "jobID"))
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, errInactive):
		writeError(w, http.StatusConflict, "job is not active")
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, CancelJobResponse{Status: "cancelling"})
	}
}
