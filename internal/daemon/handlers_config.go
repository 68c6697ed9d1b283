package daemon

import (
	"net/http"

	"framegen/internal/config"
)

// handleHealth godoc
// @Summary Health check
// @Description Returns service health and version.
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}

// handleConfig godoc
// @Summary Get or update job defaults
// @Description Returns the defaults applied to new jobs on GET and updates selected fields on PUT.
// @Tags config
// @Accept json
// @Produce json
// @Param request body ConfigUpdateRequest false "Fields to update (PUT only)"
// @Success 200 {object} Config
// @Failure 400 {object} ErrorResponse
// @Router /config [get]
// @Router /config [put]
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		cfg := s.publicConfig(s.defaults)
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var req ConfigUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		s.mu.Lock()
		next := s.defaults
		if req.Interval != nil {
			next.Interval = *req.Interval
		}
		if req.IncludeEnd != nil {
			next.IncludeEnd = *req.IncludeEnd
		}
		if req.MaxFrames != nil {
			next.MaxFrames = *req.MaxFrames
		}
		if req.Format != nil {
			next.Format = *req.Format
		}
		if req.Quality != nil {
			next.Quality = *req.Quality
		}
		if req.FrameSize != nil {
			next.Width, next.Height = req.FrameSize[0], req.FrameSize[1]
		}
		if req.Naming != nil {
			next.Naming = *req.Naming
		}
		if req.Manifest != nil {
			next.Manifest = *req.Manifest
		}
		if req.Archive != nil {
			next.Archive = *req.Archive
		}
		if err := validateDefaults(next); err != nil {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.defaults = next
		cfg := s.publicConfig(next)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, cfg)
	}
}

func (s *Server) publicConfig(c config.Config) Config {
	return Config{
		Interval:   c.Interval,
		IncludeEnd: c.IncludeEnd,
		MaxFrames:  c.MaxFrames,
		Format:     c.Format,
		Quality:    c.Quality,
		FrameSize:  [2]int{c.Width, c.Height},
		Naming:     c.Naming,
		Manifest:   c.Manifest,
		Archive:    c.Archive,
		Publishing: s.publisher != nil,
	}
}

// validateDefaults checks the defaults would produce a valid job.
func validateDefaults(c config.Config) error {
	c.Source = "placeholder"
	c.OutputDir = "placeholder"
	c.Timestamps = nil
	_, err := c.Job()
	return err
}
