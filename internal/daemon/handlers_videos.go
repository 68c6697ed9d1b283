package daemon

import (
	"net/http"
	"strings"
)

// handleProbe godoc
// @Summary Probe a video
// @Description Returns duration, size, frame rate and codec of a video file.
// @Tags videos
// @Accept json
// @Produce json
// @Param request body ProbeRequest true "Video to probe"
// @Success 200 {object} ProbeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /probe [post]
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	src, err := s.decoder.Open(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	info := src.Info()
	_ = src.Close()

	writeJSON(w, http.StatusOK, newProbeResponse(req.Path, info))
}
