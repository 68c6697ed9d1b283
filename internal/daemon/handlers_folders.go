package daemon

import (
	"net/http"
	"strings"

	"framegen/internal/media"
)

// handleFolders godoc
// @Summary Extract every video in a folder
// @Description Starts one job with the current defaults for each video file found in the folder.
// @Tags folders
// @Accept json
// @Produce json
// @Param request body AddFolderRequest true "Folder to scan"
// @Success 202 {object} AddFolderResponse
// @Failure 400 {object} ErrorResponse
// @Router /folders [post]
func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	var req AddFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	videos, err := media.ListVideos(req.Path, req.Recursive)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read folder: "+err.Error())
		return
	}
	if len(videos) == 0 {
		writeError(w, http.StatusBadRequest, "no video files found in "+req.Path)
		return
	}

	ids := make([]string, 0, len(videos))
	for _, path := range videos {
		job, err := s.startJob(CreateJobRequest{Source: path})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ids = append(ids, job.ID)
	}
	writeJSON(w, http.StatusAccepted, AddFolderResponse{Status: "started", JobIDs: ids})
}
