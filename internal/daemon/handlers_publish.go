package daemon

import "net/http"

// handlePublishStatus godoc
// @Summary Get publishing status
// @Description Returns how many frames were forwarded to the configured publishers.
// @Tags publish
// @Produce json
// @Success 200 {object} PublishStatus
// @Router /publish/status [get]
func (s *Server) handlePublishStatus(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeJSON(w, http.StatusOK, PublishStatus{})
		return
	}
	st := s.publisher.Stats()
	writeJSON(w, http.StatusOK, PublishStatus{
		Enabled:     true,
		Published:   st.Published,
		Failed:      st.Failed,
		LastSuccess: st.LastSuccess,
		LastError:   st.LastError,
	})
}
