package api

import "net/http"

func (s *Server) handleRepairStats(w http.ResponseWriter, r *http.Request) {
	c := s.orchestrator.Chunker()
	if c == nil || c.Stats() == nil {
		jsonError(w, "repair stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       c.Stats().Snapshot(),
	})
}
