package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdchunk/internal/pipeline"
)

// handleListDocuments lists published documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	pub := s.orchestrator.Publisher()
	if pub == nil {
		jsonError(w, "publishing is disabled", http.StatusServiceUnavailable)
		return
	}

	docs, err := pub.ListDocuments(r.Context(), 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDeleteDocument deletes a document and all its published chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	pub := s.orchestrator.Publisher()
	if pub == nil {
		jsonError(w, "publishing is disabled", http.StatusServiceUnavailable)
		return
	}

	meta, err := pub.DeleteDocument(r.Context(), chi.URLParam(r, "docID"))
	switch {
	case errors.Is(err, pipeline.ErrDocumentNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":         meta.DocID,
		"chunks_deleted": meta.Published,
	})
}
