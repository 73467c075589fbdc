package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/parser"
)

// handleChunk parses, chunks and repairs one upload synchronously.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	maxSize, err := parseMaxChunkSize(r.FormValue("max_chunk_size"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	file.Close()
	filename, data, code, err := s.readUpload(header)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	p, err := parser.ForFile(filename, parser.Options{FallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := r.FormValue("title"); title != "" {
		tree.Title = title
	}

	c := s.orchestrator.Chunker()
	out, err := c.ChunkTree(tree, c.Config(maxSize))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type repairRequest struct {
	MaxChunkSize int           `json:"max_chunk_size"`
	Chunks       []chunk.Chunk `json:"chunks"`
}

// handleRepair runs only the repair stages on a chunk sequence produced by
// another analyzer.
func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req repairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaxChunkSize < 0 {
		jsonError(w, "max_chunk_size must be positive", http.StatusBadRequest)
		return
	}
	for i, c := range req.Chunks {
		if err := c.Validate(); err != nil {
			jsonError(w, fmt.Sprintf("chunk %d: %s", i, err), http.StatusBadRequest)
			return
		}
	}

	c := s.orchestrator.Chunker()
	out, err := c.Repair(req.Chunks, c.Config(req.MaxChunkSize))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
