// Package server exposes the drawing preparation pipeline over HTTP:
// volume file management, fragmentation jobs, previews and QA overlays.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/config"
	"github.com/local/drawprep/internal/document"
	"github.com/local/drawprep/internal/fragment"
	"github.com/local/drawprep/internal/parser"
	"github.com/local/drawprep/internal/statuscheck"
	"github.com/local/drawprep/internal/store"
	"github.com/local/drawprep/internal/volume"
)

// FileStore is the volume capability surface the server needs.
type FileStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string, overwrite bool) error
	Download(ctx context.Context, name string) ([]byte, error)
	DownloadToFile(ctx context.Context, name, localPath string) error
	List(ctx context.Context) ([]volume.FileInfo, error)
	Delete(ctx context.Context, name string) error
}

// StatusStore persists job progress.
type StatusStore interface {
	Set(ctx context.Context, jobID string, st store.Status) error
	Get(ctx context.Context, jobID string) (store.Status, bool, error)
}

// PageParser runs fragments of a page through the vision model.
type PageParser interface {
	ParsePage(ctx context.Context, page *document.Page) ([]parser.FragmentResult, error)
}

// Dependencies wires the server's collaborators.
type Dependencies struct {
	Volume   FileStore
	Status   StatusStore
	Factory  *document.Factory
	Parser   PageParser // nil disables the parse step
	Checker  *statuscheck.Checker
	Fragment config.FragmentConfig
	JPEGQual int
}

type Server struct {
	deps Dependencies
}

func New(deps Dependencies) *Server {
	return &Server{deps: deps}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/files", s.handleFiles)
	mux.HandleFunc("/files/", s.handleFileByName)
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/progress/", s.handleProgress)
	mux.HandleFunc("/visualize", s.handleVisualize)
	mux.HandleFunc("/preview", s.handlePreview)
}

// tilingDefaults maps the process-wide fragment settings onto a tiling
// config; grid mode is the default when no tile size is requested.
func tilingDefaults(fc config.FragmentConfig, jpegQuality int) fragment.Config {
	return fragment.Config{
		Mode:                fragment.Grid{TilesX: fc.TilesHorizontal, TilesY: fc.TilesVertical},
		Overlap:             fc.OverlapRatio,
		ComplexityThreshold: fc.ComplexityThreshold,
		JPEGQuality:         jpegQuality,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Checker == nil {
		http.Error(w, "status checks not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Checker.CheckAll(r.Context()))
}

// handleFiles serves POST (multipart upload) and GET (listing).
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		files, err := s.deps.Volume.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, files)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}

	name := path.Base(header.Filename)
	overwrite := r.FormValue("overwrite") == "true" || r.URL.Query().Get("overwrite") == "true"

	err = s.deps.Volume.Upload(r.Context(), name, data, header.Header.Get("Content-Type"), overwrite)
	switch {
	case err == nil:
		log.Info().Str("name", name).Int("size", len(data)).Msg("file uploaded")
		writeJSON(w, http.StatusCreated, map[string]string{"name": name})
	case errors.Is(err, volume.ErrFileExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// handleFileByName serves DELETE /files/{name}.
func (s *Server) handleFileByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/files/")
	if name == "" {
		http.Error(w, "missing file name", http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	err := s.deps.Volume.Delete(r.Context(), name)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, volume.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
