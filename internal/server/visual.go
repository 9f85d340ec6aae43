package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// handleVisualize renders the fragment-box overlay for one page of a stored
// file. Query: file, page (default 1), thickness (default 2), plus the same
// tiling override keys as /process.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	fileName := q.Get("file")
	if fileName == "" {
		http.Error(w, "missing file parameter", http.StatusBadRequest)
		return
	}

	pageNum := intQuery(q.Get("page"), 1)
	thickness := intQuery(q.Get("thickness"), 2)

	cfg := s.tilingFor(overridesFromQuery(q))
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.deps.Factory.FromVolume(r.Context(), fileName, s.deps.Volume)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if pageNum < 1 || pageNum > len(doc.Pages) {
		http.Error(w, "page out of range", http.StatusBadRequest)
		return
	}

	page := doc.Pages[pageNum-1]
	if _, err := page.Fragment(cfg, nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	overlay, err := page.Visualize(thickness)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(overlay)
}

// handlePreview reports original vs normalized page dimensions for a stored
// file without fragmenting anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	fileName := r.URL.Query().Get("file")
	if fileName == "" {
		http.Error(w, "missing file parameter", http.StatusBadRequest)
		return
	}

	tmp, err := os.CreateTemp("", "drawprep-preview-*"+filepath.Ext(fileName))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := s.deps.Volume.DownloadToFile(r.Context(), fileName, tmpPath); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	previews, err := s.deps.Factory.Preview(tmpPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, previews)
}

// overridesFromQuery maps query tiling keys onto a processReq so /visualize
// accepts the same knobs as /process.
func overridesFromQuery(q map[string][]string) processReq {
	var req processReq
	req.TileWidth = intPtrQuery(q, "tile_width")
	req.TileHeight = intPtrQuery(q, "tile_height")
	req.TilesHorizontal = intPtrQuery(q, "num_tiles_horizontal")
	req.TilesVertical = intPtrQuery(q, "num_tiles_vertical")
	req.OverlapRatio = floatPtrQuery(q, "overlap_ratio")
	req.ComplexityThreshold = floatPtrQuery(q, "complexity_threshold")
	return req
}

func intQuery(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func intPtrQuery(q map[string][]string, key string) *int {
	vs, ok := q[key]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return nil
	}
	if n, err := strconv.Atoi(vs[0]); err == nil {
		return &n
	}
	return nil
}

func floatPtrQuery(q map[string][]string, key string) *float64 {
	vs, ok := q[key]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(vs[0], 64); err == nil {
		return &f
	}
	return nil
}
