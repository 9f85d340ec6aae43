package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/fragment"
	"github.com/local/drawprep/internal/metrics"
	"github.com/local/drawprep/internal/parser"
	"github.com/local/drawprep/internal/store"
)

type processReq struct {
	FileName string `json:"file_name"`
	Parse    bool   `json:"parse"`

	// Tiling overrides; absent fields fall back to process defaults.
	TileWidth           *int     `json:"tile_width"`
	TileHeight          *int     `json:"tile_height"`
	TilesHorizontal     *int     `json:"num_tiles_horizontal"`
	TilesVertical       *int     `json:"num_tiles_vertical"`
	OverlapRatio        *float64 `json:"overlap_ratio"`
	ComplexityThreshold *float64 `json:"complexity_threshold"`
}

type processResp struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type pageResult struct {
	PageNumber int                     `json:"page_number"`
	Fragments  []fragmentRef           `json:"fragments"`
	Parsed     []parser.FragmentResult `json:"parsed,omitempty"`
}

type fragmentRef struct {
	Index int           `json:"index"`
	BBox  fragment.BBox `json:"bbox"`
	Size  int           `json:"size"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req processReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.FileName == "" {
		http.Error(w, "missing file_name", http.StatusBadRequest)
		return
	}

	// Reject bad tiling parameters before the job starts.
	cfg := s.tilingFor(req)
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	start := time.Now()
	_ = s.deps.Status.Set(r.Context(), jobID, store.Status{
		Status: "queued", Progress: 0, Message: "queued", Start: &start,
		Metadata: map[string]any{"file_name": req.FileName, "parse": req.Parse},
	})
	log.Info().Str("job_id", jobID).Str("file", req.FileName).Msg("processing job created")

	go s.runJob(jobID, req, cfg)

	writeJSON(w, http.StatusCreated, processResp{Status: "ok", JobID: jobID, Message: "job queued"})
}

// tilingFor merges request overrides over the process-wide defaults.
func (s *Server) tilingFor(req processReq) fragment.Config {
	base := tilingDefaults(s.deps.Fragment, s.deps.JPEGQual)

	ov := fragment.Overrides{
		TilesX:              req.TilesHorizontal,
		TilesY:              req.TilesVertical,
		Overlap:             req.OverlapRatio,
		ComplexityThreshold: req.ComplexityThreshold,
	}
	if req.TileWidth != nil || req.TileHeight != nil {
		size := fragment.FixedSize{
			TileWidth:  s.deps.Fragment.TileWidth,
			TileHeight: s.deps.Fragment.TileHeight,
		}
		if req.TileWidth != nil {
			size.TileWidth = *req.TileWidth
		}
		if req.TileHeight != nil {
			size.TileHeight = *req.TileHeight
		}
		ov.TileSize = &size
	}

	return base.Merge(ov)
}

// runJob executes one processing job: build the document, fragment every
// page, optionally parse the fragments, and store the result back into the
// volume next to the source file.
func (s *Server) runJob(jobID string, req processReq, cfg fragment.Config) {
	ctx := context.Background()

	doc, err := s.deps.Factory.FromVolume(ctx, req.FileName, s.deps.Volume)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("build document: %v", err))
		return
	}

	total := len(doc.Pages)
	_ = s.deps.Status.Set(ctx, jobID, store.Status{
		Status: "processing", Progress: 5,
		Message: fmt.Sprintf("rendered %d pages", total), PagesTotal: total,
	})

	mode := "grid"
	if _, ok := cfg.Mode.(fragment.FixedSize); ok {
		mode = "fixed"
	}

	results := make([]pageResult, 0, total)
	fragTotal := 0
	for i, page := range doc.Pages {
		start := time.Now()
		frags, err := page.Fragment(cfg, nil)
		dur := time.Since(start)
		if err != nil {
			// Config was validated up front; treat this as fatal.
			metrics.ObservePageFragmented("error", 0, mode, dur)
			s.failJob(ctx, jobID, fmt.Sprintf("fragment page %d: %v", page.PageNumber, err))
			return
		}
		if len(frags) == 0 {
			metrics.ObservePageFragmented("empty", 0, mode, dur)
		} else {
			metrics.ObservePageFragmented("success", len(frags), mode, dur)
		}
		fragTotal += len(frags)

		pr := pageResult{PageNumber: page.PageNumber}
		for j, f := range frags {
			pr.Fragments = append(pr.Fragments, fragmentRef{Index: j + 1, BBox: f.BBox, Size: len(f.Content)})
		}

		if req.Parse && s.deps.Parser != nil && len(frags) > 0 {
			parsed, err := s.deps.Parser.ParsePage(ctx, page)
			if err != nil {
				log.Warn().Err(err).Int("page", page.PageNumber).Msg("parse step failed")
			} else {
				pr.Parsed = parsed
			}
		}
		results = append(results, pr)

		progress := 5 + (90*(i+1))/total
		_ = s.deps.Status.Set(ctx, jobID, store.Status{
			Status: "processing", Progress: progress,
			Message:    fmt.Sprintf("page %d/%d done", i+1, total),
			PagesTotal: total, PagesDone: i + 1, FragmentCount: fragTotal,
		})
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("encode results: %v", err))
		return
	}
	resultName := resultNameFor(req.FileName)
	if err := s.deps.Volume.Upload(ctx, resultName, payload, "application/json", true); err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("store results: %v", err))
		return
	}

	end := time.Now()
	_ = s.deps.Status.Set(ctx, jobID, store.Status{
		Status: "success", Progress: 100,
		Message:    fmt.Sprintf("stored %s", resultName),
		PagesTotal: total, PagesDone: total, FragmentCount: fragTotal, End: &end,
	})
	metrics.IncJob("success")
	log.Info().
		Str("job_id", jobID).
		Int("pages", total).
		Int("fragments", fragTotal).
		Msg("processing job finished")
}

func (s *Server) failJob(ctx context.Context, jobID, msg string) {
	end := time.Now()
	_ = s.deps.Status.Set(ctx, jobID, store.Status{Status: "failed", Progress: 100, Message: msg, End: &end})
	metrics.IncJob("failed")
	log.Error().Str("job_id", jobID).Str("reason", msg).Msg("processing job failed")
}

func resultNameFor(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 {
		fileName = fileName[:i]
	}
	return fileName + ".fragments.json"
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/progress/")
	if jobID == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}
	st, ok, err := s.deps.Status.Get(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "unknown job", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
