// Package parser sends page fragments to a vision model and collects the
// per-fragment results with their bounding boxes.
package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/ai"
	"github.com/local/drawprep/internal/document"
	"github.com/local/drawprep/internal/imaging"
	"github.com/local/drawprep/internal/limiter"
	"github.com/local/drawprep/internal/metrics"
)

// FragmentResult pairs the model output with the fragment it came from.
type FragmentResult struct {
	Index int    `json:"index"` // 1-based, matches visualization labels
	BBox  [4]int `json:"bbox"`
	Text  string `json:"text"`
	Err   string `json:"error,omitempty"`
}

// Options configure a DocumentParser.
type Options struct {
	Model          string
	SystemPrompt   string
	UserPrompt     string
	MaxTokens      int
	RequestTimeout time.Duration
}

// DocumentParser walks a page's fragments, issuing one vision request per
// fragment. The adaptive limiter caps concurrency and honors shared
// provider cooldowns; a fragment that cannot be parsed is reported in its
// result instead of failing the page.
type DocumentParser struct {
	client  ai.Client
	limiter *limiter.Adaptive
	opts    Options
}

func New(client ai.Client, lim *limiter.Adaptive, opts Options) *DocumentParser {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	return &DocumentParser{client: client, limiter: lim, opts: opts}
}

// ParsePage runs every fragment of an already-fragmented page through the
// vision model, in fragment order.
func (p *DocumentParser) ParsePage(ctx context.Context, page *document.Page) ([]FragmentResult, error) {
	if len(page.Fragments) == 0 {
		return nil, fmt.Errorf("page %d has no fragments; run fragmentation first", page.PageNumber)
	}

	results := make([]FragmentResult, len(page.Fragments))
	for i, frag := range page.Fragments {
		bbox := [4]int{frag.BBox.X1, frag.BBox.Y1, frag.BBox.X2, frag.BBox.Y2}
		results[i] = FragmentResult{Index: i + 1, BBox: bbox}

		text, err := p.parseFragment(ctx, page.PageNumber, i+1, bbox, frag.Content)
		if err != nil {
			log.Warn().Err(err).
				Int("page", page.PageNumber).
				Int("fragment", i+1).
				Msg("fragment parse failed")
			results[i].Err = err.Error()
			continue
		}
		results[i].Text = text
	}

	return results, nil
}

func (p *DocumentParser) parseFragment(ctx context.Context, pageNum, index int, bbox [4]int, content []byte) (string, error) {
	provider := p.client.Name()

	if p.limiter != nil {
		if p.limiter.IsOpen(ctx, provider, p.opts.Model) {
			return "", fmt.Errorf("provider %s cooling down", provider)
		}
		release, ok := p.limiter.Allow(provider, p.opts.Model)
		if !ok {
			return "", fmt.Errorf("provider %s at max inflight", provider)
		}
		defer release()
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.Do(reqCtx, ai.Request{
		Model:         p.opts.Model,
		SystemPrompt:  p.opts.SystemPrompt,
		UserPrompt:    p.opts.UserPrompt,
		ImageBase64:   imaging.EncodeToBase64(content),
		ImageMIME:     "image/jpeg",
		PageNumber:    pageNum,
		FragmentIndex: index,
		BBox:          bbox,
		MaxTokens:     p.opts.MaxTokens,
	})
	dur := time.Since(start)

	switch {
	case err == nil:
		metrics.ObserveProvider(provider, p.opts.Model, "ok", dur)
		if p.limiter != nil {
			p.limiter.Close(ctx, provider, p.opts.Model)
		}
		return resp.Text, nil
	case ai.IsRateLimited(err):
		metrics.ObserveProvider(provider, p.opts.Model, "rate_limited", dur)
		if p.limiter != nil {
			p.limiter.Open(ctx, provider, p.opts.Model)
		}
		return "", err
	default:
		metrics.ObserveProvider(provider, p.opts.Model, "error", dur)
		return "", err
	}
}
