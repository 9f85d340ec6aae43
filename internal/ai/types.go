package ai

import (
	"context"
	"errors"
)

// Request is one vision inference call for a single page fragment.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string

	// Fragment image payload
	ImageBase64 string
	ImageMIME   string // typically image/jpeg

	// Traceability
	PageNumber    int
	FragmentIndex int    // 1-based, matches the visualization labels
	BBox          [4]int // [x1, y1, x2, y2] on the normalized page

	MaxTokens int
}

// Response is the provider's answer for one fragment.
type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Client is implemented per provider (OpenAI, Anthropic).
type Client interface {
	Name() string
	Do(ctx context.Context, req Request) (Response, error)
}

var (
	ErrRateLimited    = errors.New("rate_limited")
	ErrContentRefused = errors.New("content_refused")
)

func IsRateLimited(err error) bool    { return errors.Is(err, ErrRateLimited) }
func IsContentRefused(err error) bool { return errors.Is(err, ErrContentRefused) }
