// Package document models a source drawing: an ordered list of rendered
// pages, each carrying its raw image bytes and derived fragments.
package document

import (
	"fmt"

	"github.com/local/drawprep/internal/fragment"
)

// PageMetadata holds free-form per-page metadata. No fixed schema.
type PageMetadata map[string]any

// DocumentMetadata holds free-form document-level metadata.
type DocumentMetadata map[string]any

// Page is one logical page of a document. Content is the rendered, already
// normalized page image and is immutable after construction. Fragments is
// empty until Fragment runs and holds the authoritative tiling result in
// row-major order.
type Page struct {
	PageNumber int
	Content    []byte
	Fragments  []fragment.Fragment
	Metadata   PageMetadata
}

// NewPage builds a page. Page numbers are 1-based.
func NewPage(pageNumber int, content []byte) (*Page, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	return &Page{
		PageNumber: pageNumber,
		Content:    content,
		Metadata:   PageMetadata{},
	}, nil
}

// Fragment tiles this page's content and stores the result as the page's
// fragment list. Per-call overrides merge over the base config; a nil
// override field falls back to the base value. Calling Fragment again
// replaces the previous result, it never appends.
func (p *Page) Fragment(base fragment.Config, ov *fragment.Overrides) ([]fragment.Fragment, error) {
	cfg := base
	if ov != nil {
		cfg = base.Merge(*ov)
	}

	frags, err := fragment.TilePage(p.Content, cfg)
	if err != nil {
		return nil, fmt.Errorf("fragment page %d: %w", p.PageNumber, err)
	}

	p.Fragments = frags
	return p.Fragments, nil
}

// Document owns an ordered page sequence fixed at construction.
type Document struct {
	Path     string
	Pages    []*Page
	Metadata DocumentMetadata
}

// New builds a document from its rendered pages.
func New(path string, pages []*Page) *Document {
	return &Document{
		Path:     path,
		Pages:    pages,
		Metadata: DocumentMetadata{},
	}
}
