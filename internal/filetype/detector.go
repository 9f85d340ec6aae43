// Package filetype classifies input files by magic bytes instead of
// trusting their extension.
package filetype

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind is the processing class of an input file.
type Kind int

const (
	Unsupported Kind = iota
	RasterImage
	PDF
)

func (k Kind) String() string {
	switch k {
	case RasterImage:
		return "image"
	case PDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// Info describes a detected file.
type Info struct {
	Kind      Kind
	MIMEType  string
	Extension string
}

// Detector resolves file kinds via magic bytes.
type Detector struct{}

// New creates a new detector.
func New() *Detector { return &Detector{} }

// Detect classifies a file on disk.
func (d *Detector) Detect(filePath string) (Info, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return Info{}, fmt.Errorf("detect file type: %w", err)
	}
	info := classify(mtype.String(), mtype.Extension())
	log.Debug().
		Str("file", filePath).
		Str("mime", info.MIMEType).
		Str("kind", info.Kind.String()).
		Msg("detected file type")
	return info, nil
}

// DetectBytes classifies an in-memory buffer.
func (d *Detector) DetectBytes(data []byte) Info {
	mtype := mimetype.Detect(data)
	return classify(mtype.String(), mtype.Extension())
}

func classify(mimeType, extension string) Info {
	info := Info{MIMEType: mimeType, Extension: extension}
	switch {
	case mimeType == "application/pdf":
		info.Kind = PDF
	case strings.HasPrefix(mimeType, "image/"):
		info.Kind = RasterImage
	default:
		info.Kind = Unsupported
	}
	return info
}
