package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/filetype"
	"github.com/local/drawprep/internal/imaging"
)

// FileStore is the minimal volume capability the factory needs to build
// documents from remote files.
type FileStore interface {
	DownloadToFile(ctx context.Context, name, localPath string) error
}

// FactoryOptions control page rendering and normalization.
type FactoryOptions struct {
	DPI         int // PDF rasterization density
	MaxWidth    int // normalization bound
	MaxHeight   int
	JPEGQuality int
}

// Factory builds Documents from raster images or multi-page PDFs.
type Factory struct {
	opts     FactoryOptions
	detector *filetype.Detector
}

// NewFactory creates a document factory.
func NewFactory(opts FactoryOptions) *Factory {
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 2048
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 2048
	}
	return &Factory{opts: opts, detector: filetype.New()}
}

// FromDisk builds a Document from a local file, dispatching on magic bytes.
func (f *Factory) FromDisk(path string) (*Document, error) {
	info, err := f.detector.Detect(path)
	if err != nil {
		return nil, err
	}

	switch info.Kind {
	case filetype.RasterImage:
		return f.fromImage(path)
	case filetype.PDF:
		return f.fromPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q for %s", info.MIMEType, path)
	}
}

// FromVolume downloads a file from the volume store into a temp file and
// builds a Document from it.
func (f *Factory) FromVolume(ctx context.Context, name string, store FileStore) (*Document, error) {
	tmp, err := os.CreateTemp("", "drawprep-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := store.DownloadToFile(ctx, name, tmpPath); err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}

	doc, err := f.FromDisk(tmpPath)
	if err != nil {
		return nil, err
	}
	doc.Path = name
	return doc, nil
}

func (f *Factory) fromImage(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("image file %s: %w", path, err)
	}

	normalized := imaging.ResizeIfNeeded(img, f.opts.MaxWidth, f.opts.MaxHeight)
	content, err := imaging.EncodeJPEG(normalized, f.opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("image file %s: %w", path, err)
	}

	page, err := NewPage(1, content)
	if err != nil {
		return nil, err
	}
	return New(path, []*Page{page}), nil
}

func (f *Factory) fromPDF(path string) (*Document, error) {
	// Page count via pdfcpu before committing to a full render pass;
	// also rejects structurally broken PDFs early.
	total, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf page count failed: %w", err)
	}
	log.Info().Str("pdf", path).Int("pages", total).Msg("rendering pdf pages")

	pages := make([]*Page, 0, total)
	for num := 1; num <= total; num++ {
		img, err := imaging.RenderPDFPage(path, num, f.opts.DPI)
		if err != nil {
			return nil, fmt.Errorf("pdf %s: %w", path, err)
		}

		normalized := imaging.ResizeIfNeeded(img, f.opts.MaxWidth, f.opts.MaxHeight)
		content, err := imaging.EncodeJPEG(normalized, f.opts.JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("pdf %s page %d: %w", path, num, err)
		}

		page, err := NewPage(num, content)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return New(path, pages), nil
}

// PagePreview reports original vs normalized dimensions for the review UI.
type PagePreview struct {
	PageNumber     int  `json:"page_number"`
	OriginalWidth  int  `json:"original_width"`
	OriginalHeight int  `json:"original_height"`
	Width          int  `json:"width"`
	Height         int  `json:"height"`
	Resized        bool `json:"was_resized"`
}

// Preview renders each page and reports how normalization would change it,
// without building fragment lists.
func (f *Factory) Preview(path string) ([]PagePreview, error) {
	info, err := f.detector.Detect(path)
	if err != nil {
		return nil, err
	}

	switch info.Kind {
	case filetype.RasterImage:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		img, err := imaging.Decode(data)
		if err != nil {
			return nil, err
		}
		return []PagePreview{previewOf(1, img.Bounds().Dx(), img.Bounds().Dy(), f.opts)}, nil

	case filetype.PDF:
		total, err := api.PageCountFile(path)
		if err != nil {
			return nil, fmt.Errorf("pdf page count failed: %w", err)
		}
		previews := make([]PagePreview, 0, total)
		for num := 1; num <= total; num++ {
			img, err := imaging.RenderPDFPage(path, num, f.opts.DPI)
			if err != nil {
				return nil, err
			}
			previews = append(previews, previewOf(num, img.Bounds().Dx(), img.Bounds().Dy(), f.opts))
		}
		return previews, nil

	default:
		return nil, fmt.Errorf("unsupported file type %q for %s", info.MIMEType, path)
	}
}

func previewOf(num, width, height int, opts FactoryOptions) PagePreview {
	pv := PagePreview{
		PageNumber:     num,
		OriginalWidth:  width,
		OriginalHeight: height,
		Width:          width,
		Height:         height,
	}
	if width > opts.MaxWidth || height > opts.MaxHeight {
		scale := minFloat(float64(opts.MaxWidth)/float64(width), float64(opts.MaxHeight)/float64(height))
		pv.Width = int(float64(width)*scale + 0.5)
		pv.Height = int(float64(height)*scale + 0.5)
		pv.Resized = true
	}
	return pv
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
