package imaging

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// RenderPDFPage rasterizes one PDF page at the given DPI.
// pageNum is 1-based; go-fitz indexes from 0.
func RenderPDFPage(pdfPath string, pageNum, dpi int) (image.Image, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if pageNum < 1 || pageNum > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", pageNum, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageNum-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageNum, err)
	}

	log.Debug().
		Int("page", pageNum).
		Int("dpi", dpi).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("rendered pdf page")

	return img, nil
}

// PDFPageCount returns the number of pages in a PDF.
func PDFPageCount(pdfPath string) (int, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
