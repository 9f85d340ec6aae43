package fragment

import (
	"image"
	"image/draw"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/complexity"
	"github.com/local/drawprep/internal/imaging"
)

// TilePage decodes encoded page bytes and tiles the image per cfg.
// Undecodable page bytes yield an empty fragment list with a warning, not
// an error: callers batch over many pages and one corrupt page must not
// abort the rest. Invalid configuration does return an error.
func TilePage(content []byte, cfg Config) ([]Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(content)
	if err != nil {
		log.Warn().Err(err).Msg("failed to decode page image, no fragments produced")
		return []Fragment{}, nil
	}

	return tile(img, cfg), nil
}

// TileImage tiles an already-decoded page image per cfg.
func TileImage(img image.Image, cfg Config) ([]Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		log.Warn().Msg("nil page image, no fragments produced")
		return []Fragment{}, nil
	}
	return tile(img, cfg), nil
}

func tile(img image.Image, cfg Config) []Fragment {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var fragments []Fragment
	switch m := cfg.Mode.(type) {
	case Grid:
		fragments = gridTiles(img, width, height, m, cfg)
	case FixedSize:
		fragments = fixedSizeTiles(img, width, height, m, cfg)
	}

	log.Info().
		Int("fragments", len(fragments)).
		Int("width", width).
		Int("height", height).
		Msg("tiled page")

	return fragments
}

// gridTiles divides the page into exactly TilesX x TilesY cells of real-valued
// base size, expands each cell by the overlap fraction and clamps to the image.
// The last column and row are forced to the image edges so coverage is exact
// regardless of rounding. Iteration is row-major; that order is the fragment
// list order.
func gridTiles(img image.Image, width, height int, m Grid, cfg Config) []Fragment {
	fragments := make([]Fragment, 0, m.TilesX*m.TilesY)

	baseW := float64(width) / float64(m.TilesX)
	baseH := float64(height) / float64(m.TilesY)
	overlapW := baseW * cfg.Overlap
	overlapH := baseH * cfg.Overlap

	for row := 0; row < m.TilesY; row++ {
		for col := 0; col < m.TilesX; col++ {
			x1 := max(0, int(math.Floor(float64(col)*baseW-overlapW)))
			y1 := max(0, int(math.Floor(float64(row)*baseH-overlapH)))
			x2 := min(width, int(math.Ceil(float64(col+1)*baseW+overlapW)))
			y2 := min(height, int(math.Ceil(float64(row+1)*baseH+overlapH)))

			if col == m.TilesX-1 {
				x2 = width
			}
			if row == m.TilesY-1 {
				y2 = height
			}

			if frag, ok := cutTile(img, BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}, cfg); ok {
				fragments = append(fragments, frag)
			}
		}
	}

	return fragments
}

// fixedSizeTiles steps tiles of the requested size across the page, shrinking
// the step by the overlap ratio and clipping the far edge to the image bound.
// A clipped remnant below half the requested size is skipped only when
// complexity filtering is active; with the threshold at 0 every tile is kept
// so coverage stays complete.
func fixedSizeTiles(img image.Image, width, height int, m FixedSize, cfg Config) []Fragment {
	stepW := int(float64(m.TileWidth) * (1 - cfg.Overlap))
	stepH := int(float64(m.TileHeight) * (1 - cfg.Overlap))
	if stepW < 1 {
		stepW = 1
	}
	if stepH < 1 {
		stepH = 1
	}

	var fragments []Fragment
	for y := 0; y < height; y += stepH {
		for x := 0; x < width; x += stepW {
			x2 := min(x+m.TileWidth, width)
			y2 := min(y+m.TileHeight, height)

			if cfg.ComplexityThreshold > 0 && ((x2-x) < m.TileWidth/2 || (y2-y) < m.TileHeight/2) {
				continue
			}

			if frag, ok := cutTile(img, BBox{X1: x, Y1: y, X2: x2, Y2: y2}, cfg); ok {
				fragments = append(fragments, frag)
			}
		}
	}

	return fragments
}

// cutTile extracts the pixel region, applies the complexity filter and
// re-encodes the survivor. Encode failures skip the tile, never abort the
// page.
func cutTile(img image.Image, box BBox, cfg Config) (Fragment, bool) {
	if box.Width() <= 0 || box.Height() <= 0 {
		return Fragment{}, false
	}

	region := crop(img, box.Rect().Add(img.Bounds().Min))

	if cfg.ComplexityThreshold > 0 {
		score := complexity.Score(region)
		if score < cfg.ComplexityThreshold {
			log.Debug().
				Int("x1", box.X1).
				Int("y1", box.Y1).
				Float64("score", score).
				Msg("skipping low-complexity tile")
			return Fragment{}, false
		}
	}

	data, err := imaging.EncodeJPEG(region, cfg.JPEGQuality)
	if err != nil {
		log.Warn().Err(err).
			Int("x1", box.X1).
			Int("y1", box.Y1).
			Msg("failed to encode tile, skipping")
		return Fragment{}, false
	}

	return Fragment{Content: data, BBox: box}, true
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
