package fragment

import (
	"errors"
	"fmt"
)

// ErrBadConfig marks tiling parameters that are out of range or mutually
// inconsistent. These surface immediately instead of being coerced.
var ErrBadConfig = errors.New("invalid_tiling_config")

func IsBadConfig(err error) bool { return errors.Is(err, ErrBadConfig) }

// Mode selects one of the two tiling geometries. Exactly one concrete type
// is active per call: Grid (equal-count cells) or FixedSize (stepped tiles).
type Mode interface {
	mode()
}

// Grid divides the page into exactly TilesX x TilesY cells.
type Grid struct {
	TilesX int
	TilesY int
}

func (Grid) mode() {}

// FixedSize steps tiles of the requested pixel size across the page.
type FixedSize struct {
	TileWidth  int
	TileHeight int
}

func (FixedSize) mode() {}

// Config carries all tiling parameters for one TilePage call. It is passed
// by value; there is no process-wide tiling state.
type Config struct {
	Mode Mode

	// Overlap expands each tile by this fraction of the base tile size
	// (grid mode) or shrinks the step between tiles (fixed-size mode).
	// Valid range [0, 1).
	Overlap float64

	// ComplexityThreshold drops tiles whose complexity score falls below
	// it. Exactly 0 disables filtering entirely and keeps every
	// geometrically valid tile, blank ones included. Valid range [0, 1].
	ComplexityThreshold float64

	// JPEGQuality for re-encoding surviving tiles; 0 means default.
	JPEGQuality int
}

// Validate fails fast on out-of-range parameters.
func (c Config) Validate() error {
	switch m := c.Mode.(type) {
	case Grid:
		if m.TilesX < 1 || m.TilesY < 1 {
			return fmt.Errorf("%w: grid tiles must be >= 1, got %dx%d", ErrBadConfig, m.TilesX, m.TilesY)
		}
	case FixedSize:
		if m.TileWidth < 1 || m.TileHeight < 1 {
			return fmt.Errorf("%w: tile size must be >= 1, got %dx%d", ErrBadConfig, m.TileWidth, m.TileHeight)
		}
	case nil:
		return fmt.Errorf("%w: no tiling mode selected", ErrBadConfig)
	default:
		return fmt.Errorf("%w: unknown tiling mode %T", ErrBadConfig, m)
	}

	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("%w: overlap ratio %.3f outside [0,1)", ErrBadConfig, c.Overlap)
	}
	if c.ComplexityThreshold < 0 || c.ComplexityThreshold > 1 {
		return fmt.Errorf("%w: complexity threshold %.3f outside [0,1]", ErrBadConfig, c.ComplexityThreshold)
	}
	return nil
}

// Overrides are optional per-call adjustments layered over a base Config.
// A nil field means "use the base value", not "use zero".
type Overrides struct {
	// TileSize switches the call to fixed-size mode.
	TileSize *FixedSize

	// TilesX/TilesY adjust grid dimensions; ignored when TileSize is set.
	TilesX *int
	TilesY *int

	Overlap             *float64
	ComplexityThreshold *float64
}

// Merge applies overrides over the base config and returns the result.
// TileSize takes precedence over grid dimensions, mirroring call-site
// selection of the tiling mode.
func (c Config) Merge(ov Overrides) Config {
	merged := c

	switch {
	case ov.TileSize != nil:
		merged.Mode = *ov.TileSize
	case ov.TilesX != nil || ov.TilesY != nil:
		grid, ok := c.Mode.(Grid)
		if !ok {
			grid = Grid{}
		}
		if ov.TilesX != nil {
			grid.TilesX = *ov.TilesX
		}
		if ov.TilesY != nil {
			grid.TilesY = *ov.TilesY
		}
		merged.Mode = grid
	}

	if ov.Overlap != nil {
		merged.Overlap = *ov.Overlap
	}
	if ov.ComplexityThreshold != nil {
		merged.ComplexityThreshold = *ov.ComplexityThreshold
	}
	return merged
}
