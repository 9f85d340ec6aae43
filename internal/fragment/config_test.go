package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid grid", Config{Mode: Grid{TilesX: 3, TilesY: 3}}, true},
		{"valid fixed", Config{Mode: FixedSize{TileWidth: 512, TileHeight: 512}}, true},
		{"valid with overlap and threshold", Config{Mode: Grid{TilesX: 2, TilesY: 2}, Overlap: 0.3, ComplexityThreshold: 0.5}, true},
		{"no mode", Config{}, false},
		{"zero grid columns", Config{Mode: Grid{TilesX: 0, TilesY: 3}}, false},
		{"negative grid rows", Config{Mode: Grid{TilesX: 3, TilesY: -1}}, false},
		{"zero tile width", Config{Mode: FixedSize{TileWidth: 0, TileHeight: 100}}, false},
		{"overlap at one", Config{Mode: Grid{TilesX: 2, TilesY: 2}, Overlap: 1.0}, false},
		{"negative overlap", Config{Mode: Grid{TilesX: 2, TilesY: 2}, Overlap: -0.1}, false},
		{"threshold above one", Config{Mode: Grid{TilesX: 2, TilesY: 2}, ComplexityThreshold: 1.5}, false},
		{"threshold exactly one", Config{Mode: Grid{TilesX: 2, TilesY: 2}, ComplexityThreshold: 1.0}, true},
		{"threshold zero disables filtering", Config{Mode: Grid{TilesX: 2, TilesY: 2}, ComplexityThreshold: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsBadConfig(err))
			}
		})
	}
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestMergeNoOverrides(t *testing.T) {
	base := Config{Mode: Grid{TilesX: 3, TilesY: 2}, Overlap: 0.1, ComplexityThreshold: 0.03}
	merged := base.Merge(Overrides{})
	assert.Equal(t, base, merged)
}

func TestMergeGridDimensions(t *testing.T) {
	base := Config{Mode: Grid{TilesX: 3, TilesY: 3}, Overlap: 0.1}
	merged := base.Merge(Overrides{TilesX: intPtr(5)})

	grid, ok := merged.Mode.(Grid)
	require.True(t, ok)
	assert.Equal(t, 5, grid.TilesX)
	assert.Equal(t, 3, grid.TilesY)
	assert.Equal(t, 0.1, merged.Overlap)
}

func TestMergeTileSizeSwitchesMode(t *testing.T) {
	base := Config{Mode: Grid{TilesX: 3, TilesY: 3}}
	merged := base.Merge(Overrides{
		TileSize: &FixedSize{TileWidth: 512, TileHeight: 256},
		TilesX:   intPtr(9), // ignored once a tile size is requested
	})

	fixed, ok := merged.Mode.(FixedSize)
	require.True(t, ok)
	assert.Equal(t, 512, fixed.TileWidth)
	assert.Equal(t, 256, fixed.TileHeight)
}

func TestMergeScalarOverrides(t *testing.T) {
	base := Config{Mode: Grid{TilesX: 3, TilesY: 3}, Overlap: 0.1, ComplexityThreshold: 0.03}
	merged := base.Merge(Overrides{
		Overlap:             floatPtr(0.25),
		ComplexityThreshold: floatPtr(0),
	})

	assert.Equal(t, 0.25, merged.Overlap)
	assert.Equal(t, 0.0, merged.ComplexityThreshold)
	assert.Equal(t, Grid{TilesX: 3, TilesY: 3}, merged.Mode)
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := Config{Mode: Grid{TilesX: 3, TilesY: 3}, Overlap: 0.1}
	_ = base.Merge(Overrides{TilesX: intPtr(7), Overlap: floatPtr(0.5)})
	assert.Equal(t, Grid{TilesX: 3, TilesY: 3}, base.Mode)
	assert.Equal(t, 0.1, base.Overlap)
}
