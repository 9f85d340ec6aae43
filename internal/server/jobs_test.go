package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/drawprep/internal/config"
	"github.com/local/drawprep/internal/fragment"
)

func testServer() *Server {
	return New(Dependencies{
		Fragment: config.FragmentConfig{
			TileWidth:           1024,
			TileHeight:          1024,
			TilesHorizontal:     3,
			TilesVertical:       3,
			OverlapRatio:        0.1,
			ComplexityThreshold: 0.03,
		},
		JPEGQual: 90,
	})
}

func TestTilingForDefaultsToGrid(t *testing.T) {
	cfg := testServer().tilingFor(processReq{})

	grid, ok := cfg.Mode.(fragment.Grid)
	require.True(t, ok)
	assert.Equal(t, 3, grid.TilesX)
	assert.Equal(t, 3, grid.TilesY)
	assert.Equal(t, 0.1, cfg.Overlap)
	assert.Equal(t, 0.03, cfg.ComplexityThreshold)
	assert.Equal(t, 90, cfg.JPEGQuality)
}

func TestTilingForGridOverrides(t *testing.T) {
	five := 5
	zero := 0.0
	cfg := testServer().tilingFor(processReq{
		TilesHorizontal:     &five,
		ComplexityThreshold: &zero,
	})

	grid, ok := cfg.Mode.(fragment.Grid)
	require.True(t, ok)
	assert.Equal(t, 5, grid.TilesX)
	assert.Equal(t, 3, grid.TilesY)
	assert.Equal(t, 0.0, cfg.ComplexityThreshold)
}

func TestTilingForTileSizeSwitchesMode(t *testing.T) {
	w := 512
	cfg := testServer().tilingFor(processReq{TileWidth: &w})

	fixed, ok := cfg.Mode.(fragment.FixedSize)
	require.True(t, ok)
	assert.Equal(t, 512, fixed.TileWidth)
	// Height falls back to the process default.
	assert.Equal(t, 1024, fixed.TileHeight)
}

func TestTilingForRejectsBadOverrides(t *testing.T) {
	bad := -2
	cfg := testServer().tilingFor(processReq{TilesHorizontal: &bad})
	assert.Error(t, cfg.Validate())
}

func TestResultNameFor(t *testing.T) {
	assert.Equal(t, "drawing.fragments.json", resultNameFor("drawing.pdf"))
	assert.Equal(t, "scan.page1.fragments.json", resultNameFor("scan.page1.png"))
	assert.Equal(t, "noext.fragments.json", resultNameFor("noext"))
}
