package server

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesFromQuery(t *testing.T) {
	q, err := url.ParseQuery("tile_width=512&num_tiles_horizontal=4&overlap_ratio=0.2&complexity_threshold=0")
	require.NoError(t, err)

	req := overridesFromQuery(q)
	require.NotNil(t, req.TileWidth)
	assert.Equal(t, 512, *req.TileWidth)
	assert.Nil(t, req.TileHeight)
	require.NotNil(t, req.TilesHorizontal)
	assert.Equal(t, 4, *req.TilesHorizontal)
	require.NotNil(t, req.OverlapRatio)
	assert.Equal(t, 0.2, *req.OverlapRatio)
	require.NotNil(t, req.ComplexityThreshold)
	assert.Equal(t, 0.0, *req.ComplexityThreshold)
}

func TestOverridesFromQueryIgnoresGarbage(t *testing.T) {
	q, err := url.ParseQuery("tile_width=abc&overlap_ratio=")
	require.NoError(t, err)

	req := overridesFromQuery(q)
	assert.Nil(t, req.TileWidth)
	assert.Nil(t, req.OverlapRatio)
}

func TestIntQuery(t *testing.T) {
	assert.Equal(t, 7, intQuery("7", 1))
	assert.Equal(t, 1, intQuery("", 1))
	assert.Equal(t, 1, intQuery("x", 1))
}
