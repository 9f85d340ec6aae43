package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 300, cfg.Image.DPI)
	assert.Equal(t, 2048, cfg.Image.MaxWidth)
	assert.Equal(t, 2048, cfg.Image.MaxHeight)
	assert.Equal(t, 90, cfg.Image.JPEGQuality)

	assert.Equal(t, 1024, cfg.Fragment.TileWidth)
	assert.Equal(t, 3, cfg.Fragment.TilesHorizontal)
	assert.Equal(t, 0.1, cfg.Fragment.OverlapRatio)
	assert.Equal(t, 0.03, cfg.Fragment.ComplexityThreshold)

	assert.Equal(t, "openai", cfg.Providers.Engine)
	assert.Equal(t, 60*time.Second, cfg.Providers.RequestTimeout)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("IMAGE_DPI", "150")
	t.Setenv("FRAGMENT_OVERLAP_RATIO", "0.25")
	t.Setenv("FRAGMENT_COMPLEXITY_THRESHOLD", "0")
	t.Setenv("VISION_ENGINE", "anthropic")
	t.Setenv("PORT", "9090")

	cfg := FromEnv()
	assert.Equal(t, 150, cfg.Image.DPI)
	assert.Equal(t, 0.25, cfg.Fragment.OverlapRatio)
	assert.Equal(t, 0.0, cfg.Fragment.ComplexityThreshold)
	assert.Equal(t, "anthropic", cfg.Providers.Engine)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("IMAGE_DPI", "banana")
	t.Setenv("FRAGMENT_NUM_TILES_HORIZONTAL", "x")

	cfg := FromEnv()
	assert.Equal(t, 300, cfg.Image.DPI)
	assert.Equal(t, 3, cfg.Fragment.TilesHorizontal)
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		assert.True(t, parseBool(v), v)
	}
	for _, v := range []string{"0", "false", "", "off", "nope"} {
		assert.False(t, parseBool(v), v)
	}
}
