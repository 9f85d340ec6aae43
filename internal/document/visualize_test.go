package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/drawprep/internal/fragment"
	"github.com/local/drawprep/internal/imaging"
)

func TestVisualizeOverlay(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 300, 200))
	require.NoError(t, err)
	_, err = p.Fragment(fragment.Config{Mode: fragment.Grid{TilesX: 3, TilesY: 2}}, nil)
	require.NoError(t, err)

	out, err := p.Visualize(2)
	require.NoError(t, err)

	// Output is a decodable JPEG with the page's dimensions.
	img, err := imaging.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestVisualizeWithoutFragments(t *testing.T) {
	// No fragments means no boxes, but the page still renders.
	p, err := NewPage(1, pageContent(t, 100, 100))
	require.NoError(t, err)

	out, err := p.Visualize(1)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestVisualizeNormalizesThickness(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 100, 100))
	require.NoError(t, err)
	_, err = p.Fragment(fragment.Config{Mode: fragment.Grid{TilesX: 2, TilesY: 2}}, nil)
	require.NoError(t, err)

	out, err := p.Visualize(0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestVisualizeUndecodableContent(t *testing.T) {
	p, err := NewPage(1, []byte("garbage"))
	require.NoError(t, err)

	_, err = p.Visualize(2)
	require.Error(t, err)
	assert.True(t, imaging.IsDecodeErr(err))
}

func TestVisualizeManyFragmentsCyclesPalette(t *testing.T) {
	// More fragments than palette entries must not panic.
	p, err := NewPage(1, pageContent(t, 400, 400))
	require.NoError(t, err)
	_, err = p.Fragment(fragment.Config{Mode: fragment.Grid{TilesX: 4, TilesY: 4}}, nil)
	require.NoError(t, err)
	require.Len(t, p.Fragments, 16)

	out, err := p.Visualize(2)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
