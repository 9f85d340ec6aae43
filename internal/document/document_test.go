package document

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/drawprep/internal/fragment"
)

func pageContent(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewPageRejectsNonPositiveNumbers(t *testing.T) {
	_, err := NewPage(0, nil)
	assert.Error(t, err)
	_, err = NewPage(-3, nil)
	assert.Error(t, err)

	p, err := NewPage(1, []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.PageNumber)
	assert.Empty(t, p.Fragments)
	assert.NotNil(t, p.Metadata)
}

func TestPageFragmentStoresResult(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 200, 200))
	require.NoError(t, err)

	base := fragment.Config{Mode: fragment.Grid{TilesX: 2, TilesY: 2}}
	frags, err := p.Fragment(base, nil)
	require.NoError(t, err)
	assert.Len(t, frags, 4)
	assert.Equal(t, frags, p.Fragments)
}

func TestPageFragmentReplacesPreviousResult(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 200, 200))
	require.NoError(t, err)

	base := fragment.Config{Mode: fragment.Grid{TilesX: 2, TilesY: 2}}
	_, err = p.Fragment(base, nil)
	require.NoError(t, err)
	require.Len(t, p.Fragments, 4)

	one := 1
	_, err = p.Fragment(base, &fragment.Overrides{TilesX: &one, TilesY: &one})
	require.NoError(t, err)
	assert.Len(t, p.Fragments, 1)
}

func TestPageFragmentAppliesOverrides(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 300, 200))
	require.NoError(t, err)

	base := fragment.Config{Mode: fragment.Grid{TilesX: 2, TilesY: 2}}
	three := 3
	frags, err := p.Fragment(base, &fragment.Overrides{TilesX: &three})
	require.NoError(t, err)
	assert.Len(t, frags, 6)
}

func TestPageFragmentBadConfig(t *testing.T) {
	p, err := NewPage(1, pageContent(t, 100, 100))
	require.NoError(t, err)

	_, err = p.Fragment(fragment.Config{}, nil)
	require.Error(t, err)
	assert.True(t, fragment.IsBadConfig(err))
	assert.Empty(t, p.Fragments)
}

func TestPageFragmentUndecodableContent(t *testing.T) {
	p, err := NewPage(1, []byte("not an image"))
	require.NoError(t, err)

	frags, err := p.Fragment(fragment.Config{Mode: fragment.Grid{TilesX: 2, TilesY: 2}}, nil)
	require.NoError(t, err)
	assert.Empty(t, frags)
}

func TestNewDocument(t *testing.T) {
	p1, err := NewPage(1, []byte("a"))
	require.NoError(t, err)
	p2, err := NewPage(2, []byte("b"))
	require.NoError(t, err)

	doc := New("drawing.pdf", []*Page{p1, p2})
	assert.Equal(t, "drawing.pdf", doc.Path)
	assert.Len(t, doc.Pages, 2)
	assert.NotNil(t, doc.Metadata)
}
