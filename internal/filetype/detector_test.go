package filetype

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBytes(t *testing.T) {
	d := New()

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	tests := []struct {
		name string
		data []byte
		kind Kind
	}{
		{"png", pngBuf.Bytes(), RasterImage},
		{"pdf", []byte("%PDF-1.7\n%some pdf body"), PDF},
		{"plain text", []byte("hello world"), Unsupported},
		{"empty", nil, Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := d.DetectBytes(tt.data)
			assert.Equal(t, tt.kind, info.Kind)
		})
	}
}

func TestDetectFile(t *testing.T) {
	d := New()
	dir := t.TempDir()

	// Extension lies; magic bytes win.
	path := filepath.Join(dir, "drawing.txt")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	info, err := d.Detect(path)
	require.NoError(t, err)
	assert.Equal(t, RasterImage, info.Kind)
	assert.Equal(t, "image/png", info.MIMEType)
}

func TestDetectMissingFile(t *testing.T) {
	d := New()
	_, err := d.Detect(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "image", RasterImage.String())
	assert.Equal(t, "pdf", PDF.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}
