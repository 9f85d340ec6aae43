package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DefaultJPEGQuality is used when callers pass a non-positive quality.
const DefaultJPEGQuality = 90

var (
	ErrDecode = errors.New("image_decode_failed")
	ErrEncode = errors.New("image_encode_failed")
)

func IsDecodeErr(err error) bool { return errors.Is(err, ErrDecode) }
func IsEncodeErr(err error) bool { return errors.Is(err, ErrEncode) }

// Decode parses encoded image bytes (JPEG, PNG, GIF).
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	log.Debug().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("decoded image")
	return img, nil
}

// EncodeJPEG re-encodes an image as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// ResizeIfNeeded shrinks an image so both dimensions fit within
// (maxWidth, maxHeight), preserving aspect ratio. Images already within
// bounds are returned unchanged. The scale factor is never above 1, so
// this function only downsizes.
func ResizeIfNeeded(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	log.Debug().
		Int("width", width).
		Int("height", height).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Msg("downsized oversized image")

	return dst
}

// Dimensions extracts pixel dimensions from encoded image bytes without
// decoding the full raster.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}

// EncodeToBase64 converts binary data to a base64 string for vision payloads.
func EncodeToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeFromBase64 converts a base64 string back to binary data.
func DecodeFromBase64(b64 string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(b64)
}
