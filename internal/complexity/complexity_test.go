package complexity

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func grayFill(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestScoreWhite(t *testing.T) {
	assert.Equal(t, 0.0, Score(grayFill(100, 100, 255)))
}

func TestScoreBlack(t *testing.T) {
	assert.Equal(t, 1.0, Score(grayFill(100, 100, 0)))
}

func TestScoreThresholdBoundary(t *testing.T) {
	// Strictly below the near-white cutoff counts as content.
	assert.Equal(t, 1.0, Score(grayFill(10, 10, NearWhiteThreshold-1)))
	assert.Equal(t, 0.0, Score(grayFill(10, 10, NearWhiteThreshold)))
}

func TestScoreHalfAndHalf(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	assert.InDelta(t, 0.5, Score(img), 0.001)
}

func TestScoreNilAndEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil))
	assert.Equal(t, 0.0, Score(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestScoreSubImage(t *testing.T) {
	// Left half black, right half white; a sub-image over the black half
	// scores 1 regardless of the parent's stride.
	img := image.NewGray(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
		for x := 50; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	left := img.SubImage(image.Rect(0, 0, 50, 50))
	right := img.SubImage(image.Rect(50, 0, 100, 50))
	assert.Equal(t, 1.0, Score(left))
	assert.Equal(t, 0.0, Score(right))
}

func TestScoreNonGrayImage(t *testing.T) {
	// The generic path converts via the gray color model.
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: 0, G: 0, B: 0, A: 255})
		}
	}
	assert.Equal(t, 1.0, Score(img))
}
