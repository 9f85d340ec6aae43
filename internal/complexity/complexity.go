// Package complexity scores how much drawn content an image region carries.
package complexity

import (
	"image"
	"image/color"
)

// NearWhiteThreshold separates background paper from drawn content on an
// 8-bit luminance scale. Pixels strictly below this value count as content.
const NearWhiteThreshold = 240

// Score returns the fraction of pixels darker than NearWhiteThreshold,
// in [0, 1]. A blank near-white region scores near 0, a solid black region
// near 1. Nil or zero-size regions score exactly 0 and never panic.
func Score(region image.Image) float64 {
	if region == nil {
		return 0.0
	}
	bounds := region.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return 0.0
	}

	content := 0
	if gray, ok := region.(*image.Gray); ok {
		// Fast path over the raw stride buffer.
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := gray.Pix[(y-bounds.Min.Y)*gray.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				if row[x] < NearWhiteThreshold {
					content++
				}
			}
		}
		return float64(content) / float64(total)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(region.At(x, y)).(color.Gray)
			if g.Y < NearWhiteThreshold {
				content++
			}
		}
	}
	return float64(content) / float64(total)
}
