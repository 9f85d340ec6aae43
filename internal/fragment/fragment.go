// Package fragment cuts normalized page images into overlapping rectangular
// tiles suitable for vision-model input.
package fragment

import (
	"encoding/json"
	"fmt"
	"image"
)

// BBox is a fragment bounding box in pixel coordinates relative to the
// normalized page image. Invariant: 0 <= X1 < X2 <= width and
// 0 <= Y1 < Y2 <= height.
type BBox struct {
	X1, Y1, X2, Y2 int
}

// Rect converts the box to an image.Rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b BBox) Width() int  { return b.X2 - b.X1 }
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// MarshalJSON emits the wire form [x1, y1, x2, y2].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON parses the wire form [x1, y1, x2, y2].
func (b *BBox) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	b.X1, b.Y1, b.X2, b.Y2 = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// Fragment is one tile cut from a page: its encoded bytes plus the bounding
// box it was cut from. Fragments are immutable once created and own their
// content buffer; overlapping tiles never alias each other's bytes.
type Fragment struct {
	Content []byte `json:"-"`
	BBox    BBox   `json:"bbox"`
}
