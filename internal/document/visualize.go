package document

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/local/drawprep/internal/imaging"
)

// boxPalette cycles per fragment index so adjacent overlapping boxes stay
// distinguishable.
var boxPalette = [8]color.RGBA{
	{R: 230, G: 57, B: 70, A: 255},  // red
	{R: 29, G: 131, B: 72, A: 255},  // green
	{R: 32, G: 82, B: 199, A: 255},  // blue
	{R: 241, G: 143, B: 1, A: 255},  // orange
	{R: 142, G: 68, B: 173, A: 255}, // purple
	{R: 20, G: 143, B: 119, A: 255}, // teal
	{R: 199, G: 44, B: 145, A: 255}, // magenta
	{R: 93, G: 109, B: 126, A: 255}, // slate
}

const labelPadding = 3

// Visualize decodes the page content, overlays every fragment's bounding box
// in a palette color chosen by index mod 8 with a filled label carrying the
// 1-based fragment index, and re-encodes the result as JPEG. Purely a
// debugging aid; fragment data is untouched.
func (p *Page) Visualize(thickness int) ([]byte, error) {
	if thickness < 1 {
		thickness = 2
	}

	src, err := imaging.Decode(p.Content)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Src)

	for i, frag := range p.Fragments {
		col := boxPalette[i%len(boxPalette)]
		drawBorder(canvas, frag.BBox.Rect(), col, thickness)
		drawLabel(canvas, frag.BBox.X1, frag.BBox.Y1, i+1, col)
	}

	return imaging.EncodeJPEG(canvas, 0)
}

// drawBorder paints a hollow rectangle of the given stroke thickness.
func drawBorder(canvas *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	r = r.Intersect(canvas.Bounds())
	if r.Empty() {
		return
	}
	src := &image.Uniform{C: col}

	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, min(r.Min.Y+thickness, r.Max.Y))
	bottom := image.Rect(r.Min.X, max(r.Max.Y-thickness, r.Min.Y), r.Max.X, r.Max.Y)
	left := image.Rect(r.Min.X, r.Min.Y, min(r.Min.X+thickness, r.Max.X), r.Max.Y)
	right := image.Rect(max(r.Max.X-thickness, r.Min.X), r.Min.Y, r.Max.X, r.Max.Y)

	for _, strip := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(canvas, strip, src, image.Point{}, draw.Src)
	}
}

// drawLabel fills a small box at the fragment's top-left corner and renders
// the 1-based index in white on top of it.
func drawLabel(canvas *image.RGBA, x, y, index int, col color.RGBA) {
	face := basicfont.Face7x13
	text := strconv.Itoa(index)
	textWidth := font.MeasureString(face, text).Ceil()

	box := image.Rect(x, y,
		x+textWidth+2*labelPadding,
		y+face.Height+2*labelPadding,
	).Intersect(canvas.Bounds())
	if box.Empty() {
		return
	}
	draw.Draw(canvas, box, &image.Uniform{C: col}, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x+labelPadding, y+labelPadding+face.Ascent),
	}
	d.DrawString(text)
}
