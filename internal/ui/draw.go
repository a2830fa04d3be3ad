package ui

// Pixel-level drawing helpers for the window buffer.

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func fillRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(img, r, &image.Uniform{col}, image.Point{}, draw.Src)
}

// drawRect strokes the outline of r with the given line width, clipped to img.
func drawRect(img *image.RGBA, r image.Rectangle, col color.Color, width int) {
	r = r.Canon()
	if width < 1 {
		width = 1
	}
	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width)
	bottom := image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y)
	left := image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y)
	right := image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y)
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		fillRect(img, edge.Intersect(img.Bounds()), col)
	}
}

// drawString renders s with its top-left corner at (x, y).
func drawString(img *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent),
	}
	d.DrawString(s)
}

// measureString is the pixel width of s in the UI face.
func measureString(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}
