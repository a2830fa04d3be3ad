package ui

// The viewport maps between canvas (display) coordinates and source-image pixels. The
// scaled preview is letterboxed into the canvas area, centered on both axes; the
// mapping is a per-axis linear scale between the displayed size and the native size.

import "image"

// Viewport is the display transform for the currently loaded image.
type Viewport struct {
	src  image.Point     // native image size in pixels
	rect image.Rectangle // where the scaled preview sits within the canvas
}

// Set positions a preview of size display for a source image of size src, centered
// within the canvas area.
func (v *Viewport) Set(src, display image.Point, canvas image.Rectangle) {
	offset := canvas.Min.Add(image.Pt(
		(canvas.Dx()-display.X)/2,
		(canvas.Dy()-display.Y)/2,
	))
	v.src = src
	v.rect = image.Rectangle{Min: offset, Max: offset.Add(display)}
}

// Reset clears the viewport. Transforms fail until Set is called again.
func (v *Viewport) Reset() {
	*v = Viewport{}
}

// Loaded reports whether an image transform is available.
func (v *Viewport) Loaded() bool {
	return v.src.X > 0 && v.src.Y > 0 && !v.rect.Empty()
}

// ImageRect is the canvas area covered by the scaled preview.
func (v *Viewport) ImageRect() image.Rectangle {
	return v.rect
}

// ToImage maps a canvas point to native image pixels. It fails when no image is loaded
// or when p lies outside the displayed preview.
func (v *Viewport) ToImage(p image.Point) (image.Point, bool) {
	if !v.Loaded() || !p.In(v.rect) {
		return image.Point{}, false
	}

	scaleX := float64(v.src.X) / float64(v.rect.Dx())
	scaleY := float64(v.src.Y) / float64(v.rect.Dy())
	return image.Pt(
		int(float64(p.X-v.rect.Min.X)*scaleX),
		int(float64(p.Y-v.rect.Min.Y)*scaleY),
	), true
}

// ToCanvas maps native image pixels to a canvas point.
func (v *Viewport) ToCanvas(p image.Point) (image.Point, bool) {
	if !v.Loaded() {
		return image.Point{}, false
	}

	scaleX := float64(v.rect.Dx()) / float64(v.src.X)
	scaleY := float64(v.rect.Dy()) / float64(v.src.Y)
	return image.Pt(
		v.rect.Min.X+int(float64(p.X)*scaleX),
		v.rect.Min.Y+int(float64(p.Y)*scaleY),
	), true
}

// Clamp moves a canvas point into the displayed preview area, so that drags released
// outside the image still resolve to a valid image coordinate.
func (v *Viewport) Clamp(p image.Point) image.Point {
	if v.rect.Empty() {
		return p
	}
	if p.X < v.rect.Min.X {
		p.X = v.rect.Min.X
	}
	if p.X > v.rect.Max.X-1 {
		p.X = v.rect.Max.X - 1
	}
	if p.Y < v.rect.Min.Y {
		p.Y = v.rect.Min.Y
	}
	if p.Y > v.rect.Max.Y-1 {
		p.Y = v.rect.Max.Y - 1
	}
	return p
}
