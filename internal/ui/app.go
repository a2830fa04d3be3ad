package ui

// The annotation window: a canvas with the scaled preview on the left, the category
// sidebar on the right and the navigation bar at the bottom. One image is shown at a
// time; annotations are saved whenever the cursor moves.

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/sensorable/lbldraw"
	"github.com/sensorable/lbldraw/internal/config"
)

const (
	bottomHeight  = 36
	buttonHeight  = 24
	sidebarMinPx  = 160
	swatchSize    = 12
	programTitle  = "lbldraw"
	toastDuration = 3 * time.Second
)

var (
	backgroundColor = color.RGBA{0xEA, 0xE0, 0xD5, 0xFF}
	sidebarColor    = color.RGBA{0xD5, 0xCD, 0xC0, 0xFF}
	buttonColor     = color.RGBA{0xA3, 0xB1, 0x8A, 0xFF}
	buttonDimColor  = color.RGBA{0xC4, 0xC4, 0xC4, 0xFF}
	selectedColor   = color.RGBA{0x8F, 0x97, 0x79, 0xFF}
	textColor       = color.RGBA{0x6C, 0x58, 0x4C, 0xFF}
)

// App runs the annotation window over an open dataset.
type App struct {
	Dataset *lbldraw.Dataset
	Config  *config.Config
	Palette *lbldraw.ColorPalette
	Log     *zap.Logger
}

// New creates the UI for ds.
func New(ds *lbldraw.Dataset, cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		Dataset: ds,
		Config:  cfg,
		Palette: lbldraw.NewColorPalette(time.Now().UnixNano()),
		Log:     logger,
	}
}

// Run opens the window and blocks until it closes. The current image's annotations
// are saved before returning.
func (a *App) Run() {
	driver.Main(a.main)
}

// sidebarWidth is wide enough for the longest category label plus its color swatch.
func (a *App) sidebarWidth() int {
	width := sidebarMinPx
	for _, c := range a.Dataset.Categories {
		if w := measureString(c) + swatchSize + 20; w > width {
			width = w
		}
	}
	return width
}

func (a *App) main(s screen.Screen) {
	ds := a.Dataset
	sidebar := a.sidebarWidth()

	width := a.Config.UI.CanvasWidth + sidebar
	height := a.Config.UI.CanvasHeight + bottomHeight

	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  width,
		Height: height,
		Title:  programTitle,
	})
	if err != nil {
		a.Log.Fatal("failed to open the window", zap.Error(err))
	}
	defer w.Release()

	var b screen.Buffer
	newBuffer := func() {
		if b != nil {
			b.Release()
		}
		b, err = s.NewBuffer(image.Point{X: width, Y: height})
		if err != nil {
			a.Log.Fatal("failed to allocate the window buffer", zap.Error(err))
		}
	}
	newBuffer()
	defer func() {
		if b != nil {
			b.Release()
		}
	}()

	// Per-image state.
	var src image.Image
	var display *image.NRGBA
	var vp Viewport
	var annotations []lbldraw.Annotation

	// Interaction state.
	selected := -1 // index into ds.Categories, -1 when nothing is chosen
	var dragging bool
	var dragStart, dragCur image.Point
	var message string
	var messageUntil time.Time

	// Hit-test areas, filled in by render.
	categoryRects := make([]image.Rectangle, len(ds.Categories))
	var prevRect, nextRect, finishRect image.Rectangle

	toast := func(format string, args ...interface{}) {
		message = fmt.Sprintf(format, args...)
		messageUntil = time.Now().Add(toastDuration)
	}

	canvasArea := func() image.Rectangle {
		return image.Rect(0, 0, width-sidebar, height-bottomHeight)
	}

	// refit rebuilds the preview and the viewport for the current canvas size.
	refit := func() {
		if src == nil {
			display = nil
			vp.Reset()
			return
		}
		area := canvasArea()
		display = lbldraw.FitToCanvas(src, area.Dx(), area.Dy())
		vp.Set(
			image.Pt(src.Bounds().Dx(), src.Bounds().Dy()),
			image.Pt(display.Bounds().Dx(), display.Bounds().Dy()),
			area,
		)
	}

	loadCurrent := func() {
		dragging = false
		src = nil
		annotations = nil

		path := ds.Current()
		img, _, err := lbldraw.LoadImage(path)
		if err != nil {
			a.Log.Warn("failed to load the image", zap.String("path", path), zap.Error(err))
			toast("cannot load %s: %v", path, err)
			refit()
			return
		}
		src = img
		refit()

		annotations, err = ds.LoadAnnotations(path)
		if err != nil {
			a.Log.Warn("failed to load the annotations", zap.String("path", path), zap.Error(err))
			toast("cannot read annotations: %v", err)
			annotations = nil
		}
	}

	saveCurrent := func() error {
		if src == nil {
			return nil
		}
		if err := ds.SaveAnnotations(ds.Current(), annotations); err != nil {
			return errors.Wrapf(err, "failed to save annotations for %q", ds.Current())
		}
		return nil
	}

	// navigate saves the outgoing image before the cursor moves.
	navigate := func(delta int) {
		if err := saveCurrent(); err != nil {
			a.Log.Warn("auto-save failed", zap.Error(err))
			toast("save failed: %v", err)
			return
		}
		moved := false
		if delta > 0 {
			moved = ds.Next()
		} else if delta < 0 {
			moved = ds.Prev()
		}
		if moved {
			loadCurrent()
		}
		w.Send(paint.Event{})
	}

	// commitDrag turns the rubber-band rectangle into an annotation in source pixels.
	commitDrag := func() {
		r := image.Rectangle{Min: dragStart, Max: dragCur}.Canon()
		if r.Dx() <= a.Config.UI.MinBoxPx || r.Dy() <= a.Config.UI.MinBoxPx {
			return
		}
		if selected < 0 || selected >= len(ds.Categories) {
			return
		}

		p1, ok1 := vp.ToImage(vp.Clamp(r.Min))
		p2, ok2 := vp.ToImage(vp.Clamp(r.Max))
		if !ok1 || !ok2 {
			return
		}

		ann := lbldraw.Annotation{Label: ds.Categories[selected]}
		ann.Coords[0] = float64(p1.X)
		ann.Coords[1] = float64(p1.Y)
		ann.Coords[2] = float64(p2.X)
		ann.Coords[3] = float64(p2.Y)
		bounds := src.Bounds()
		ann = ann.ClampTo(float64(bounds.Dx()), float64(bounds.Dy()))
		annotations = append(annotations, ann)
	}

	drawAnnotationBox := func(rgba *image.RGBA, ann lbldraw.Annotation) {
		p1, ok1 := vp.ToCanvas(image.Pt(int(ann.Coords[0]), int(ann.Coords[1])))
		p2, ok2 := vp.ToCanvas(image.Pt(int(ann.Coords[2]), int(ann.Coords[3])))
		if !ok1 || !ok2 {
			return
		}
		col := a.Palette.Default()
		if ann.Label != "" {
			col = a.Palette.ColorFor(ann.Label)
		}
		r := image.Rectangle{Min: p1, Max: p2}.Canon()
		drawRect(rgba, r, col, 2)
		if ann.Label != "" {
			drawString(rgba, r.Min.X+4, r.Min.Y-16, ann.Label, col)
		}
	}

	drawButton := func(rgba *image.RGBA, r image.Rectangle, label string, enabled bool) {
		col := buttonColor
		if !enabled {
			col = buttonDimColor
		}
		fillRect(rgba, r, col)
		drawString(rgba, r.Min.X+8, r.Min.Y+(r.Dy()-13)/2, label, color.White)
	}

	render := func(rgba *image.RGBA) {
		fillRect(rgba, rgba.Bounds(), backgroundColor)

		// The preview and its overlay.
		if display != nil {
			draw.Draw(rgba, vp.ImageRect(), display, image.Point{}, draw.Src)
			for _, ann := range annotations {
				drawAnnotationBox(rgba, ann)
			}
			if dragging && selected >= 0 {
				r := image.Rectangle{Min: dragStart, Max: dragCur}.Canon()
				drawRect(rgba, r, a.Palette.ColorFor(ds.Categories[selected]), 2)
			}
		}

		// Category sidebar.
		sidebarRect := image.Rect(width-sidebar, 0, width, height-bottomHeight)
		fillRect(rgba, sidebarRect, sidebarColor)
		drawString(rgba, sidebarRect.Min.X+8, 8, "Categories", textColor)
		y := 8 + buttonHeight
		for i, cat := range ds.Categories {
			r := image.Rect(sidebarRect.Min.X+4, y, sidebarRect.Max.X-4, y+buttonHeight-2)
			categoryRects[i] = r
			if i == selected {
				fillRect(rgba, r, selectedColor)
			}
			swatch := image.Rect(r.Min.X+4, r.Min.Y+(r.Dy()-swatchSize)/2, 0, 0)
			swatch.Max = swatch.Min.Add(image.Pt(swatchSize, swatchSize))
			fillRect(rgba, swatch, a.Palette.ColorFor(cat))
			drawString(rgba, swatch.Max.X+6, r.Min.Y+(r.Dy()-13)/2, cat, textColor)
			y += buttonHeight
		}

		// Status block under the category list.
		y += 12
		drawString(rgba, sidebarRect.Min.X+8, y, filepath.Base(ds.Current()), textColor)
		y += 18
		drawString(rgba, sidebarRect.Min.X+8, y,
			fmt.Sprintf("%d/%d", ds.Index()+1, ds.Len()), textColor)
		y += 18
		drawString(rgba, sidebarRect.Min.X+8, y,
			fmt.Sprintf("boxes: %d", len(annotations)), textColor)

		// Navigation bar.
		barRect := image.Rect(0, height-bottomHeight, width, height)
		fillRect(rgba, barRect, sidebarColor)
		prevRect = image.Rect(8, barRect.Min.Y+6, 8+90, barRect.Min.Y+6+buttonHeight)
		drawButton(rgba, prevRect, "< Prev", !ds.IsFirst())
		nextRect = image.Rect(prevRect.Max.X+8, prevRect.Min.Y, prevRect.Max.X+8+90, prevRect.Max.Y)
		drawButton(rgba, nextRect, "Next >", !ds.IsLast())
		finishRect = image.Rectangle{}
		if ds.IsLast() {
			finishRect = image.Rect(nextRect.Max.X+8, nextRect.Min.Y, nextRect.Max.X+8+90, nextRect.Max.Y)
			drawButton(rgba, finishRect, "Finish", true)
		}
		if message != "" && time.Now().Before(messageUntil) {
			x := nextRect.Max.X + 110
			if ds.IsLast() {
				x = finishRect.Max.X + 12
			}
			drawString(rgba, x, barRect.Min.Y+10, message, textColor)
		}
	}

	quit := func() {
		if err := saveCurrent(); err != nil {
			a.Log.Warn("save on close failed", zap.Error(err))
		}
	}

	loadCurrent()
	w.Send(paint.Event{})

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				quit()
				return
			}

		case size.Event:
			if e.WidthPx == 0 || e.HeightPx == 0 {
				break
			}
			width = e.WidthPx
			height = e.HeightPx
			// The sidebar stays fixed; only the canvas stretches.
			refit()
			newBuffer()
			w.Send(paint.Event{})

		case paint.Event:
			render(b.RGBA())
			w.Upload(image.Point{}, b, b.Bounds())
			w.Publish()

		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))

			// Navigation bar.
			if p.Y >= height-bottomHeight {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					switch {
					case p.In(prevRect):
						navigate(-1)
					case p.In(nextRect):
						navigate(+1)
					case !finishRect.Empty() && p.In(finishRect):
						a.finish(saveCurrent)
						return
					}
				}
				continue
			}

			// Category sidebar.
			if p.X >= width-sidebar {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					for i, r := range categoryRects {
						if p.In(r) {
							selected = i
							w.Send(paint.Event{})
							break
						}
					}
				}
				continue
			}

			// Canvas.
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				if src == nil {
					continue
				}
				if selected < 0 {
					toast("select a category before drawing")
					w.Send(paint.Event{})
					continue
				}
				if p.In(vp.ImageRect()) {
					dragging = true
					dragStart = p
					dragCur = p
				}
			} else if dragging && e.Direction == mouse.DirNone {
				dragCur = p
				w.Send(paint.Event{})
			} else if dragging && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease {
				dragging = false
				dragCur = p
				commitDrag()
				w.Send(paint.Event{})
			}

		case key.Event:
			if e.Direction != key.DirPress {
				break
			}
			switch e.Code {
			case key.CodeDeleteBackspace, key.CodeDeleteForward:
				if len(annotations) > 0 {
					annotations = annotations[:len(annotations)-1]
					w.Send(paint.Event{})
				}
				continue
			case key.CodeLeftArrow:
				navigate(-1)
				continue
			case key.CodeRightArrow:
				navigate(+1)
				continue
			case key.CodeEscape:
				quit()
				return
			}
			switch e.Rune {
			case 'p', 'P':
				navigate(-1)
			case 'n', 'N':
				navigate(+1)
			case 'q', 'Q':
				quit()
				return
			case '1', '2', '3', '4', '5', '6', '7', '8', '9':
				idx := int(e.Rune - '1')
				if idx < len(ds.Categories) {
					selected = idx
					w.Send(paint.Event{})
				}
			}
		}
	}
}

// finish saves the last image and logs where the records ended up.
func (a *App) finish(save func() error) {
	if err := save(); err != nil {
		a.Log.Warn("save on finish failed", zap.Error(err))
		return
	}
	a.Log.Info("annotation finished",
		zap.Int("images", a.Dataset.Len()),
		zap.String("records", a.Dataset.RecordDir()))
}
