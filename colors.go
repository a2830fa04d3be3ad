package lbldraw

// Category color assignment for the editor overlay.

import (
	"fmt"
	"image/color"
	"math/rand"
)

// defaultBoxColor marks annotations without a category. It is reserved and is never
// handed out for a category.
var defaultBoxColor = color.RGBA{R: 0xFF, A: 0xFF}

// colorPool are the colors assigned to categories in first-use order.
var colorPool = []color.RGBA{
	rgb(0x3498DB), rgb(0x2ECC71), rgb(0xF39C12), rgb(0x9B59B6), rgb(0xE74C3C),
	rgb(0x1ABC9C), rgb(0x34495E), rgb(0xF1C40F), rgb(0xE67E22), rgb(0x95A5A6),
	rgb(0x8E44AD), rgb(0x27AE60), rgb(0x2980B9), rgb(0xD35400), rgb(0x7F8C8D),
	rgb(0x16A085), rgb(0xC0392B), rgb(0x8F44AD), rgb(0x2C3E50), rgb(0xF4D03F),
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// ColorPalette assigns a stable color to each category.
type ColorPalette struct {
	assigned map[string]color.RGBA
	rng      *rand.Rand
}

// NewColorPalette creates an empty palette. seed controls the colors generated once the
// fixed pool is exhausted.
func NewColorPalette(seed int64) *ColorPalette {
	return &ColorPalette{
		assigned: make(map[string]color.RGBA),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// ColorFor returns the color for category, assigning one on first use. Colors come from
// the fixed pool first; once it runs out, random colors are generated, excluding the
// reserved default.
func (p *ColorPalette) ColorFor(category string) color.RGBA {
	if c, ok := p.assigned[category]; ok {
		return c
	}

	var c color.RGBA
	if n := len(p.assigned); n < len(colorPool) {
		c = colorPool[n]
	} else {
		for {
			c = rgb(uint32(p.rng.Intn(0x1000000)))
			if c != defaultBoxColor {
				break
			}
		}
	}
	p.assigned[category] = c
	return c
}

// Default returns the reserved color for annotations without a category.
func (p *ColorPalette) Default() color.RGBA {
	return defaultBoxColor
}

// Hex formats c as an RGB hex string.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
