package drift

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default particle color when no fixed color or palette is
// configured.
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions and offsets throughout the API.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range, used for particle size and
// opacity bounds.
type Range struct {
	Min, Max float64
}

// Shape selects how a particle is drawn.
type Shape uint8

const (
	ShapeCircle Shape = iota // filled disc of radius size/2
	ShapeSquare              // filled square of side size, centered
	ShapeStar                // 10-point alternating-radius polygon
	ShapeHeart               // two cubic curves meeting at a bottom cusp
	ShapeImage               // bitmap decoded from an external resource
	ShapeCustom              // bitmap rasterized from host-supplied content
)

// Direction is the primary travel direction of a particle batch.
type Direction uint8

const (
	DirectionTopToBottom Direction = iota
	DirectionBottomToTop
	DirectionLeftToRight
	DirectionRightToLeft
	DirectionDiagonal // top-left to bottom-right, no drift term
)

// ColorMode selects how each generated particle's color is resolved.
// Modeled as a closed tagged variant: the mode picks which Config field
// (Color, Palette, or neither) participates in generation.
type ColorMode uint8

const (
	ColorModeDefault ColorMode = iota // every particle is ColorWhite
	ColorModeFixed                    // every particle uses Config.Color
	ColorModePalette                  // each particle draws one Config.Palette entry
)

// Coverage is a symbolic setting for how far across the surface a particle
// travels during one loop.
type Coverage uint8

const (
	CoverageQuarter Coverage = iota
	CoverageSemiHalf
	CoverageHalf
	CoverageSemiFull
	CoverageFull
)

// Occupancy returns the fractional travel-distance scalar for the coverage
// level. Unknown values map to full coverage.
func (c Coverage) Occupancy() float64 {
	switch c {
	case CoverageQuarter:
		return 0.25
	case CoverageSemiHalf:
		return 0.35
	case CoverageHalf:
		return 0.5
	case CoverageSemiFull:
		return 0.75
	case CoverageFull:
		return 1.0
	default:
		return 1.0
	}
}

// white pixel singleton used as the triangle source for untextured shape
// fills (lazy; first use happens on the render thread)
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// toRGBA converts a Color to a premultiplied color.RGBA-compatible value.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
