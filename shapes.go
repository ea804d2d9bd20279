package drift

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const heartSegments = 16

// starPoints returns the 10-point outline of a five-pointed star centered at
// (cx, cy). Outer points sit on a circle of radius size/2, inner points at
// 0.4 of that, and the first outer point faces up.
func starPoints(cx, cy, size float64) []Vec2 {
	outer := size / 2
	inner := outer * 0.4
	pts := make([]Vec2, 10)
	for i := range pts {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i)*math.Pi/5 - math.Pi/2
		pts[i] = Vec2{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// heartPoints returns a closed heart outline centered at (cx, cy), built from
// two mirrored cubic Béziers flattened to line segments. The geometry is
// authored on a 16-unit grid and scaled so the outline spans roughly size.
func heartPoints(cx, cy, size float64) []Vec2 {
	s := size / 16

	bottom := Vec2{X: 0, Y: 8 * s}
	notch := Vec2{X: 0, Y: -4 * s}
	lc1 := Vec2{X: -14 * s, Y: 2 * s}
	lc2 := Vec2{X: -4 * s, Y: -14 * s}
	rc1 := Vec2{X: 4 * s, Y: -14 * s}
	rc2 := Vec2{X: 14 * s, Y: 2 * s}

	pts := make([]Vec2, 0, 2*heartSegments)
	flat := func(a, c1, c2, b Vec2) {
		for i := 0; i < heartSegments; i++ {
			t := float64(i) / float64(heartSegments)
			u := 1 - t
			u2 := u * u
			t2 := t * t
			pts = append(pts, Vec2{
				X: cx + u2*u*a.X + 3*u2*t*c1.X + 3*u*t2*c2.X + t2*t*b.X,
				Y: cy + u2*u*a.Y + 3*u2*t*c1.Y + 3*u*t2*c2.Y + t2*t*b.Y,
			})
		}
	}
	flat(bottom, lc1, lc2, notch)
	flat(notch, rc1, rc2, bottom)
	return pts
}

// fillFan fills a closed outline into dst as a triangle fan around an
// explicit hub vertex at (hubX, hubY). The hub keeps mildly concave outlines
// (the heart notch) rendering correctly where a boundary-anchored fan would
// fold over itself. All vertices sample the shared white pixel so the fill
// is solid.
func fillFan(dst *ebiten.Image, pts []Vec2, hubX, hubY float64) {
	n := len(pts)
	if n < 3 {
		return
	}

	verts := make([]ebiten.Vertex, n+1)
	inds := make([]uint16, n*3)

	verts[0] = ebiten.Vertex{
		DstX: float32(hubX), DstY: float32(hubY),
		SrcX: 0.5, SrcY: 0.5,
		ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
	}
	for i, p := range pts {
		verts[i+1] = ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	for i := 0; i < n; i++ {
		inds[i*3] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(1 + (i+1)%n)
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	dst.DrawTriangles(verts, inds, ensureWhitePixel(), op)
}

// rasterizeShape draws a white, full-opacity shape of the given pixel size
// centered at (cx, cy) in dst. Color and opacity are applied later as a tint
// when the sprite is composited.
func rasterizeShape(dst *ebiten.Image, shape Shape, cx, cy, size float64) {
	switch shape {
	case ShapeSquare:
		vector.DrawFilledRect(dst,
			float32(cx-size/2), float32(cy-size/2),
			float32(size), float32(size),
			ColorWhite.toRGBA(), true)
	case ShapeStar:
		fillFan(dst, starPoints(cx, cy, size), cx, cy)
	case ShapeHeart:
		fillFan(dst, heartPoints(cx, cy, size), cx, cy)
	default:
		vector.DrawFilledCircle(dst,
			float32(cx), float32(cy), float32(size/2),
			ColorWhite.toRGBA(), true)
	}
}
