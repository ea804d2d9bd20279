package drift

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// blurInto renders a Kawase iterative blur of src into dst. Downscale then
// upscale passes with linear filtering do the averaging; no shader needed.
// Sprites here are small and blurred once at build time, so the temp chain
// is allocated and released per call rather than pooled.
func blurInto(dst, src *ebiten.Image, radius int) {
	op := &ebiten.DrawImageOptions{}
	if radius <= 0 {
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := int(math.Ceil(math.Log2(float64(radius))))
	if passes < 1 {
		passes = 1
	}

	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	temps := make([]*ebiten.Image, passes)

	// Downscale chain: each pass half-size.
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		temps[i] = ebiten.NewImage(w, h)
		op.GeoM.Reset()
		sw := float64(current.Bounds().Dx())
		sh := float64(current.Bounds().Dy())
		op.GeoM.Scale(float64(w)/sw, float64(h)/sh)
		op.Filter = ebiten.FilterLinear
		temps[i].DrawImage(current, op)
		current = temps[i]
	}

	// Upscale back through the chain.
	for i := passes - 2; i >= 0; i-- {
		temps[i].Clear()
		op.GeoM.Reset()
		sw := float64(current.Bounds().Dx())
		sh := float64(current.Bounds().Dy())
		tw := float64(temps[i].Bounds().Dx())
		th := float64(temps[i].Bounds().Dy())
		op.GeoM.Scale(tw/sw, th/sh)
		op.Filter = ebiten.FilterLinear
		temps[i].DrawImage(current, op)
		current = temps[i]
	}

	// Final upscale into dst.
	op.GeoM.Reset()
	sw := float64(current.Bounds().Dx())
	sh := float64(current.Bounds().Dy())
	tw := float64(dst.Bounds().Dx())
	th := float64(dst.Bounds().Dy())
	op.GeoM.Scale(tw/sw, th/sh)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(current, op)

	for _, t := range temps {
		t.Deallocate()
	}
}
