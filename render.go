package drift

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// drawCall is one particle's resolved draw for the current frame. Calls are
// built purely from kinematic state, then submitted against the GPU in a
// second pass, so the build step stays testable without a graphics context.
type drawCall struct {
	x, y     float64
	rotation float64
	size     float64
	opacity  float64
	color    Color
}

// spriteKey identifies a cached sprite: shape geometry (or a bitmap source)
// at a pixel size with baked-in glow and blur effects. Tint and opacity are
// applied per draw, so one sprite serves every color in a palette.
type spriteKey struct {
	shape  Shape
	source string
	px     int
	glow   int
	blur   int
}

// Renderer turns particle kinematic state into draws on a destination image.
// Shape sprites are rasterized once per (shape, size, effects) combination
// and reused; bitmap sources come from the injected AssetCache.
type Renderer struct {
	cache   *AssetCache
	sprites map[spriteKey]*ebiten.Image
	calls   []drawCall
	imgOp   ebiten.DrawImageOptions
}

// NewRenderer creates a renderer drawing bitmap shapes out of cache.
func NewRenderer(cache *AssetCache) *Renderer {
	return &Renderer{
		cache:   cache,
		sprites: make(map[spriteKey]*ebiten.Image),
	}
}

// RenderFrame draws every particle's state at the given elapsed time into
// dst. The bounds of dst define the field dimensions.
func (r *Renderer) RenderFrame(dst *ebiten.Image, particles []Particle, cfg Config, elapsed time.Duration) {
	r.renderFrame(dst, particles, cfg, elapsed, 1)
}

func (r *Renderer) renderFrame(dst *ebiten.Image, particles []Particle, cfg Config, elapsed time.Duration, alphaScale float64) {
	b := dst.Bounds()
	r.calls = r.buildCalls(r.calls[:0], particles, cfg, elapsed, float64(b.Dx()), float64(b.Dy()), alphaScale)
	r.submitCalls(dst, cfg)
}

// buildCalls evaluates kinematics for each particle and appends the visible
// draws to dst. Fully transparent particles produce no call.
func (r *Renderer) buildCalls(dst []drawCall, particles []Particle, cfg Config, elapsed time.Duration, w, h, alphaScale float64) []drawCall {
	for i := range particles {
		p := particles[i]
		st := StateAt(p, cfg, elapsed, w, h)
		op := st.Opacity * alphaScale
		if op <= 0 {
			continue
		}
		dst = append(dst, drawCall{
			x:        st.X,
			y:        st.Y,
			rotation: st.Rotation,
			size:     p.Size,
			opacity:  op,
			color:    p.Color,
		})
	}
	return dst
}

func (r *Renderer) submitCalls(dst *ebiten.Image, cfg Config) {
	glowR := effectRadius(cfg.Glow, cfg.GlowRadius)
	blurR := blurRadius(cfg.Blur, cfg.BlurSigma)

	for i := range r.calls {
		c := &r.calls[i]
		sprite := r.resolveSprite(cfg, c.size, glowR, blurR)
		if sprite == nil {
			continue
		}

		sb := sprite.Bounds()
		sw := float64(sb.Dx())
		sh := float64(sb.Dy())

		op := &r.imgOp
		op.GeoM.Reset()
		op.GeoM.Translate(-sw/2, -sh/2)
		if c.rotation != 0 {
			op.GeoM.Rotate(c.rotation)
		}
		op.GeoM.Translate(c.x, c.y)

		// Premultiplied tint; sprites are white so the scale is the color.
		a := clamp01(c.opacity * c.color.A)
		op.ColorScale.Reset()
		op.ColorScale.Scale(
			float32(c.color.R*a),
			float32(c.color.G*a),
			float32(c.color.B*a),
			float32(a),
		)
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(sprite, op)
	}
}

// resolveSprite returns the sprite to draw for one particle at the given
// size. Bitmap-backed shapes fall back to a procedural circle while their
// source is still loading or failed; the load is (re)triggered here so a
// failed asset is retried on the next frame that needs it.
func (r *Renderer) resolveSprite(cfg Config, size float64, glowR, blurR int) *ebiten.Image {
	px := int(math.Ceil(size))
	if px < 1 {
		px = 1
	}

	switch cfg.Shape {
	case ShapeImage, ShapeCustom:
		key := AssetKey{Source: cfg.sourceID(), Size: px}
		if img, ok := r.cache.Get(key); ok {
			return r.bitmapSprite(cfg.Shape, key.Source, img, glowR, blurR)
		}
		r.ensureSource(cfg, key, px)
		return r.shapeSprite(ShapeCircle, px, glowR, blurR)
	default:
		return r.shapeSprite(cfg.Shape, px, glowR, blurR)
	}
}

func (r *Renderer) ensureSource(cfg Config, key AssetKey, px int) {
	switch {
	case cfg.Shape == ShapeImage && cfg.Image != nil && cfg.Image.Load != nil:
		load := cfg.Image.Load
		src := cfg.Image.ID
		r.cache.EnsureLoaded(key, func() (image.Image, error) {
			return load(src)
		})
	case cfg.Shape == ShapeCustom && cfg.Custom != nil && cfg.Custom.Render != nil:
		render := cfg.Custom.Render
		r.cache.EnsureLoaded(key, func() (image.Image, error) {
			return render(px)
		})
	}
}

// shapeSprite returns (building on first use) the cached white sprite for a
// procedural shape with the given effects baked in.
func (r *Renderer) shapeSprite(shape Shape, px, glowR, blurR int) *ebiten.Image {
	key := spriteKey{shape: shape, px: px, glow: glowR, blur: blurR}
	if img, ok := r.sprites[key]; ok {
		return img
	}
	img := buildShapeSprite(shape, px, glowR, blurR)
	r.sprites[key] = img
	return img
}

// bitmapSprite returns (composing on first use) the cached sprite for a
// loaded bitmap with the given effects baked in. Without effects the cache
// entry is drawn directly.
func (r *Renderer) bitmapSprite(shape Shape, source string, img *ebiten.Image, glowR, blurR int) *ebiten.Image {
	if glowR <= 0 && blurR <= 0 {
		return img
	}
	key := spriteKey{shape: shape, source: source, px: img.Bounds().Dx(), glow: glowR, blur: blurR}
	if sprite, ok := r.sprites[key]; ok {
		return sprite
	}

	pad := glowR + blurR
	b := img.Bounds()
	side := max(b.Dx(), b.Dy()) + 2*pad
	crisp := ebiten.NewImage(side, side)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(side-b.Dx())/2, float64(side-b.Dy())/2)
	crisp.DrawImage(img, op)

	sprite := composeEffects(crisp, side, glowR, blurR)
	r.sprites[key] = sprite
	return sprite
}

// buildShapeSprite rasterizes a white shape sprite with optional glow and
// blur. The sprite is padded by the effect radii so nothing clips.
func buildShapeSprite(shape Shape, px, glowR, blurR int) *ebiten.Image {
	pad := glowR + blurR
	side := px + 2*pad
	if side < 1 {
		side = 1
	}
	center := float64(side) / 2

	crisp := ebiten.NewImage(side, side)
	rasterizeShape(crisp, shape, center, center, float64(px))

	if glowR <= 0 && blurR <= 0 {
		return crisp
	}
	return composeEffects(crisp, side, glowR, blurR)
}

// composeEffects bakes blur and glow onto a crisp sprite, consuming it.
func composeEffects(crisp *ebiten.Image, side, glowR, blurR int) *ebiten.Image {
	out := ebiten.NewImage(side, side)

	if blurR > 0 {
		// Blur softens the shape itself.
		blurred := ebiten.NewImage(side, side)
		blurInto(blurred, crisp, blurR)
		crisp.Deallocate()
		if glowR <= 0 {
			out.Deallocate()
			return blurred
		}
		crisp = blurred
	}

	if glowR > 0 {
		// Glow is a blurred halo composed behind the crisp (or blurred)
		// sprite; drawing it twice deepens the halo without a shader.
		halo := ebiten.NewImage(side, side)
		blurInto(halo, crisp, glowR)
		op := &ebiten.DrawImageOptions{}
		out.DrawImage(halo, op)
		out.DrawImage(halo, op)
		out.DrawImage(crisp, op)
		halo.Deallocate()
		crisp.Deallocate()
	}

	return out
}

// effectRadius converts an enabled/strength pair into whole pixels.
func effectRadius(enabled bool, radius float64) int {
	if !enabled || radius <= 0 {
		return 0
	}
	return int(math.Ceil(radius))
}

// blurRadius maps a Gaussian sigma onto the Kawase pass radius. Three sigmas
// cover effectively all of a Gaussian kernel's weight.
func blurRadius(enabled bool, sigma float64) int {
	if !enabled || sigma <= 0 {
		return 0
	}
	return int(math.Ceil(3 * sigma))
}

// ClearSprites drops all cached shape sprites, releasing their textures.
// Bitmap assets live in the AssetCache and are cleared there.
func (r *Renderer) ClearSprites() {
	for k, img := range r.sprites {
		img.Deallocate()
		delete(r.sprites, k)
	}
}
