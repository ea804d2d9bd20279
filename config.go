package drift

import (
	"fmt"
	"image"
	"time"
)

// LoadFunc fetches and decodes the bitmap for an external resource
// identifier. It runs off the render path and may block on I/O.
type LoadFunc func(source string) (image.Image, error)

// ContentFunc rasterizes host-supplied content into a bitmap of exactly
// sizePx × sizePx pixels. It runs off the render path.
type ContentFunc func(sizePx int) (image.Image, error)

// ImageSource identifies an external bitmap resource and how to fetch it.
// ID is the cache identity; two sources with equal IDs share cache entries.
type ImageSource struct {
	ID   string
	Load LoadFunc
}

// CustomSource identifies host-rendered content and how to rasterize it.
type CustomSource struct {
	ID     string
	Render ContentFunc
}

// Config controls how a particle batch is generated and animated.
// It is a plain value: copy freely, never mutate a Config shared with a
// running Field. The zero value is not useful; start from DefaultConfig.
type Config struct {
	// Shape selects the particle visual. ShapeImage requires Image;
	// ShapeCustom requires Custom.
	Shape Shape
	// Direction is the primary travel direction.
	Direction Direction
	// ParticleCount is the batch size. Zero or negative yields an empty batch.
	ParticleCount int
	// Size is the particle size range in pixels. Min must not exceed Max.
	Size Range
	// SizeVariation draws each particle's size uniformly from Size. When
	// false, every particle takes Size.Max.
	SizeVariation bool
	// ColorMode picks the color policy; Color and Palette back the fixed and
	// palette modes respectively.
	ColorMode ColorMode
	Color     Color
	Palette   []Color
	// Opacity is the opacity range in [0, 1]. Min must not exceed Max.
	Opacity Range
	// AnimateOpacity pulses opacity twice per movement loop. When false,
	// opacity is constant at Opacity.Max.
	AnimateOpacity bool
	// Glow draws a blurred halo of GlowRadius pixels behind each particle.
	Glow       bool
	GlowRadius float64
	// Blur softens the particle itself with an approximately Gaussian blur
	// of the given sigma.
	Blur      bool
	BlurSigma float64
	// Rotate spins each particle at its own rotation speed, synchronized to
	// the loop period.
	Rotate bool
	// VelocityMultiplier scales travel distance per loop. Zero defaults to 1.
	VelocityMultiplier float64
	// Coverage scales travel distance per loop by a symbolic screen fraction.
	Coverage Coverage
	// Period is the duration of one full animation loop. Non-positive values
	// are clamped to a minimum positive period before use.
	Period time.Duration
	// Image backs ShapeImage; Custom backs ShapeCustom.
	Image  *ImageSource
	Custom *CustomSource
}

// DefaultConfig returns a gentle bottom-up drift of small white circles.
func DefaultConfig() Config {
	return Config{
		Shape:              ShapeCircle,
		Direction:          DirectionBottomToTop,
		ParticleCount:      50,
		Size:               Range{Min: 2, Max: 8},
		SizeVariation:      true,
		Opacity:            Range{Min: 0.1, Max: 0.6},
		AnimateOpacity:     true,
		VelocityMultiplier: 1,
		Coverage:           CoverageFull,
		Period:             10 * time.Second,
	}
}

// Validate reports the first configuration inconsistency found. Generation
// and kinematics do not re-validate; callers that construct configs by hand
// should validate before use.
func (c Config) Validate() error {
	if c.Size.Min > c.Size.Max {
		return fmt.Errorf("drift: size range min %v exceeds max %v", c.Size.Min, c.Size.Max)
	}
	if c.Size.Min < 0 {
		return fmt.Errorf("drift: negative size %v", c.Size.Min)
	}
	if c.Opacity.Min > c.Opacity.Max {
		return fmt.Errorf("drift: opacity range min %v exceeds max %v", c.Opacity.Min, c.Opacity.Max)
	}
	if c.Opacity.Min < 0 || c.Opacity.Max > 1 {
		return fmt.Errorf("drift: opacity range [%v, %v] outside [0, 1]", c.Opacity.Min, c.Opacity.Max)
	}
	if c.ColorMode == ColorModePalette && len(c.Palette) == 0 {
		return fmt.Errorf("drift: palette color mode with empty palette")
	}
	if c.Shape == ShapeImage && (c.Image == nil || c.Image.Load == nil) {
		return fmt.Errorf("drift: image shape without an image source")
	}
	if c.Shape == ShapeCustom && (c.Custom == nil || c.Custom.Render == nil) {
		return fmt.Errorf("drift: custom shape without a content source")
	}
	if c.GlowRadius < 0 {
		return fmt.Errorf("drift: negative glow radius %v", c.GlowRadius)
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("drift: negative blur sigma %v", c.BlurSigma)
	}
	return nil
}

// minPeriod bounds the loop period away from zero; the period is a divisor
// in the time-progress calculation.
const minPeriod = time.Millisecond

// period returns the loop period with the zero-divisor guard applied.
func (c Config) period() time.Duration {
	if c.Period < minPeriod {
		return minPeriod
	}
	return c.Period
}

// sourceID returns the cache identity of the configured bitmap style, or ""
// for procedural shapes.
func (c Config) sourceID() string {
	switch c.Shape {
	case ShapeImage:
		if c.Image != nil {
			return "image:" + c.Image.ID
		}
	case ShapeCustom:
		if c.Custom != nil {
			return "custom:" + c.Custom.ID
		}
	}
	return ""
}

// regenerationNeeded reports whether switching from old to new invalidates a
// generated batch. Motion-only fields (direction, period, velocity, opacity
// animation, rotation, paint effects) reuse the existing particles.
func regenerationNeeded(old, new Config) bool {
	if old.Shape != new.Shape ||
		old.ParticleCount != new.ParticleCount ||
		old.Size != new.Size ||
		old.SizeVariation != new.SizeVariation ||
		old.ColorMode != new.ColorMode ||
		old.Color != new.Color ||
		old.Coverage != new.Coverage ||
		old.sourceID() != new.sourceID() {
		return true
	}
	if len(old.Palette) != len(new.Palette) {
		return true
	}
	for i := range old.Palette {
		if old.Palette[i] != new.Palette[i] {
			return true
		}
	}
	return false
}
