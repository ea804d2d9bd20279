package drift

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeSeconds is the crossfade duration applied when a configuration change
// replaces the particle population.
const fadeSeconds = 0.6

// Field is the host-facing owner of one ambient particle animation: a
// configuration, its deterministically generated particles, the renderer
// and asset cache they draw through, and a start instant for the shared
// clock. Call Update once per tick and Draw once per frame, in that order,
// the way an ebiten.Game's methods are called.
type Field struct {
	cfg       Config
	particles []Particle
	renderer  *Renderer
	cache     *AssetCache
	start     time.Time

	fade      *gween.Tween
	fadeAlpha float64
}

// NewField creates a field from cfg. The configuration is validated; the
// particle population is generated immediately and bitmap assets load lazily
// on first draw.
func NewField(cfg Config) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache := NewAssetCache()
	return &Field{
		cfg:       cfg,
		particles: GenerateBatch(cfg),
		renderer:  NewRenderer(cache),
		cache:     cache,
		start:     time.Now(),
		fadeAlpha: 1,
	}, nil
}

// SetConfig replaces the field's configuration. Changes that alter particle
// identity (shape, count, sizing, coloring, coverage, bitmap source)
// regenerate the population and fade the new one in; purely kinematic
// changes (direction, period, velocity, effects) apply immediately to the
// existing particles. On a period change the clock is rebased so the loop
// position is continuous rather than jumping to a rescaled progress.
func (f *Field) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if regenerationNeeded(f.cfg, cfg) {
		f.particles = GenerateBatch(cfg)
		f.fade = gween.New(0, 1, fadeSeconds, ease.OutQuad)
		f.fadeAlpha = 0
	} else if cfg.period() != f.cfg.period() {
		f.rebaseClock(cfg)
	}
	f.cfg = cfg
	return nil
}

// rebaseClock shifts the start instant so the current time progress carries
// over to the new period.
func (f *Field) rebaseClock(cfg Config) {
	now := time.Now()
	tp := TimeProgress(now.Sub(f.start), f.cfg)
	f.start = now.Add(-time.Duration(tp * float64(cfg.period())))
}

// Update advances the crossfade. Call once per ebiten tick.
func (f *Field) Update() {
	if f.fade == nil {
		return
	}
	dt := float32(1.0 / float64(ebiten.TPS()))
	v, done := f.fade.Update(dt)
	f.fadeAlpha = float64(v)
	if done {
		f.fade = nil
		f.fadeAlpha = 1
	}
}

// Draw renders the field into dst at the current wall-clock position of the
// loop. The bounds of dst define the field dimensions, so the same Field
// adapts when its destination is resized.
func (f *Field) Draw(dst *ebiten.Image) {
	if len(f.particles) == 0 {
		return
	}
	f.renderer.renderFrame(dst, f.particles, f.cfg, time.Since(f.start), f.fadeAlpha)
}

// DrawAt renders the field at an explicit elapsed time instead of the
// field's own clock. Useful for capture and for deterministic tests.
func (f *Field) DrawAt(dst *ebiten.Image, elapsed time.Duration) {
	if len(f.particles) == 0 {
		return
	}
	f.renderer.renderFrame(dst, f.particles, f.cfg, elapsed, f.fadeAlpha)
}

// Config returns the field's current configuration.
func (f *Field) Config() Config {
	return f.cfg
}

// Particles returns the live particle population. The slice is owned by the
// field; treat it as read-only.
func (f *Field) Particles() []Particle {
	return f.particles
}

// Cache returns the field's asset cache, e.g. to Clear it on teardown or to
// preload bitmap sources before the first draw.
func (f *Field) Cache() *AssetCache {
	return f.cache
}

// Dispose releases cached textures. The field must not be drawn afterward.
func (f *Field) Dispose() {
	f.renderer.ClearSprites()
	f.cache.Clear()
}
