// Package drift renders ambient 2D particle animation for [Ebitengine]:
// snowfall, rising embers, drifting petals, falling hearts — decorative
// motion described declaratively and replayed deterministically.
//
// # Quick start
//
// Describe the animation with a [Config], create a [Field], and call its
// Update and Draw from your [ebiten.Game]:
//
//	cfg := drift.DefaultConfig()
//	cfg.Shape = drift.ShapeCircle
//	cfg.Direction = drift.DirectionTopToBottom
//	field, err := drift.NewField(cfg)
//
//	func (g *Game) Update() error        { g.field.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.field.Draw(s) }
//
// # Determinism
//
// Particles are not simulated. Each particle's traits derive from its index
// through a fixed-seed generator, and each frame's positions are a pure
// function of elapsed time, so two fields with the same configuration render
// identical frames and the animation loops seamlessly at the configured
// period. Replacing the configuration with [Field.SetConfig] regenerates the
// population only when particle identity changes, crossfading the new
// population in (tweened via [gween]).
//
// # Shapes
//
// Circles, squares, stars and hearts are rasterized procedurally and cached
// per size, with optional glow and blur baked in. [ShapeImage] and
// [ShapeCustom] draw caller-supplied bitmaps, loaded asynchronously and
// de-duplicated through [AssetCache]; while a bitmap loads, its particles
// draw as circles.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package drift
