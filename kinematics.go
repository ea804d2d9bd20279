package drift

import (
	"math"
	"time"
)

// State is a particle's transient on-screen state for one frame. It is
// recomputed from (Particle, Config, elapsed) every frame and never stored.
type State struct {
	X, Y     float64
	Opacity  float64
	Rotation float64 // radians
}

const (
	// driftAmplitude is the perpendicular sinusoidal offset in pixels that
	// keeps linear travel from looking mechanical.
	driftAmplitude = 30.0
	// overscan extends the travel span past both edges so particles enter
	// and leave off-screen instead of popping.
	overscan = 100.0
)

// TimeProgress returns the sawtooth fraction of the loop period elapsed, in
// [0, 1). It depends only on absolute elapsed time, so the animation loops
// seamlessly regardless of frame drops or irregular render intervals.
func TimeProgress(elapsed time.Duration, cfg Config) float64 {
	tp := math.Mod(elapsed.Seconds()/cfg.period().Seconds(), 1)
	if tp < 0 {
		tp++
	}
	return tp
}

// StateAt computes a particle's position, opacity, and rotation for the
// given elapsed time on a w × h surface. Pure and side-effect-free.
func StateAt(p Particle, cfg Config, elapsed time.Duration, w, h float64) State {
	tp := TimeProgress(elapsed, cfg)

	// Stagger particles: the raw phase offset is added directly before the
	// modulo, so particles never move in lockstep.
	pp := math.Mod(tp+p.Phase, 1)

	// Distance scalar: coverage-derived occupancy and the configured velocity
	// multiplier compose multiplicatively.
	mult := cfg.VelocityMultiplier
	if mult == 0 {
		mult = 1
	}
	ap := pp * p.Velocity * p.Occupancy * mult

	var st State
	switch cfg.Direction {
	case DirectionTopToBottom:
		st.X = p.X*w + driftAmplitude*math.Sin(ap*2*math.Pi+p.Phase)
		st.Y = -overscan + ap*(h+2*overscan)
	case DirectionBottomToTop:
		st.X = p.X*w + driftAmplitude*math.Sin(ap*6*math.Pi+p.Phase)
		st.Y = h + overscan - ap*(h+2*overscan)
	case DirectionLeftToRight:
		st.X = -overscan + ap*(w+2*overscan)
		st.Y = p.Y*h + driftAmplitude*math.Cos(ap*2*math.Pi+p.Phase)
	case DirectionRightToLeft:
		st.X = w + overscan - ap*(w+2*overscan)
		st.Y = p.Y*h + driftAmplitude*math.Cos(ap*6*math.Pi+p.Phase)
	case DirectionDiagonal:
		st.X = ap * w
		st.Y = ap * h
	}

	if cfg.AnimateOpacity {
		// 4π: two opacity pulses per movement loop, decoupling twinkle rate
		// from travel rate.
		pulse := 0.5 + 0.5*math.Sin(pp*4*math.Pi+p.Phase)
		st.Opacity = clamp01(cfg.Opacity.Min + (cfg.Opacity.Max-cfg.Opacity.Min)*pulse)
	} else {
		st.Opacity = clamp01(cfg.Opacity.Max)
	}

	if cfg.Rotate {
		st.Rotation = tp * 2 * math.Pi * p.RotationSpeed
	}

	return st
}
