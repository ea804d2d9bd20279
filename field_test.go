package drift

import (
	"math"
	"testing"
	"time"
)

func TestNewFieldGeneratesPopulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticleCount = 30
	f, err := NewField(cfg)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	if got := len(f.Particles()); got != 30 {
		t.Errorf("population = %d, want 30", got)
	}
	if f.Config().ParticleCount != 30 {
		t.Errorf("stored config count = %d", f.Config().ParticleCount)
	}
}

func TestNewFieldRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = Range{Min: 9, Max: 1}
	if _, err := NewField(cfg); err == nil {
		t.Fatal("NewField accepted an invalid config")
	}
}

func TestSetConfigMotionChangeKeepsPopulation(t *testing.T) {
	f, err := NewField(DefaultConfig())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	before := f.Particles()

	cfg := f.Config()
	cfg.Direction = DirectionRightToLeft
	cfg.Period = time.Minute
	if err := f.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	after := f.Particles()
	if len(before) != len(after) {
		t.Fatalf("population size changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("particle %d regenerated on a motion-only change", i)
		}
	}
	if f.fade != nil {
		t.Error("motion-only change started a crossfade")
	}
}

func TestSetConfigIdentityChangeRegenerates(t *testing.T) {
	f, err := NewField(DefaultConfig())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	cfg := f.Config()
	cfg.ParticleCount = 80
	if err := f.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if got := len(f.Particles()); got != 80 {
		t.Errorf("population = %d, want 80", got)
	}
	if f.fade == nil {
		t.Error("identity change did not start a crossfade")
	}
	if f.fadeAlpha != 0 {
		t.Errorf("crossfade starts at alpha %v, want 0", f.fadeAlpha)
	}
}

func TestSetConfigRejectsInvalid(t *testing.T) {
	f, err := NewField(DefaultConfig())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	before := f.Config()

	bad := before
	bad.Opacity = Range{Min: 0.8, Max: 0.2}
	if err := f.SetConfig(bad); err == nil {
		t.Fatal("SetConfig accepted an invalid config")
	}
	if got := f.Config().Opacity; got != before.Opacity {
		t.Errorf("rejected config mutated the field: opacity %+v", got)
	}
}

func TestSetConfigPeriodChangePreservesLoopPosition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Period = 10 * time.Second
	f, err := NewField(cfg)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	// A quarter of the way through the current loop.
	f.start = time.Now().Add(-2500 * time.Millisecond)

	next := f.Config()
	next.Period = 40 * time.Second
	if err := f.SetConfig(next); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	got := TimeProgress(time.Since(f.start), f.Config())
	if math.Abs(got-0.25) > 0.01 {
		t.Errorf("progress after period change = %v, want ~0.25", got)
	}
}

func TestFieldCrossfadeCompletes(t *testing.T) {
	f, err := NewField(DefaultConfig())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	cfg := f.Config()
	cfg.Shape = ShapeStar
	if err := f.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	// Advance well past the fade duration at 60 ticks per second.
	for i := 0; i < 120; i++ {
		f.Update()
	}
	if f.fade != nil {
		t.Error("crossfade still active after its duration")
	}
	assertNear(t, "settled alpha", f.fadeAlpha, 1)
}
