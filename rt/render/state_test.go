package render

import (
	"testing"

	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var res = core.Resolution{Width: 640, Height: 360}

func TestNewState_AppliesConfig(t *testing.T) {
	cfg := sdfrt.DefaultConfig()
	cfg.FovDegrees = 75
	cfg.MaxSteps = 64
	cfg.MaxDistance = 50
	cfg.HitEpsilon = 0.01

	s := NewState(cfg)
	assert.Equal(t, float32(75), s.Camera.FovDegrees)
	assert.Equal(t, uint32(64), s.March.MaxSteps)
	assert.Equal(t, float32(50), s.March.MaxDistance)
	assert.Equal(t, float32(0.01), s.March.HitEpsilon)

	// Zero config falls back to defaults.
	z := NewState(sdfrt.Config{})
	assert.Equal(t, sdfrt.DefaultConfig().MaxSteps, z.March.MaxSteps)
	assert.Equal(t, sdfrt.DefaultConfig().ZFar, z.Camera.ZFar)
}

func TestBuildFrame(t *testing.T) {
	cfg := sdfrt.DefaultConfig()
	s := NewState(cfg)

	sd := s.BuildFrame(res, 2.5)
	require.NotNil(t, sd)
	assert.Equal(t, uint64(1), s.Frame)
	assert.Equal(t, float32(2.5), sd.Time)
	assert.Equal(t, mgl32.Vec2{640, 360}, sd.ViewportSize)
	assert.Equal(t, mgl32.Vec2{}, sd.TAAJitter)
	assert.True(t, sd.FogEnabled)
	assert.Equal(t, core.FogModeExponential, sd.FogMode)
	assert.Positive(t, sd.FogDensity)

	b, err := sd.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, core.SceneDataSize)
}

func TestBuildFrame_FogOff(t *testing.T) {
	cfg := sdfrt.DefaultConfig()
	cfg.Fog = false
	sd := NewState(cfg).BuildFrame(res, 0)
	assert.False(t, sd.FogEnabled)
	assert.Zero(t, sd.FogDensity)
}

func TestBuildFrame_TAAJitterAdvances(t *testing.T) {
	cfg := sdfrt.DefaultConfig()
	cfg.TAA = true
	s := NewState(cfg)

	a := s.BuildFrame(res, 0)
	b := s.BuildFrame(res, 0)
	assert.Equal(t, core.TAAJitter(0, res), a.TAAJitter)
	assert.Equal(t, core.TAAJitter(1, res), b.TAAJitter)
	assert.NotEqual(t, a.TAAJitter, b.TAAJitter)
	assert.NotEqual(t, a.Projection, b.Projection)
}

func TestStep(t *testing.T) {
	s := NewState(sdfrt.DefaultConfig())
	start := s.Camera.Position

	s.Step(Input{}, 1)
	assert.Equal(t, start, s.Camera.Position)
	s.Step(Input{Forward: 1}, 0)
	assert.Equal(t, start, s.Camera.Position)

	s.Step(Input{Up: 1}, 0.5)
	assert.InDelta(t, start[2]+s.Camera.Speed*0.5, s.Camera.Position[2], 1e-5)
}

func TestCycleDebug(t *testing.T) {
	s := NewState(sdfrt.DefaultConfig())
	seen := []string{DebugModeName(s.March.DebugMode)}
	for i := 0; i < 4; i++ {
		seen = append(seen, DebugModeName(s.CycleDebug()))
	}
	assert.Equal(t, []string{"off", "ray direction", "step count", "depth", "off"}, seen)
	assert.Equal(t, "unknown", DebugModeName(42))
}
