package render

import (
	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is one frame's movement axes, each in [-1, 1].
type Input struct {
	Forward float32
	Right   float32
	Up      float32
}

// State is the CPU side of the viewer: camera, kernel parameters and the
// frame counter that drives TAA jitter. It owns no GPU objects.
type State struct {
	Config sdfrt.Config
	Camera *core.CameraState
	March  core.MarchParams
	Frame  uint64
}

// Default exponential fog used when fog is enabled.
const (
	defaultFogDensity    = 0.015
	defaultFogSunScatter = 0.35
)

func NewState(cfg sdfrt.Config) *State {
	cfg.Normalize()

	cam := core.NewCameraState()
	cam.FovDegrees = cfg.FovDegrees
	cam.ZNear = cfg.ZNear
	cam.ZFar = cfg.ZFar

	march := core.DefaultMarchParams()
	march.MaxSteps = cfg.MaxSteps
	march.MaxDistance = cfg.MaxDistance
	march.HitEpsilon = cfg.HitEpsilon

	return &State{Config: cfg, Camera: cam, March: march}
}

// Step moves the camera for one frame.
func (s *State) Step(in Input, dt float32) {
	if in == (Input{}) || dt <= 0 {
		return
	}
	s.Camera.Move(in.Forward, in.Right, in.Up, dt)
}

// BuildFrame assembles the scene data for res at time t (seconds) and
// advances the frame counter.
func (s *State) BuildFrame(res core.Resolution, t float32) *core.SceneData {
	sd := core.NewSceneData()

	var jitter mgl32.Vec2
	if s.Config.TAA {
		jitter = core.TAAJitter(s.Frame, res)
	}
	s.Camera.FillSceneData(sd, res, jitter)
	sd.Time = t

	if s.Config.Fog {
		sd.FogEnabled = true
		sd.FogMode = core.FogModeExponential
		sd.FogDensity = defaultFogDensity
		sd.FogSunScatter = defaultFogSunScatter
	}

	s.Frame++
	return sd
}

// CycleDebug advances to the next debug view and returns it.
func (s *State) CycleDebug() uint32 {
	s.March.DebugMode = (s.March.DebugMode + 1) % (core.DebugDepth + 1)
	return s.March.DebugMode
}

func DebugModeName(mode uint32) string {
	switch mode {
	case core.DebugOff:
		return "off"
	case core.DebugRayDirection:
		return "ray direction"
	case core.DebugStepCount:
		return "step count"
	case core.DebugDepth:
		return "depth"
	}
	return "unknown"
}
