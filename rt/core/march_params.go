package core

import (
	"github.com/gekko3d/sdfrt/rt/layout"
	"github.com/go-gl/mathgl/mgl32"
)

// Debug views selected by MarchParams.DebugMode.
const (
	DebugOff uint32 = iota
	DebugRayDirection
	DebugStepCount
	DebugDepth
)

// MarchParams configures the raymarch kernel, bound next to SceneData.
type MarchParams struct {
	Sphere         mgl32.Vec4 `gpu:"sphere"` // xyz centre, w radius
	SkyColor       mgl32.Vec4 `gpu:"sky_color"`
	LightDirection mgl32.Vec3 `gpu:"light_direction"`
	MaxSteps       uint32     `gpu:"max_steps"`
	MaxDistance    float32    `gpu:"max_distance"`
	HitEpsilon     float32    `gpu:"hit_epsilon"`
	GroundHeight   float32    `gpu:"ground_height"`
	DebugMode      uint32     `gpu:"debug_mode"`
}

func MarchParamsLayout() *layout.Layout {
	return layout.MustCompile(layout.Uniform, MarchParams{})
}

func DefaultMarchParams() MarchParams {
	return MarchParams{
		Sphere:         mgl32.Vec4{0, 0, 1, 1},
		SkyColor:       mgl32.Vec4{0.55, 0.7, 0.9, 1},
		LightDirection: mgl32.Vec3{0.4, 0.3, 1}.Normalize(),
		MaxSteps:       128,
		MaxDistance:    200,
		HitEpsilon:     0.001,
		GroundHeight:   0,
	}
}

func (p *MarchParams) Bytes() ([]byte, error) {
	return MarchParamsLayout().Bytes(p)
}
