package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraState is a Z-up fly camera.
type CameraState struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32
	Sensitivity float32

	FovDegrees float32
	ZNear      float32
	ZFar       float32
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position:    mgl32.Vec3{0, 6, 1.5},
		Yaw:         0,
		Pitch:       0,
		Speed:       4.0,
		Sensitivity: 0.003,
		FovDegrees:  60,
		ZNear:       0.1,
		ZFar:        1000,
	}
}

func (c *CameraState) GetForward() mgl32.Vec3 {
	// Z-up: Forward in XY plane, Z for pitch
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

// GetRight is forward x up, flattened to the XY plane.
func (c *CameraState) GetRight() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(-math.Cos(float64(c.Yaw))),
		float32(-math.Sin(float64(c.Yaw))),
		0,
	}
}

func (c *CameraState) GetViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.GetForward()), mgl32.Vec3{0, 0, 1})
}

// GetProjectionMatrix returns the clip-corrected perspective projection.
func (c *CameraState) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovDegrees), aspect, c.ZNear, c.ZFar)
	return ClipCorrection().Mul4(proj)
}

// Look applies a mouse delta in pixels. Pitch stays short of the poles so
// LookAtV never sees a forward parallel to up.
func (c *CameraState) Look(dx, dy float32) {
	const limit = math.Pi/2 - 0.01
	c.Yaw += dx * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch-dy*c.Sensitivity, -limit, limit)
}

// Move translates along the camera basis; forward, right and up are in [-1, 1].
func (c *CameraState) Move(forward, right, up, dt float32) {
	step := c.Speed * dt
	c.Position = c.Position.
		Add(c.GetForward().Mul(forward * step)).
		Add(c.GetRight().Mul(right * step)).
		Add(mgl32.Vec3{0, 0, up * step})
}

// FillSceneData writes the camera's matrices, viewport and depth range into
// sd. A non-zero jitter (NDC units) offsets the projection for TAA.
func (c *CameraState) FillSceneData(sd *SceneData, res Resolution, jitter mgl32.Vec2) {
	proj := c.GetProjectionMatrix(res.Aspect())
	if jitter != (mgl32.Vec2{}) {
		proj = Jittered(proj, jitter)
	}
	sd.SetMonoView(proj, c.GetViewMatrix())
	sd.SetViewport(res)
	sd.TAAJitter = jitter
	sd.ZNear = c.ZNear
	sd.ZFar = c.ZFar
}
