package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_Basis(t *testing.T) {
	cam := NewCameraState()
	for _, yaw := range []float32{0, 0.5, 2, -1.2} {
		cam.Yaw = yaw
		f, r := cam.GetForward(), cam.GetRight()
		assert.InDelta(t, 0, f.Dot(r), 1e-6)
		assertVec3(t, f.Cross(mgl32.Vec3{0, 0, 1}), r, 1e-6)
	}
}

func TestCamera_LookClampsPitch(t *testing.T) {
	cam := NewCameraState()
	cam.Look(0, -1e6)
	assert.Less(t, cam.Pitch, float32(math.Pi/2))
	cam.Look(0, 1e6)
	assert.Greater(t, cam.Pitch, float32(-math.Pi/2))
}

func TestCamera_Move(t *testing.T) {
	cam := NewCameraState()
	start := cam.Position
	cam.Move(1, 0, 0, 0.5)
	assertVec3(t, start.Add(cam.GetForward().Mul(cam.Speed*0.5)), cam.Position, 1e-5)
	cam.Move(0, 0, 1, 1)
	assert.InDelta(t, start[2]+cam.Speed, cam.Position[2], 1e-4)
}

func TestCamera_FillSceneData(t *testing.T) {
	cam := NewCameraState()
	sd := NewSceneData()
	cam.FillSceneData(sd, Resolution{Width: 320, Height: 200}, mgl32.Vec2{})

	assert.Equal(t, mgl32.Vec2{320, 200}, sd.ViewportSize)
	assert.Equal(t, cam.ZNear, sd.ZNear)
	assert.Equal(t, cam.ZFar, sd.ZFar)
	assert.True(t, sd.Projection.Mul4(sd.InvProjection).ApproxEqualThreshold(mgl32.Ident4(), 1e-4))
	assert.Equal(t, sd.Projection, sd.ProjectionView[0])
}

func TestCamera_FillSceneDataJitter(t *testing.T) {
	cam := NewCameraState()
	res := Resolution{Width: 320, Height: 200}
	plain, jittered := NewSceneData(), NewSceneData()
	cam.FillSceneData(plain, res, mgl32.Vec2{})
	j := TAAJitter(1, res)
	cam.FillSceneData(jittered, res, j)

	assert.Equal(t, j, jittered.TAAJitter)
	assert.NotEqual(t, plain.Projection, jittered.Projection)
	assert.Equal(t, plain.View, jittered.View)
}
