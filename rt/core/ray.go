package core

import "github.com/go-gl/mathgl/mgl32"

// Ray is a world-space ray with a unit direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// PixelUV maps a pixel index to [0,1] through the pixel centre.
func PixelUV(px, py uint32, res Resolution) mgl32.Vec2 {
	return mgl32.Vec2{
		(float32(px) + 0.5) / float32(res.Width),
		(float32(py) + 0.5) / float32(res.Height),
	}
}

func UVToNDC(uv mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{uv[0]*2 - 1, uv[1]*2 - 1}
}

// Reconstruct unprojects uv through the far plane (clip z = 1) into a world
// ray. Matrices are mgl32 column-major; the origin is the translation column
// of invView.
func Reconstruct(uv mgl32.Vec2, invProj, invView mgl32.Mat4) Ray {
	ndc := UVToNDC(uv)
	v := invProj.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 1, 1})
	if v[3] != 0 {
		v = v.Mul(1 / v[3])
	}
	dir := invView.Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 0}).Vec3()
	return Ray{
		Origin:    invView.Col(3).Vec3(),
		Direction: dir.Normalize(),
	}
}

// ScreenRay reconstructs the ray of pixel (px, py) from the frame's inverse
// projection and inverse view.
func ScreenRay(sd *SceneData, px, py uint32, res Resolution) Ray {
	return Reconstruct(PixelUV(px, py, res), sd.InvProjection, sd.InvView)
}

// ClipCorrection converts an OpenGL-style projection (y up, z in [-1,1]) to
// the WebGPU convention of the output texture (row 0 at the top, z in [0,1]).
// Apply it on the left: ClipCorrection().Mul4(proj).
func ClipCorrection() mgl32.Mat4 {
	return mgl32.Mat4{
		1, 0, 0, 0,
		0, -1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
}
