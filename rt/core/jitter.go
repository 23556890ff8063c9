package core

import "github.com/go-gl/mathgl/mgl32"

// TAAPhases is the length of the jitter sequence before it repeats.
const TAAPhases = 16

func halton(index, base uint64) float32 {
	f, r := 1.0, 0.0
	for i := index; i > 0; i /= base {
		f /= float64(base)
		r += f * float64(i%base)
	}
	return float32(r)
}

// TAAJitter returns the sub-pixel camera offset for frame, in NDC units.
// Offsets follow the Halton(2,3) sequence and stay within half a pixel.
func TAAJitter(frame uint64, res Resolution) mgl32.Vec2 {
	if res.Empty() {
		return mgl32.Vec2{}
	}
	i := frame%TAAPhases + 1
	px := halton(i, 2) - 0.5
	py := halton(i, 3) - 0.5
	return mgl32.Vec2{px * 2 / float32(res.Width), py * 2 / float32(res.Height)}
}

// Jittered offsets proj by jitter in NDC, applied after projection.
func Jittered(proj mgl32.Mat4, jitter mgl32.Vec2) mgl32.Mat4 {
	return mgl32.Translate3D(jitter[0], jitter[1], 0).Mul4(proj)
}
