package core

import "github.com/go-gl/mathgl/mgl32"

// Resolution is an output size in pixels.
type Resolution struct {
	Width, Height uint32
}

func (r Resolution) Empty() bool { return r.Width == 0 || r.Height == 0 }

func (r Resolution) Aspect() float32 {
	if r.Height == 0 {
		return 1
	}
	return float32(r.Width) / float32(r.Height)
}

// Guard rejects invocations that fall outside the logical output. The
// dispatch grid overshoots whenever the resolution is not a multiple of the
// workgroup tile, so every kernel checks its pixel first.
type Guard struct {
	Resolution Resolution
}

// Contains reports whether the pixel is inside [0, res) on both axes.
func (g Guard) Contains(px, py uint32) bool {
	return px < g.Resolution.Width && py < g.Resolution.Height
}

// NDCInRange reports whether ndc lies within [-1, 1] on both axes.
func NDCInRange(ndc mgl32.Vec2) bool {
	return ndc[0] >= -1 && ndc[0] <= 1 && ndc[1] >= -1 && ndc[1] <= 1
}

// Admit returns the pixel's NDC when the invocation may proceed.
func (g Guard) Admit(px, py uint32) (mgl32.Vec2, bool) {
	if !g.Contains(px, py) {
		return mgl32.Vec2{}, false
	}
	ndc := UVToNDC(PixelUV(px, py, g.Resolution))
	if !NDCInRange(ndc) {
		return mgl32.Vec2{}, false
	}
	return ndc, true
}
