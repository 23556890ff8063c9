package core

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"golang.org/x/image/bmp"
)

// RayImage renders every pixel's world ray direction as a colour, mapping
// each component from [-1,1] to [0,255]. It is the CPU reference for the
// kernel's ray-direction debug view.
func RayImage(sd *SceneData, res Resolution) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(res.Width), int(res.Height)))
	guard := Guard{Resolution: res}
	for py := uint32(0); py < res.Height; py++ {
		for px := uint32(0); px < res.Width; px++ {
			if _, ok := guard.Admit(px, py); !ok {
				continue
			}
			d := ScreenRay(sd, px, py, res).Direction
			img.SetRGBA(int(px), int(py), color.RGBA{
				R: unitToByte(d[0]),
				G: unitToByte(d[1]),
				B: unitToByte(d[2]),
				A: 255,
			})
		}
	}
	return img
}

func unitToByte(v float32) uint8 {
	f := (v*0.5 + 0.5) * 255
	switch {
	case math.IsNaN(float64(f)), f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}

// WriteBMP encodes img as a BMP.
func WriteBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encode bmp: %w", err)
	}
	return nil
}
