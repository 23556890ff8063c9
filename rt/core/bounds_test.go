package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestGuard_Corners(t *testing.T) {
	g := Guard{Resolution: Resolution{Width: 101, Height: 57}}

	for _, p := range [][2]uint32{{0, 0}, {100, 56}, {100, 0}, {0, 56}} {
		ndc, ok := g.Admit(p[0], p[1])
		assert.True(t, ok, "pixel %v", p)
		assert.True(t, NDCInRange(ndc), "pixel %v ndc %v", p, ndc)
	}
	for _, p := range [][2]uint32{{101, 0}, {0, 57}, {101, 57}, {200, 300}} {
		assert.False(t, g.Contains(p[0], p[1]), "pixel %v", p)
		_, ok := g.Admit(p[0], p[1])
		assert.False(t, ok, "pixel %v", p)
	}
}

func TestGuard_EmptyResolutionRejectsEverything(t *testing.T) {
	g := Guard{}
	_, ok := g.Admit(0, 0)
	assert.False(t, ok)
}

func TestNDCInRange(t *testing.T) {
	assert.True(t, NDCInRange(mgl32.Vec2{-1, 1}))
	assert.False(t, NDCInRange(mgl32.Vec2{1.0001, 0}))
	assert.False(t, NDCInRange(mgl32.Vec2{0, -1.0001}))
}

func TestGridFor(t *testing.T) {
	tests := []struct {
		name   string
		res    Resolution
		tile   Tile
		layers uint32
		want   Grid
	}{
		{"exact", Resolution{1280, 720}, DefaultTile, 1, Grid{160, 90, 1}},
		{"overshoot", Resolution{1281, 721}, DefaultTile, 1, Grid{161, 91, 1}},
		{"zero tile", Resolution{3, 5}, Tile{}, 0, Grid{3, 5, 1}},
		{"stereo", Resolution{64, 64}, Tile{16, 4}, 2, Grid{4, 16, 2}},
		{"empty", Resolution{}, DefaultTile, 1, Grid{0, 0, 1}},
		{"huge", Resolution{math.MaxUint32 - 2, 8}, DefaultTile, 1, Grid{math.MaxUint32/8 + 1, 1, 1}},
		{"max", Resolution{math.MaxUint32, 1}, Tile{1, 1}, 1, Grid{math.MaxUint32, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GridFor(tt.res, tt.tile, tt.layers)
			assert.Equal(t, tt.want, g)
			if !tt.res.Empty() {
				x, y := g.Invocations(tt.tile)
				assert.GreaterOrEqual(t, x, tt.res.Width)
				assert.GreaterOrEqual(t, y, tt.res.Height)
			}
		})
	}
	assert.True(t, GridFor(Resolution{}, DefaultTile, 1).Empty())
	assert.Equal(t, "160x90x1", GridFor(Resolution{1280, 720}, DefaultTile, 1).String())
}
