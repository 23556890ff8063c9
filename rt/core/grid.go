package core

import "fmt"

// Tile is a compute workgroup size in invocations.
type Tile struct {
	X, Y uint32
}

// DefaultTile matches @workgroup_size(8, 8, 1).
var DefaultTile = Tile{8, 8}

// Grid is a workgroup count triple for DispatchWorkgroups.
type Grid struct {
	X, Y, Z uint32
}

func (g Grid) String() string { return fmt.Sprintf("%dx%dx%d", g.X, g.Y, g.Z) }

func (g Grid) Empty() bool { return g.X == 0 || g.Y == 0 || g.Z == 0 }

// GridFor covers res with tiles, rounding up. A zero tile dimension is
// treated as 1 and layers below 1 dispatch a single layer.
func GridFor(res Resolution, tile Tile, layers uint32) Grid {
	return Grid{
		X: ceilDiv(res.Width, max(tile.X, 1)),
		Y: ceilDiv(res.Height, max(tile.Y, 1)),
		Z: max(layers, 1),
	}
}

// ceilDiv avoids the n+d-1 form, which wraps for n near MaxUint32.
func ceilDiv(n, d uint32) uint32 {
	if n == 0 {
		return 0
	}
	return (n-1)/d + 1
}

// Invocations is the number of shader invocations the grid launches per layer.
func (g Grid) Invocations(tile Tile) (x, y uint32) {
	return g.X * max(tile.X, 1), g.Y * max(tile.Y, 1)
}
