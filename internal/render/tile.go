package render

import "fmt"

// Tile is a half-open pixel rectangle [X0,X1) x [Y0,Y1).
type Tile struct {
	X0, Y0, X1, Y1 int
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", t.X0, t.Y0, t.X1, t.Y1)
}

// Tiles splits a res x res grid into tiles of at most size pixels per
// side, row-major from the bottom-left.
func Tiles(res, size int) []Tile {
	if size <= 0 || size > res {
		size = res
	}
	n := (res + size - 1) / size
	out := make([]Tile, 0, n*n)
	for ty := 0; ty < n; ty++ {
		for tx := 0; tx < n; tx++ {
			t := Tile{X0: tx * size, Y0: ty * size, X1: (tx + 1) * size, Y1: (ty + 1) * size}
			if t.X1 > res {
				t.X1 = res
			}
			if t.Y1 > res {
				t.Y1 = res
			}
			out = append(out, t)
		}
	}
	return out
}

// TileError reports which tile a render failed in.
type TileError struct {
	Tile Tile
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("render: tile %s: %v", e.Tile, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }
