package kernels

import "fmt"

// TileGrid maps a linear work-group index onto a Rows×Cols grid of
// spatial tiles in square-wave order.
//
// Rows are taken in pairs. Within a pair, consecutive work-groups zig-zag
// between the two rows so that each column is visited twice before moving
// on, and odd pairs scan their columns right to left. When Rows is odd the
// last row is walked on its own. Neighbouring work-groups therefore touch
// overlapping input windows.
type TileGrid struct {
	Rows  int // GYS
	Cols  int // GXS
	Rows2 int // number of full row pairs, GYS/2
	Cols2 int // work-groups per row pair, 2·GXS
	Div   MagicDivisor
}

// NewTileGrid precomputes the pair geometry and the magic divisor for
// Cols2.
func NewTileGrid(rows, cols int) (TileGrid, error) {
	if rows < 1 || cols < 1 {
		return TileGrid{}, fmt.Errorf("tile grid: dimensions must be positive, got %dx%d", rows, cols)
	}
	if rows*cols > MaxDividend {
		return TileGrid{}, fmt.Errorf("tile grid: %dx%d tiles exceed the work-group index range", rows, cols)
	}
	div, err := Magic(uint32(2 * cols))
	if err != nil {
		return TileGrid{}, err
	}
	return TileGrid{
		Rows:  rows,
		Cols:  cols,
		Rows2: rows / 2,
		Cols2: 2 * cols,
		Div:   div,
	}, nil
}

// Size returns the number of tiles.
func (g TileGrid) Size() int {
	return g.Rows * g.Cols
}

// Remap returns the tile coordinates of work-group blk, 0 <= blk < Size().
func (g TileGrid) Remap(blk int) (gy, gx int) {
	gy2 := int(g.Div.Divide(uint32(blk)))
	gx2 := blk - gy2*g.Cols2

	gy = gy2 << 1
	gx = gx2
	if gy2 != g.Rows2 {
		// inside a pair: 0,1,1,0,0,1,1,0,... selects the row
		gy += (gx2 & 1) ^ ((gx2 & 2) >> 1)
		gx = gx2 >> 1
	}
	if gy2&1 != 0 {
		gx = g.Cols - gx - 1
	}
	return gy, gx
}
