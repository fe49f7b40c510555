package kernels

import (
	"fmt"
	"testing"
)

func TestRemapIsBijection(t *testing.T) {
	for rows := 1; rows <= 9; rows++ {
		for cols := 1; cols <= 7; cols++ {
			g, err := NewTileGrid(rows, cols)
			if err != nil {
				t.Fatalf("NewTileGrid(%d,%d): %v", rows, cols, err)
			}
			seen := make(map[[2]int]int, g.Size())
			for blk := 0; blk < g.Size(); blk++ {
				gy, gx := g.Remap(blk)
				if gy < 0 || gy >= rows || gx < 0 || gx >= cols {
					t.Fatalf("%dx%d: Remap(%d) = (%d,%d) out of range", rows, cols, blk, gy, gx)
				}
				if prev, dup := seen[[2]int{gy, gx}]; dup {
					t.Fatalf("%dx%d: Remap(%d) and Remap(%d) both give (%d,%d)", rows, cols, prev, blk, gy, gx)
				}
				seen[[2]int{gy, gx}] = blk
			}
			if len(seen) != rows*cols {
				t.Fatalf("%dx%d: visited %d tiles", rows, cols, len(seen))
			}
		}
	}
}

func TestRemapOrder(t *testing.T) {
	cases := []struct {
		rows, cols int
		want       string
	}{
		// single row: plain left to right
		{1, 3, "[[0 0] [0 1] [0 2]]"},
		// one pair: zig-zag down each column
		{2, 2, "[[0 0] [1 0] [1 1] [0 1]]"},
		// odd row count: the last row is unpaired and, being pair 1, reversed
		{3, 2, "[[0 0] [1 0] [1 1] [0 1] [2 1] [2 0]]"},
		// second pair scans right to left
		{4, 2, "[[0 0] [1 0] [1 1] [0 1] [2 1] [3 1] [3 0] [2 0]]"},
	}
	for _, c := range cases {
		g, err := NewTileGrid(c.rows, c.cols)
		if err != nil {
			t.Fatalf("NewTileGrid: %v", err)
		}
		var got [][2]int
		for blk := 0; blk < g.Size(); blk++ {
			gy, gx := g.Remap(blk)
			got = append(got, [2]int{gy, gx})
		}
		if s := fmt.Sprint(got); s != c.want {
			t.Errorf("%dx%d order = %s, want %s", c.rows, c.cols, s, c.want)
		}
	}
}

func TestNewTileGridErrors(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 4}, {1 << 16, 1 << 16}} {
		if _, err := NewTileGrid(dims[0], dims[1]); err == nil {
			t.Errorf("NewTileGrid(%d,%d): expected error", dims[0], dims[1])
		}
	}
	g, err := NewTileGrid(5, 3)
	if err != nil {
		t.Fatalf("NewTileGrid: %v", err)
	}
	if g.Rows2 != 2 || g.Cols2 != 6 || g.Size() != 15 {
		t.Errorf("Unexpected grid %+v", g)
	}
}
