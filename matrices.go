package winograd

// g is the 6×3 filter transform matrix of F(4×4,3×3).
var g = [WindowSize][KernelSize]float32{
	{1.0 / 4, 0, 0},
	{-1.0 / 6, -1.0 / 6, -1.0 / 6},
	{-1.0 / 6, 1.0 / 6, -1.0 / 6},
	{1.0 / 24, 1.0 / 12, 1.0 / 6},
	{1.0 / 24, -1.0 / 12, 1.0 / 6},
	{0, 0, 1},
}

// bt is the 6×6 image transform matrix Bᵀ of F(4×4,3×3). Entries are
// exact integers.
var bt = [WindowSize][WindowSize]float32{
	{4, 0, -5, 0, 1, 0},
	{0, -4, -4, 1, 1, 0},
	{0, 4, -4, -1, 1, 0},
	{0, -2, -1, 2, 1, 0},
	{0, 2, -1, -2, 1, 0},
	{0, 4, 0, -5, 0, 1},
}

// FilterMatrix returns a copy of G.
func FilterMatrix() [WindowSize][KernelSize]float32 {
	return g
}

// ImageMatrix returns a copy of Bᵀ.
func ImageMatrix() [WindowSize][WindowSize]float32 {
	return bt
}
