package winograd

import (
	"fmt"
	"testing"

	"github.com/LynnColeArt/winograd/internal/reference"
)

func TestContractMatchesReference(t *testing.T) {
	const ci, co, n, h, w = 5, 7, 3, 8, 12
	W := randomTensor(11, ci, 3, 3, co)
	I := randomTensor(12, ci, h, w, n)
	fb, ib := packOrFail(t, W, I)

	M, err := Contract(n, co, fb, ib)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if fmt.Sprint(M.Shape) != "[3 7 2 3 6 6]" {
		t.Fatalf("Unexpected shape %v", M.Shape)
	}

	u := reference.Filter(W.Data, ci, co)
	v := reference.Image(I.Data, ci, h, w, n)
	want := toFloat32(reference.Contract(u, v, n, co, ci, h/4, w/4))
	assertClose(t, "M", want, M.Data, ToleranceConfig{AbsTol: 1e-3, RelTol: 1e-4})
}

func TestContractBlockedMatchesNaive(t *testing.T) {
	sizes := []int{1, 31, 32, 33, 64}
	const ci, h, w = 3, 8, 8

	for _, n := range sizes {
		for _, co := range sizes {
			t.Run(fmt.Sprintf("N%d_Co%d", n, co), func(t *testing.T) {
				W := randomTensor(int64(co), ci, 3, 3, co)
				I := randomTensor(int64(1000+n), ci, h, w, n)
				fb, ib := packOrFail(t, W, I)

				naive, err := Contract(n, co, fb, ib)
				if err != nil {
					t.Fatalf("Contract: %v", err)
				}
				blocked, err := ContractBlocked(n, co, fb, ib)
				if err != nil {
					t.Fatalf("ContractBlocked: %v", err)
				}
				if fmt.Sprint(naive.Shape) != fmt.Sprint(blocked.Shape) {
					t.Fatalf("Shapes differ: %v vs %v", naive.Shape, blocked.Shape)
				}
				assertClose(t, "blocked", naive.Data, blocked.Data, DefaultTolerance())
			})
		}
	}
}

func TestContractGemmMatchesNaive(t *testing.T) {
	cases := []struct{ n, co, ci int }{
		{1, 1, 1},
		{2, 33, 4},
		{33, 5, 16},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("N%d_Co%d_Ci%d", c.n, c.co, c.ci), func(t *testing.T) {
			W := randomTensor(21, c.ci, 3, 3, c.co)
			I := randomTensor(22, c.ci, 8, 8, c.n)
			fb, ib := packOrFail(t, W, I)

			naive, err := Contract(c.n, c.co, fb, ib)
			if err != nil {
				t.Fatalf("Contract: %v", err)
			}
			gemm, err := ContractGemm(c.n, c.co, fb, ib)
			if err != nil {
				t.Fatalf("ContractGemm: %v", err)
			}
			assertClose(t, "gemm", naive.Data, gemm.Data, RelaxedTolerance())
		})
	}
}

func TestContractDegenerate(t *testing.T) {
	// Ci=Co=N=1, one tile: all-ones filter against a unit impulse at (1,1)
	W := NewTensor(1, 3, 3, 1)
	for i := range W.Data {
		W.Data[i] = 1
	}
	I := NewTensor(1, 4, 4, 1)
	I.Set(1, 0, 1, 1, 0)
	fb, ib := packOrFail(t, W, I)

	r := []float32{0.25, -0.5, -1.0 / 6, 7.0 / 24, 0.125, 1}
	col := []float32{-5, -4, -4, -1, -1, 0}

	for _, contract := range []struct {
		name string
		fn   func(int, int, *FilterBlocks, *ImageBlocks) (*Tensor, error)
	}{
		{"naive", Contract},
		{"blocked", ContractBlocked},
		{"gemm", ContractGemm},
	} {
		M, err := contract.fn(1, 1, fb, ib)
		if err != nil {
			t.Fatalf("%s: %v", contract.name, err)
		}
		want := make([]float32, Positions)
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				want[i*6+j] = r[i] * r[j] * col[i] * col[j]
			}
		}
		assertClose(t, contract.name, want, M.Data, DefaultTolerance())
	}
}

func TestContractNoLeakage(t *testing.T) {
	const ci, co, n = 2, 3, 2
	W := randomTensor(31, ci, 3, 3, co)
	I := randomTensor(32, ci, 8, 8, n)
	fb, ib := packOrFail(t, W, I)

	base, err := Contract(n, co, fb, ib)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}

	// Perturb V for batch 1, tile (0,1) only
	ib2 := &ImageBlocks{Blocks: ib.Blocks, TilesY: ib.TilesY, TilesX: ib.TilesX, Channels: ib.Channels,
		Data: append([]float32(nil), ib.Data...)}
	for c := 0; c < ci; c++ {
		for pos := 0; pos < Positions; pos++ {
			ib2.Data[ib2.offset(1, pos, c, 0, 1)] += 3
		}
	}
	// Perturb U for output channel 2 only
	fb2 := &FilterBlocks{Blocks: fb.Blocks, Channels: fb.Channels, Data: append([]float32(nil), fb.Data...)}
	for c := 0; c < ci; c++ {
		for pos := 0; pos < Positions; pos++ {
			fb2.Data[fb2.offset(pos, 2, c)] += 3
		}
	}

	M, err := Contract(n, co, fb2, ib2)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	for b := 0; b < n; b++ {
		for k := 0; k < co; k++ {
			for th := 0; th < 2; th++ {
				for tw := 0; tw < 2; tw++ {
					touched := (b == 1 && th == 0 && tw == 1) || k == 2
					for pos := 0; pos < Positions; pos++ {
						idx := (((b*co+k)*2+th)*2+tw)*Positions + pos
						if !touched && M.Data[idx] != base.Data[idx] {
							t.Fatalf("M[%d,%d,%d,%d] changed without its inputs changing", b, k, th, tw)
						}
					}
				}
			}
		}
	}
}

func TestContractErrors(t *testing.T) {
	fb, ib := packOrFail(t, randomTensor(1, 2, 3, 3, 4), randomTensor(2, 2, 4, 4, 5))
	fbOther, _ := packOrFail(t, randomTensor(1, 3, 3, 3, 4), randomTensor(2, 3, 4, 4, 5))

	for _, contract := range []struct {
		name string
		fn   func(int, int, *FilterBlocks, *ImageBlocks) (*Tensor, error)
	}{
		{"naive", Contract},
		{"blocked", ContractBlocked},
		{"gemm", ContractGemm},
	} {
		if _, err := contract.fn(5, 4, fbOther, ib); !IsChannelMismatchError(err) {
			t.Errorf("%s: expected channel mismatch, got %v", contract.name, err)
		}
		if _, err := contract.fn(33, 4, fb, ib); !IsCapacityError(err) {
			t.Errorf("%s N=33: expected capacity error, got %v", contract.name, err)
		}
		if _, err := contract.fn(5, 33, fb, ib); !IsCapacityError(err) {
			t.Errorf("%s Co=33: expected capacity error, got %v", contract.name, err)
		}
		if _, err := contract.fn(0, 4, fb, ib); err == nil {
			t.Errorf("%s N=0: expected error", contract.name)
		}
		if _, err := contract.fn(5, 4, nil, ib); err == nil {
			t.Errorf("%s nil U: expected error", contract.name)
		}

		// Up to the padded capacity is accepted
		if _, err := contract.fn(32, 32, fb, ib); err != nil {
			t.Errorf("%s at capacity: %v", contract.name, err)
		}
	}
}
