package kernels

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxDividend is the largest dividend a MagicDivisor handles exactly.
const MaxDividend = 0x7fffffff

// MagicDivisor divides by an invariant integer with a multiply and a
// shift. When the divisor is a power of two Mul is 1 and division is a
// plain right shift.
type MagicDivisor struct {
	Mul   uint32
	Shift uint32
}

// Magic computes the multiplier and shift for unsigned division by d of
// dividends in [0, MaxDividend] (Granlund and Montgomery; Hacker's Delight
// magicgu with nmax = 2³¹-1).
func Magic(d uint32) (MagicDivisor, error) {
	if d == 0 {
		return MagicDivisor{}, fmt.Errorf("magic division: divisor must be positive")
	}
	if d > MaxDividend {
		return MagicDivisor{}, fmt.Errorf("magic division: divisor %d exceeds %d", d, MaxDividend)
	}

	const nmax = uint64(MaxDividend)
	nbits := uint(bits.Len64(nmax))
	dd := uint64(d)
	nc := ((nmax+1)/dd)*dd - 1
	for p := uint(0); p <= 2*nbits; p++ {
		two := uint64(1) << p
		if two > nc*(dd-1-(two-1)%dd) {
			m := (two + dd - 1 - (two-1)%dd) / dd
			if m > math.MaxUint32 {
				break
			}
			return MagicDivisor{Mul: uint32(m), Shift: uint32(p)}, nil
		}
	}
	return MagicDivisor{}, fmt.Errorf("magic division: no magic number for %d", d)
}

// Divide returns v / d for v <= MaxDividend.
func (m MagicDivisor) Divide(v uint32) uint32 {
	if m.Mul == 1 {
		return v >> m.Shift
	}
	// high bits of the 64-bit product
	return uint32((uint64(v) * uint64(m.Mul)) >> m.Shift)
}
