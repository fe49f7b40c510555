package device

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions relevant to the
// transform kernels.
type CPUFeatures struct {
	HasAVX2    bool
	HasAVX512F bool // Foundation
	HasFMA     bool
	HasNEON    bool // ARM64 ASIMD
}

// detectCPUFeatures reads the host capabilities from x/sys/cpu
func detectCPUFeatures() CPUFeatures {
	return CPUFeatures{
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA || cpu.ARM64.HasASIMD,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// String lists the detected extensions.
func (f CPUFeatures) String() string {
	var features []string
	if f.HasAVX2 {
		features = append(features, "AVX2")
	}
	if f.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasNEON {
		features = append(features, "NEON")
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ",")
}
