// Command compare runs every forward path on one random problem and
// compares each result against the naive host contraction.
//
// Usage:
//
//	compare -ci 16 -co 64 -n 32 -h 32 -w 32
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/LynnColeArt/winograd"
	"github.com/LynnColeArt/winograd/device"
	"github.com/LynnColeArt/winograd/kernels"
)

type comparisonResult struct {
	Name     string
	Status   string // "PASS" or "FAIL"
	Duration time.Duration
	Speedup  float64
	Result   winograd.VerificationResult
	Err      error
}

func main() {
	var (
		ci      = flag.Int("ci", 8, "Input channels")
		co      = flag.Int("co", 33, "Output channels")
		n       = flag.Int("n", 8, "Batch size")
		height  = flag.Int("h", 16, "Image height, a multiple of 4")
		width   = flag.Int("w", 16, "Image width, a multiple of 4")
		workers = flag.Int("workers", 0, "Host workers, 0 for GOMAXPROCS")
		seed    = flag.Int64("seed", 1, "Random seed")
		relaxed = flag.Bool("relaxed", false, "Use the relaxed tolerance")
		verbose = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	winograd.SetLogger(logger)

	rng := rand.New(rand.NewSource(*seed))
	W := randomTensor(rng, *ci, 3, 3, *co)
	I := randomTensor(rng, *ci, *height, *width, *n)

	tol := winograd.DefaultTolerance()
	if *relaxed {
		tol = winograd.RelaxedTolerance()
	}

	start := time.Now()
	want, err := winograd.Forward(W, I, winograd.Options{Workers: *workers, Method: winograd.MethodNaive})
	if err != nil {
		logger.Error("naive forward failed", "err", err)
		os.Exit(1)
	}
	base := time.Since(start)

	var results []comparisonResult
	for _, m := range []winograd.ContractMethod{winograd.MethodBlocked, winograd.MethodGemm} {
		mtol := tol
		if m == winograd.MethodGemm {
			mtol = winograd.RelaxedTolerance()
		}
		results = append(results, run("host/"+m.String(), base, want, mtol, func() (*winograd.Tensor, error) {
			return winograd.Forward(W, I, winograd.Options{Workers: *workers, Method: m})
		}))
	}

	ctx := device.NewContext()
	defer ctx.Destroy()
	// device results differ from the host ones by fused rounding only
	devTol := winograd.ToleranceConfig{AbsTol: 1e-3, RelTol: 1e-4}
	results = append(results, run("device/blocked", base, want, devTol, func() (*winograd.Tensor, error) {
		fb, ib, err := kernels.Transform(ctx, W, I)
		if err != nil {
			return nil, err
		}
		return winograd.ContractBlocked(*n, *co, fb, ib)
	}))

	printSummary(ctx.Device(), base, results)
	for _, r := range results {
		if r.Status == "FAIL" {
			os.Exit(1)
		}
	}
}

func randomTensor(rng *rand.Rand, shape ...int) *winograd.Tensor {
	t := winograd.NewTensor(shape...)
	for i := range t.Data {
		t.Data[i] = rng.Float32()*2 - 1
	}
	return t
}

func run(name string, base time.Duration, want *winograd.Tensor, tol winograd.ToleranceConfig, fn func() (*winograd.Tensor, error)) comparisonResult {
	r := comparisonResult{Name: name, Status: "PASS"}
	start := time.Now()
	got, err := fn()
	r.Duration = time.Since(start)
	if err != nil {
		r.Status = "FAIL"
		r.Err = err
		return r
	}
	r.Speedup = float64(base) / float64(r.Duration)
	r.Result = winograd.VerifyFloat32Array(want.Data, got.Data, tol)
	if !r.Result.OK() {
		r.Status = "FAIL"
	}
	return r
}

func printSummary(dev *device.Device, base time.Duration, results []comparisonResult) {
	fmt.Println("=== Winograd F(4x4,3x3) Comparison ===")
	fmt.Printf("Device: %s, %d cores, features %s\n", dev.Name, dev.NumCores, dev.Features)
	fmt.Printf("Baseline host/naive: %.1fms\n", float64(base)/1e6)
	fmt.Println()

	fmt.Printf("%-16s %-6s %10s %8s %12s\n", "Path", "Status", "Time(ms)", "Speedup", "Max |Δ|")
	fmt.Println(strings.Repeat("-", 58))
	for _, r := range results {
		fmt.Printf("%-16s %-6s %10.1f %8.2f %12.2e\n",
			r.Name, r.Status, float64(r.Duration)/1e6, r.Speedup, r.Result.MaxAbsError)
	}

	for _, r := range results {
		if r.Status != "FAIL" {
			continue
		}
		if r.Err != nil {
			fmt.Printf("\n%s: %v\n", r.Name, r.Err)
		} else {
			fmt.Printf("\n%s: %s\n", r.Name, r.Result)
		}
	}
}
