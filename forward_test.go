package winograd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/LynnColeArt/winograd/internal/logutil"
)

func TestForwardMethodsAgree(t *testing.T) {
	const ci, co, n, h, w = 4, 33, 2, 8, 12
	W := randomTensor(41, ci, 3, 3, co)
	I := randomTensor(42, ci, h, w, n)

	fb, ib := packOrFail(t, W, I)
	want, err := Contract(n, co, fb, ib)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}

	for _, m := range []ContractMethod{MethodNaive, MethodBlocked, MethodGemm} {
		for _, workers := range []int{1, 3, 0} {
			t.Run(fmt.Sprintf("%s_w%d", m, workers), func(t *testing.T) {
				M, err := Forward(W, I, Options{Workers: workers, Method: m})
				if err != nil {
					t.Fatalf("Forward: %v", err)
				}
				if fmt.Sprint(M.Shape) != "[2 33 2 3 6 6]" {
					t.Fatalf("Unexpected shape %v", M.Shape)
				}
				tol := DefaultTolerance()
				if m == MethodGemm {
					tol = RelaxedTolerance()
				}
				assertClose(t, m.String(), want.Data, M.Data, tol)
			})
		}
	}
}

func TestForwardErrors(t *testing.T) {
	W := randomTensor(1, 2, 3, 3, 4)
	I := randomTensor(2, 3, 4, 4, 1)

	if _, err := Forward(W, I, DefaultOptions()); !IsShapeError(err) {
		t.Errorf("Ci mismatch: expected shape error, got %v", err)
	}
	if _, err := Forward(W, nil, DefaultOptions()); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("nil image: expected invalid argument, got %v", err)
	}

	I = randomTensor(2, 2, 4, 4, 1)
	if _, err := Forward(W, I, Options{Method: ContractMethod(7)}); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("unknown method: expected invalid argument, got %v", err)
	}
	if _, err := Forward(W, randomTensor(3, 2, 5, 4, 1), DefaultOptions()); !IsShapeError(err) {
		t.Errorf("height 5: expected shape error, got %v", err)
	}
}

func TestForwardLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := logutil.Logger()
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(prev) })

	W := randomTensor(1, 1, 3, 3, 1)
	I := randomTensor(2, 1, 4, 4, 1)
	if _, err := Forward(W, I, Options{Workers: 1, Method: MethodNaive}); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	out := buf.String()
	for _, msg := range []string{"forward transform", "method=naive", "contraction complete"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log output lacks %q:\n%s", msg, out)
		}
	}
}

func TestContractMethodString(t *testing.T) {
	if MethodBlocked.String() != "blocked" || ContractMethod(9).String() != "unknown" {
		t.Error("unexpected method names")
	}
	if DefaultOptions().Method != MethodBlocked || DefaultOptions().Workers < 1 {
		t.Errorf("unexpected defaults %+v", DefaultOptions())
	}
}
