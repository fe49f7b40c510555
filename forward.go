package winograd

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/LynnColeArt/winograd/internal/logutil"
)

// SetLogger replaces the logger used by the winograd packages.
func SetLogger(l *slog.Logger) {
	logutil.SetLogger(l)
}

// Forward runs the forward transform stage for W[Ci,3,3,Co] and
// I[Ci,iH,iW,N]: FilterTransform and ImageTransform run concurrently, both
// results are packed to block-interleaved layout, and the contraction
// selected by opts.Method produces M[N,Co,iH/4,iW/4,6,6].
func Forward(W, I *Tensor, opts Options) (*Tensor, error) {
	const op = "Forward"
	if err := W.validate(op, "W", 4); err != nil {
		return nil, err
	}
	if err := I.validate(op, "I", 4); err != nil {
		return nil, err
	}
	if W.Shape[0] != I.Shape[0] {
		return nil, NewShapeError(op, "W has %d input channels, I has %d", W.Shape[0], I.Shape[0])
	}

	log := logutil.Logger()
	workers := opts.workers()
	ci, co, n := W.Shape[0], W.Shape[3], I.Shape[3]
	log.Debug("forward transform",
		"method", opts.Method.String(),
		"Ci", ci, "Co", co, "N", n,
		"height", I.Shape[1], "width", I.Shape[2],
		"workers", workers)

	var (
		U, V *Tensor
		g    errgroup.Group
	)
	g.Go(func() error {
		var err error
		U, err = filterTransform(W, workers)
		return err
	})
	g.Go(func() error {
		var err error
		V, err = imageTransform(I, workers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("transforms complete", "U", U.Shape, "V", V.Shape)

	fb, err := PackFilter(U)
	if err != nil {
		return nil, err
	}
	ib, err := PackImage(V)
	if err != nil {
		return nil, err
	}

	var M *Tensor
	switch opts.Method {
	case MethodNaive:
		M, err = contract(n, co, fb, ib, workers)
	case MethodBlocked:
		M, err = contractBlocked(n, co, fb, ib, workers)
	case MethodGemm:
		M, err = contractGemm(n, co, fb, ib, workers)
	default:
		return nil, NewInvalidArgError(op, "unknown contraction method %d", opts.Method)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("contraction complete", "M", M.Shape)
	return M, nil
}
