package winograd

import (
	"fmt"
	"slices"
)

// Tensor is a dense row-major float32 tensor.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &Tensor{
		Shape: slices.Clone(shape),
		Data:  make([]float32, size),
	}
}

// Size returns the number of elements implied by the shape.
func (t *Tensor) Size() int {
	size := 1
	for _, d := range t.Shape {
		size *= d
	}
	return size
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// Index returns the flat offset of idx. It panics if idx is out of range.
func (t *Tensor) Index(idx ...int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("winograd: index rank %d for tensor of rank %d", len(idx), len(t.Shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.Shape[i] {
			panic(fmt.Sprintf("winograd: index %v out of range for shape %v", idx, t.Shape))
		}
		off = off*t.Shape[i] + v
	}
	return off
}

// At returns the element at idx.
func (t *Tensor) At(idx ...int) float32 {
	return t.Data[t.Index(idx...)]
}

// Set stores v at idx.
func (t *Tensor) Set(v float32, idx ...int) {
	t.Data[t.Index(idx...)] = v
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Shape: slices.Clone(t.Shape),
		Data:  slices.Clone(t.Data),
	}
}

// validate checks that t is non-nil, has the given rank, positive
// dimensions, and backing data matching the shape.
func (t *Tensor) validate(op, name string, rank int) error {
	if t == nil {
		return NewInvalidArgError(op, "%s is nil", name)
	}
	if t.Rank() != rank {
		return NewShapeError(op, "%s must have rank %d, got shape %v", name, rank, t.Shape)
	}
	for _, d := range t.Shape {
		if d < 1 {
			return NewShapeError(op, "%s has non-positive dimension in shape %v", name, t.Shape)
		}
	}
	if len(t.Data) != t.Size() {
		return NewShapeError(op, "%s has %d elements, shape %v needs %d", name, len(t.Data), t.Shape, t.Size())
	}
	return nil
}

// blocks returns the number of 32-wide blocks covering n.
func blocks(n int) int {
	return (n + BlockSize - 1) / BlockSize
}
