// Package classifier defines the glyph CNN: two conv+pool stages followed by
// two fully-connected layers, 1x28x28 in, 8 scores out. Layer shapes match
// the PyTorch model the weights are trained with, so a stored state_dict
// loads unchanged.
package classifier

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDimensionMismatch is returned when a tensor does not fit a layer.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrWeights is returned when a weight stream does not fit the network.
	ErrWeights = errors.New("invalid weights")
)

// Tensor is a dense row-major n-dimensional array.
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor allocates a zero tensor.
func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Tensor{Shape: slices.Clone(shape), Data: make([]float64, n)}
}

// Reshape returns a view of t with a new shape of the same size.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(t.Data) {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrDimensionMismatch, t.Shape, shape)
	}
	return &Tensor{Shape: slices.Clone(shape), Data: t.Data}, nil
}

// Row returns the i-th slice along the first axis.
func (t *Tensor) Row(i int) []float64 {
	stride := len(t.Data) / t.Shape[0]
	return t.Data[i*stride : (i+1)*stride]
}
