package classifier

import (
	"math"
	"math/rand/v2"
)

// Fixed topology. Changing any of these invalidates stored weights.
const (
	InputSize  = 28
	Classes    = 8
	conv1Out   = 32
	conv2Out   = 64
	hiddenSize = 128
	flatSize   = conv2Out * 7 * 7 // two 2x pools: 28 -> 14 -> 7
)

// Net is the glyph classifier.
type Net struct {
	Conv1 *Conv2D
	Conv2 *Conv2D
	FC1   *Linear
	FC2   *Linear

	layers []Layer
}

// New returns the network with all parameters zero.
func New() *Net {
	n := &Net{
		Conv1: NewConv2D("conv1", 1, conv1Out, 3, 1, 1),
		Conv2: NewConv2D("conv2", conv1Out, conv2Out, 3, 1, 1),
		FC1:   NewLinear("fc1", flatSize, hiddenSize),
		FC2:   NewLinear("fc2", hiddenSize, Classes),
	}
	n.layers = []Layer{
		n.Conv1, ReLU{"relu1"}, &MaxPool2D{name: "pool1", Size: 2},
		n.Conv2, ReLU{"relu2"}, &MaxPool2D{name: "pool2", Size: 2},
		Flatten{"flatten"},
		n.FC1, ReLU{"relu3"},
		n.FC2,
	}
	return n
}

// Forward maps an (N, 1, 28, 28) batch to (N, 8) scores. Any other input
// shape fails with ErrDimensionMismatch.
func (n *Net) Forward(x *Tensor) (*Tensor, error) {
	// Floor pooling would let 29..31 px inputs reach fc1 at the right width.
	if len(x.Shape) != 4 || x.Shape[1] != 1 || x.Shape[2] != InputSize || x.Shape[3] != InputSize {
		return nil, mismatch("input", "want (N, 1, %d, %d), got shape %v", InputSize, InputSize, x.Shape)
	}
	var err error
	for _, l := range n.layers {
		if x, err = l.Forward(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Param is one named parameter array.
type Param struct {
	Name  string
	Shape []int
	Data  []float64
}

// Params lists the parameters in state_dict order.
func (n *Net) Params() []Param {
	conv := func(c *Conv2D) []Param {
		return []Param{
			{c.name + ".weight", []int{c.Out, c.In, c.Kernel, c.Kernel}, c.Weight},
			{c.name + ".bias", []int{c.Out}, c.Bias},
		}
	}
	linear := func(l *Linear) []Param {
		return []Param{
			{l.name + ".weight", []int{l.Out, l.In}, l.Weight},
			{l.name + ".bias", []int{l.Out}, l.Bias},
		}
	}
	var ps []Param
	ps = append(ps, conv(n.Conv1)...)
	ps = append(ps, conv(n.Conv2)...)
	ps = append(ps, linear(n.FC1)...)
	ps = append(ps, linear(n.FC2)...)
	return ps
}

// ParamCount returns the total number of scalars in the network.
func (n *Net) ParamCount() int {
	total := 0
	for _, p := range n.Params() {
		total += len(p.Data)
	}
	return total
}

// Init fills every parameter uniformly in +-1/sqrt(fan_in), the PyTorch
// default for these layer types.
func (n *Net) Init(rng *rand.Rand) {
	fill := func(data []float64, fanIn int) {
		bound := 1 / math.Sqrt(float64(fanIn))
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * bound
		}
	}
	for _, c := range []*Conv2D{n.Conv1, n.Conv2} {
		fanIn := c.In * c.Kernel * c.Kernel
		fill(c.Weight, fanIn)
		fill(c.Bias, fanIn)
	}
	for _, l := range []*Linear{n.FC1, n.FC2} {
		fill(l.Weight, l.In)
		fill(l.Bias, l.In)
	}
}
