package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Layer is one stage of the network.
type Layer interface {
	Name() string
	Forward(x *Tensor) (*Tensor, error)
}

func mismatch(layer string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrDimensionMismatch, layer, fmt.Sprintf(format, args...))
}

// Conv2D is a square-kernel 2D convolution over NCHW input.
type Conv2D struct {
	name                    string
	In, Out                 int
	Kernel, Stride, Padding int
	Weight                  []float64 // Out x In x Kernel x Kernel
	Bias                    []float64 // Out
}

// NewConv2D returns a zero-initialized convolution.
func NewConv2D(name string, in, out, kernel, stride, padding int) *Conv2D {
	return &Conv2D{
		name:    name,
		In:      in,
		Out:     out,
		Kernel:  kernel,
		Stride:  stride,
		Padding: padding,
		Weight:  make([]float64, out*in*kernel*kernel),
		Bias:    make([]float64, out),
	}
}

func (c *Conv2D) Name() string { return c.name }

// Forward lowers each image to a column matrix and multiplies it with the
// kernel matrix.
func (c *Conv2D) Forward(x *Tensor) (*Tensor, error) {
	if len(x.Shape) != 4 {
		return nil, mismatch(c.name, "want rank 4 input, got shape %v", x.Shape)
	}
	n, ch, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	if ch != c.In {
		return nil, mismatch(c.name, "want %d input channels, got %d", c.In, ch)
	}
	k, s, p := c.Kernel, c.Stride, c.Padding
	oh := (h+2*p-k)/s + 1
	ow := (w+2*p-k)/s + 1
	if oh <= 0 || ow <= 0 {
		return nil, mismatch(c.name, "input %dx%d smaller than kernel %d", h, w, k)
	}

	out := NewTensor(n, c.Out, oh, ow)
	if n == 0 {
		return out, nil
	}

	rows := c.In * k * k
	spatial := oh * ow
	kernel := mat.NewDense(c.Out, rows, c.Weight)
	cols := make([]float64, rows*spatial)
	colm := mat.NewDense(rows, spatial, cols)

	for b := 0; b < n; b++ {
		img := x.Row(b)
		for ic := 0; ic < c.In; ic++ {
			plane := img[ic*h*w : (ic+1)*h*w]
			for ky := 0; ky < k; ky++ {
				for kx := 0; kx < k; kx++ {
					row := cols[((ic*k+ky)*k+kx)*spatial:][:spatial]
					for oy := 0; oy < oh; oy++ {
						iy := oy*s - p + ky
						for ox := 0; ox < ow; ox++ {
							ix := ox*s - p + kx
							v := 0.0
							if iy >= 0 && iy < h && ix >= 0 && ix < w {
								v = plane[iy*w+ix]
							}
							row[oy*ow+ox] = v
						}
					}
				}
			}
		}

		dst := out.Row(b)
		mat.NewDense(c.Out, spatial, dst).Mul(kernel, colm)
		for oc := 0; oc < c.Out; oc++ {
			bias := c.Bias[oc]
			for i := oc * spatial; i < (oc+1)*spatial; i++ {
				dst[i] += bias
			}
		}
	}
	return out, nil
}

// MaxPool2D takes the maximum over non-overlapping Size x Size windows.
// Trailing rows and columns that do not fill a window are dropped.
type MaxPool2D struct {
	name string
	Size int
}

func (m *MaxPool2D) Name() string { return m.name }

func (m *MaxPool2D) Forward(x *Tensor) (*Tensor, error) {
	if len(x.Shape) != 4 {
		return nil, mismatch(m.name, "want rank 4 input, got shape %v", x.Shape)
	}
	n, ch, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	oh, ow := h/m.Size, w/m.Size
	if oh == 0 || ow == 0 {
		return nil, mismatch(m.name, "input %dx%d smaller than window %d", h, w, m.Size)
	}

	out := NewTensor(n, ch, oh, ow)
	for plane := 0; plane < n*ch; plane++ {
		src := x.Data[plane*h*w : (plane+1)*h*w]
		dst := out.Data[plane*oh*ow : (plane+1)*oh*ow]
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				best := src[(oy*m.Size)*w+ox*m.Size]
				for dy := 0; dy < m.Size; dy++ {
					for dx := 0; dx < m.Size; dx++ {
						if v := src[(oy*m.Size+dy)*w+ox*m.Size+dx]; v > best {
							best = v
						}
					}
				}
				dst[oy*ow+ox] = best
			}
		}
	}
	return out, nil
}

// ReLU clamps negative values to zero.
type ReLU struct{ name string }

func (r ReLU) Name() string { return r.name }

func (r ReLU) Forward(x *Tensor) (*Tensor, error) {
	out := &Tensor{Shape: x.Shape, Data: make([]float64, len(x.Data))}
	for i, v := range x.Data {
		if v > 0 {
			out.Data[i] = v
		}
	}
	return out, nil
}

// Flatten collapses every axis after the first.
type Flatten struct{ name string }

func (f Flatten) Name() string { return f.name }

func (f Flatten) Forward(x *Tensor) (*Tensor, error) {
	if len(x.Shape) < 2 {
		return nil, mismatch(f.name, "want rank >= 2 input, got shape %v", x.Shape)
	}
	rest := 1
	for _, d := range x.Shape[1:] {
		rest *= d
	}
	return x.Reshape(x.Shape[0], rest)
}

// Linear is a fully-connected layer computing x W^T + b.
type Linear struct {
	name    string
	In, Out int
	Weight  []float64 // Out x In
	Bias    []float64 // Out
}

// NewLinear returns a zero-initialized fully-connected layer.
func NewLinear(name string, in, out int) *Linear {
	return &Linear{
		name:   name,
		In:     in,
		Out:    out,
		Weight: make([]float64, out*in),
		Bias:   make([]float64, out),
	}
}

func (l *Linear) Name() string { return l.name }

func (l *Linear) Forward(x *Tensor) (*Tensor, error) {
	if len(x.Shape) != 2 || x.Shape[1] != l.In {
		return nil, mismatch(l.name, "want (N, %d) input, got shape %v", l.In, x.Shape)
	}
	n := x.Shape[0]
	out := NewTensor(n, l.Out)
	if n == 0 {
		return out, nil
	}

	xm := mat.NewDense(n, l.In, x.Data)
	wm := mat.NewDense(l.Out, l.In, l.Weight)
	mat.NewDense(n, l.Out, out.Data).Mul(xm, wm.T())
	for b := 0; b < n; b++ {
		row := out.Row(b)
		for i := range row {
			row[i] += l.Bias[i]
		}
	}
	return out, nil
}
