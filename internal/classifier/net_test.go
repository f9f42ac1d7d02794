package classifier

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func randomNet(t *testing.T) *Net {
	t.Helper()
	n := New()
	n.Init(rand.New(rand.NewPCG(1, 2)))
	return n
}

func TestForwardShape(t *testing.T) {
	n := randomNet(t)
	x := NewTensor(3, 1, InputSize, InputSize)
	for i := range x.Data {
		x.Data[i] = float64(i%7) / 7
	}

	out, err := n.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if diff := cmp.Diff([]int{3, Classes}, out.Shape); diff != "" {
		t.Errorf("output shape mismatch (-want +got):\n%s", diff)
	}
	if len(out.Data) != 3*Classes {
		t.Errorf("len(Data) = %d, want %d", len(out.Data), 3*Classes)
	}
}

func TestForwardRejectsWrongInput(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		layer string
	}{
		{"32x32 image", []int{1, 1, 32, 32}, "input"},
		{"29x29 image", []int{1, 1, 29, 29}, "input"},
		{"30x30 image", []int{2, 1, 30, 30}, "input"},
		{"31x31 image", []int{1, 1, 31, 31}, "input"},
		{"27x27 image", []int{1, 1, 27, 27}, "input"},
		{"not square", []int{1, 1, 28, 29}, "input"},
		{"three channels", []int{1, 3, 28, 28}, "input"},
		{"missing batch axis", []int{1, 28, 28}, "input"},
	}

	n := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Forward(NewTensor(tt.shape...))
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Fatalf("err = %v, want ErrDimensionMismatch", err)
			}
			if !strings.Contains(err.Error(), tt.layer) {
				t.Errorf("err = %q, want it to name %s", err, tt.layer)
			}
		})
	}
}

func TestLayersCheckShapes(t *testing.T) {
	n := New()
	if _, err := n.FC1.Forward(NewTensor(1, flatSize+1)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("fc1: err = %v, want ErrDimensionMismatch", err)
	}
	if _, err := n.Conv2.Forward(NewTensor(1, 3, 14, 14)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("conv2: err = %v, want ErrDimensionMismatch", err)
	}
}

func TestConvPadding(t *testing.T) {
	c := NewConv2D("c", 1, 1, 3, 1, 1)
	for i := range c.Weight {
		c.Weight[i] = 1
	}
	x := NewTensor(1, 1, 3, 3)
	for i := range x.Data {
		x.Data[i] = 1
	}

	out, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	want := []float64{
		4, 6, 4,
		6, 9, 6,
		4, 6, 4,
	}
	if diff := cmp.Diff(want, out.Data); diff != "" {
		t.Errorf("conv output mismatch (-want +got):\n%s", diff)
	}
}

func TestConvChannelsAndBias(t *testing.T) {
	// Two input channels summed into one output, plus bias.
	c := NewConv2D("c", 2, 1, 1, 1, 0)
	c.Weight[0], c.Weight[1] = 2, -1
	c.Bias[0] = 0.5
	x := &Tensor{Shape: []int{1, 2, 1, 2}, Data: []float64{1, 2, 3, 4}}

	out, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	// 2*1 - 3 + .5, 2*2 - 4 + .5
	if diff := cmp.Diff([]float64{-0.5, 0.5}, out.Data); diff != "" {
		t.Errorf("conv output mismatch (-want +got):\n%s", diff)
	}
}

func TestLinear(t *testing.T) {
	l := NewLinear("l", 2, 2)
	copy(l.Weight, []float64{1, 2, 3, 4})
	copy(l.Bias, []float64{1, 1})

	out, err := l.Forward(&Tensor{Shape: []int{2, 2}, Data: []float64{1, 1, 0, 1}})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if diff := cmp.Diff([]float64{4, 8, 3, 5}, out.Data); diff != "" {
		t.Errorf("linear output mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxPool(t *testing.T) {
	p := &MaxPool2D{name: "p", Size: 2}
	x := &Tensor{Shape: []int{1, 1, 3, 4}, Data: []float64{
		1, 5, 2, 0,
		3, 4, -1, 8,
		9, 9, 9, 9,
	}}

	out, err := p.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1, 1, 2}, out.Shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{5, 8}, out.Data); diff != "" {
		t.Errorf("pool output mismatch (-want +got):\n%s", diff)
	}
}

func TestForwardZeroWeightsYieldsBias(t *testing.T) {
	n := New()
	copy(n.FC2.Bias, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	x := NewTensor(2, 1, InputSize, InputSize)
	for i := range x.Data {
		x.Data[i] = 1
	}

	out, err := n.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	for b := 0; b < 2; b++ {
		if diff := cmp.Diff(n.FC2.Bias, out.Row(b)); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", b, diff)
		}
	}
}

func TestParamCount(t *testing.T) {
	n := New()
	if got, want := n.ParamCount(), 421384; got != want {
		t.Errorf("ParamCount() = %d, want %d", got, want)
	}

	var names []string
	for _, p := range n.Params() {
		names = append(names, p.Name)
	}
	want := []string{
		"conv1.weight", "conv1.bias", "conv2.weight", "conv2.bias",
		"fc1.weight", "fc1.bias", "fc2.weight", "fc2.bias",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("param order mismatch (-want +got):\n%s", diff)
	}
}

func TestInitBounds(t *testing.T) {
	n := randomNet(t)
	bound := 1 / math.Sqrt(float64(flatSize))
	for i, v := range n.FC1.Weight {
		if math.Abs(v) > bound {
			t.Fatalf("fc1.weight[%d] = %v, outside +-%v", i, v, bound)
		}
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	src := randomNet(t)
	var buf bytes.Buffer
	if err := src.WriteWeights(&buf); err != nil {
		t.Fatalf("WriteWeights failed: %v", err)
	}
	if got, want := buf.Len(), 4*src.ParamCount(); got != want {
		t.Fatalf("stream length = %d, want %d", got, want)
	}

	dst := New()
	if err := dst.LoadWeights(&buf); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	// Stored as float32.
	approx := cmpopts.EquateApprox(0, 1e-6)
	for i, p := range dst.Params() {
		if diff := cmp.Diff(src.Params()[i].Data, p.Data, approx); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", p.Name, diff)
		}
	}
}

func TestLoadWeightsRejectsBadLength(t *testing.T) {
	var buf bytes.Buffer
	if err := New().WriteWeights(&buf); err != nil {
		t.Fatalf("WriteWeights failed: %v", err)
	}
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", full[:len(full)-4]},
		{"half a float", full[:len(full)-2]},
		{"trailing", append(append([]byte(nil), full...), 0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().LoadWeights(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrWeights) {
				t.Errorf("err = %v, want ErrWeights", err)
			}
		})
	}
}

func TestRank(t *testing.T) {
	// Outputs 4 and 5 are both "power".
	scores := []float64{0, 1, 0, 0, 3, 2, 0, 0}
	preds := Rank(scores)

	if len(preds) != 7 {
		t.Fatalf("len = %d, want 7 distinct labels", len(preds))
	}
	if preds[0].Label != "power" || preds[0].Index != 4 {
		t.Errorf("top = %+v, want power from output 4", preds[0])
	}
	if preds[1].Label != "earth" {
		t.Errorf("second = %+v, want earth", preds[1])
	}
	for i := 1; i < len(preds); i++ {
		if preds[i].Prob > preds[i-1].Prob {
			t.Errorf("not sorted at %d: %v > %v", i, preds[i].Prob, preds[i-1].Prob)
		}
	}

	var sum float64
	for _, p := range Rank([]float64{1, 2, 3, 4, 5, 6, 7, 8}) {
		sum += p.Prob
	}
	// The collapsed "power" output drops some mass.
	if sum >= 1 || sum <= 0.9 {
		t.Errorf("sum of ranked probabilities = %v", sum)
	}
}

func TestRankLargeScores(t *testing.T) {
	preds := Rank([]float64{1000, 0, 0, 0, 0, 0, 0, 0})
	if preds[0].Label != "air" || math.IsNaN(preds[0].Prob) || preds[0].Prob < 0.999 {
		t.Errorf("top = %+v, want air with probability ~1", preds[0])
	}
}

func TestPreprocess(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{0})
		}
	}

	x := Preprocess(img)
	if diff := cmp.Diff([]int{1, 1, InputSize, InputSize}, x.Shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if got := x.Data[2*InputSize+14]; got > 0.01 {
		t.Errorf("top pixel = %v, want ~0", got)
	}
	if got := x.Data[25*InputSize+14]; got < 0.99 {
		t.Errorf("bottom pixel = %v, want ~1", got)
	}
}

func TestPredict(t *testing.T) {
	n := New()
	n.FC2.Bias[7] = 5

	preds, err := n.Predict(image.NewGray(image.Rect(0, 0, 64, 64)))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if preds[0].Label != "water" {
		t.Errorf("top = %+v, want water", preds[0])
	}
}
