package classifier

import (
	"image"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// Labels maps output indices to glyph names. Two outputs share "power".
var Labels = [Classes]string{"air", "earth", "energy", "fire", "power", "power", "time", "water"}

// Prediction is one glyph with its probability.
type Prediction struct {
	Label string  `json:"label"`
	Index int     `json:"index"`
	Prob  float64 `json:"prob"`
}

// Preprocess scales img to 28x28 grayscale in [0, 1] as a (1, 1, 28, 28)
// tensor.
func Preprocess(img image.Image) *Tensor {
	gray := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	t := NewTensor(1, 1, InputSize, InputSize)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			t.Data[y*InputSize+x] = float64(gray.GrayAt(x, y).Y) / 0xff
		}
	}
	return t
}

// Rank applies softmax to one row of scores and returns the glyphs from most
// to least likely. A label that appears twice keeps only its better output.
func Rank(scores []float64) []Prediction {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}

	preds := make([]Prediction, 0, len(scores))
	for i, p := range probs {
		label := "unknown"
		if i < len(Labels) {
			label = Labels[i]
		}
		preds = append(preds, Prediction{Label: label, Index: i, Prob: p / sum})
	}
	sort.SliceStable(preds, func(a, b int) bool { return preds[a].Prob > preds[b].Prob })

	seen := make(map[string]bool, len(preds))
	ranked := preds[:0]
	for _, p := range preds {
		if seen[p.Label] {
			continue
		}
		seen[p.Label] = true
		ranked = append(ranked, p)
	}
	return ranked
}

// Predict runs one image through the network and ranks the result.
func (n *Net) Predict(img image.Image) ([]Prediction, error) {
	out, err := n.Forward(Preprocess(img))
	if err != nil {
		return nil, err
	}
	return Rank(out.Row(0)), nil
}
