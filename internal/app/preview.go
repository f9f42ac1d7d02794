package app

import (
	"image"
	"strings"

	"github.com/jwulff/glyphs/internal/canvas"
	"github.com/jwulff/glyphs/internal/capture"
)

// Preview geometry in terminal cells. Each cell shows two vertically
// stacked pixels, so the preview raster is PreviewCols x 2*PreviewRows.
const (
	PreviewCols = 48
	PreviewRows = 24
	ThumbCols   = 24
	ThumbRows   = 12
)

// inkThreshold is the gray level below which a preview pixel counts as ink.
const inkThreshold = 0x80

// Preview is the terminal mirror of the session canvas. It keeps a
// low-resolution copy of every stamp and a thumbnail of the reference image.
type Preview struct {
	canvasSize int
	ink        *canvas.Canvas
	category   string
	reference  *image.Gray
	released   bool
}

// NewPreview returns a blank preview for a canvas of canvasSize pixels.
func NewPreview(canvasSize int) *Preview {
	return &Preview{
		canvasSize: canvasSize,
		ink:        canvas.New(PreviewCols),
	}
}

func (p *Preview) ShowReference(category string, img image.Image) {
	p.category = category
	p.reference = nil
	if img != nil {
		p.reference = canvas.Thumbnail(img, ThumbCols)
	}
}

func (p *Preview) Stamp(x, y, radius int) {
	r := p.scale(radius)
	if r < 1 {
		r = 1
	}
	p.ink.Stamp(p.scale(x), p.scale(y), r)
}

func (p *Preview) Reset() { p.ink.Clear() }

func (p *Preview) Release() {
	p.released = true
	p.reference = nil
}

// Category returns the category whose reference is shown, or "".
func (p *Preview) Category() string { return p.category }

func (p *Preview) scale(v int) int {
	return (v*PreviewCols + p.canvasSize/2) / p.canvasSize
}

// ToCanvas maps a cell inside the preview to the canvas pixel at its centre.
func (p *Preview) ToCanvas(col, row int) (x, y int) {
	x = (2*col + 1) * p.canvasSize / (2 * PreviewCols)
	y = (2*row + 1) * p.canvasSize / (2 * PreviewRows)
	return x, y
}

// Lines renders the drawing as PreviewRows strings of PreviewCols cells.
func (p *Preview) Lines() []string {
	return halfBlocks(p.ink.Image(), PreviewCols, PreviewRows)
}

// ReferenceLines renders the reference thumbnail, or blank lines when no
// category is active.
func (p *Preview) ReferenceLines() []string {
	if p.reference == nil {
		lines := make([]string, ThumbRows)
		for i := range lines {
			lines[i] = strings.Repeat(" ", ThumbCols)
		}
		return lines
	}
	return halfBlocks(p.reference, ThumbCols, ThumbRows)
}

func halfBlocks(img *image.Gray, cols, rows int) []string {
	b := img.Bounds()
	inked := func(x, y int) bool {
		pt := image.Pt(b.Min.X+x, b.Min.Y+y)
		return pt.In(b) && img.GrayAt(pt.X, pt.Y).Y < inkThreshold
	}

	lines := make([]string, rows)
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		sb.Reset()
		for col := 0; col < cols; col++ {
			top, bottom := inked(col, 2*row), inked(col, 2*row+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		lines[row] = sb.String()
	}
	return lines
}

var _ capture.Surface = (*Preview)(nil)
