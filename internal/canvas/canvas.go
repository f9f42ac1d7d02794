// Package canvas is the in-memory raster a glyph is drawn on.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Background and Ink are the paper and pen intensities.
const (
	Background uint8 = 0xff
	Ink        uint8 = 0x00
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// Canvas is a square single-channel raster. It is not safe for concurrent use.
type Canvas struct {
	img    *image.Gray
	raster *vector.Rasterizer
}

// New returns a blank canvas of size x size pixels.
func New(size int) *Canvas {
	c := &Canvas{
		img:    image.NewGray(image.Rect(0, 0, size, size)),
		raster: vector.NewRasterizer(1, 1),
	}
	c.Clear()
	return c
}

// Size returns the edge length in pixels.
func (c *Canvas) Size() int { return c.img.Rect.Dx() }

// Image exposes the raster. Callers must not modify it.
func (c *Canvas) Image() *image.Gray { return c.img }

// Clear resets every pixel to Background.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.Gray{Y: Background}), image.Point{}, draw.Src)
}

// Stamp fills a circle of the given radius centred on (x, y) with Ink.
// Parts outside the canvas are clipped.
func (c *Canvas) Stamp(x, y, radius int) {
	if radius <= 0 {
		return
	}
	box := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1)
	if !box.Overlaps(c.img.Rect) {
		return
	}

	z := c.raster
	z.Reset(box.Dx(), box.Dy())
	cx := float32(radius) + 0.5
	cy := float32(radius) + 0.5
	r := float32(radius)
	k := r * kappa

	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()

	z.Draw(c.img, box, image.NewUniform(color.Gray{Y: Ink}), image.Point{})
}

// Downsample returns a size x size copy of the raster using bilinear
// interpolation.
func (c *Canvas) Downsample(size int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, size, size))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return dst
}

// Thumbnail scales any image into a size x size grayscale copy.
// Transparent areas come out as Background.
func Thumbnail(src image.Image, size int) *image.Gray {
	dst := New(size).img
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
