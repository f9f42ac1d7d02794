package capture

import "image"

// Surface is the live display the session mirrors its state onto.
// Nothing drawn on a Surface is persisted.
type Surface interface {
	// ShowReference displays the guide image for category. img is nil when
	// no category is active.
	ShowReference(category string, img image.Image)
	// Stamp mirrors a brush stamp in canvas coordinates.
	Stamp(x, y, radius int)
	// Reset blanks the drawing area.
	Reset()
	// Release frees the surface. It is called once from Close.
	Release()
}

// NopSurface discards everything.
type NopSurface struct{}

func (NopSurface) ShowReference(string, image.Image) {}
func (NopSurface) Stamp(int, int, int)               {}
func (NopSurface) Reset()                            {}
func (NopSurface) Release()                          {}

// Handler receives the user's drawing events in the order they occur. The
// windowing layer dispatches to a Handler and never to the session directly.
type Handler interface {
	OnDrag(x, y int)
	OnSave() error
	OnClear() error
	OnClose() error
}
