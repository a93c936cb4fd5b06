package ui

import (
	"GopherView/internal/engine"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Pixels of scroll per zoom step.
const scrollPerZoom = 10

// Viewport draws the viewer's frames and turns drags into orbit and scrolls
// into zoom.
type Viewport struct {
	widget.BaseWidget
	viewer *engine.Viewer
	raster *canvas.Raster

	mu            sync.Mutex
	width, height int
}

func NewViewport(viewer *engine.Viewer) *Viewport {
	vp := &Viewport{viewer: viewer}
	vp.raster = canvas.NewRaster(vp.draw)
	vp.ExtendBaseWidget(vp)
	return vp
}

func (vp *Viewport) draw(width, height int) image.Image {
	vp.mu.Lock()
	vp.width, vp.height = width, height
	vp.mu.Unlock()
	return vp.viewer.Frame(width, height)
}

// NeedsRender reports whether the last drawn frame is out of date.
func (vp *Viewport) NeedsRender() bool {
	vp.mu.Lock()
	w, h := vp.width, vp.height
	vp.mu.Unlock()
	return vp.viewer.NeedsRender(w, h)
}

func (vp *Viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(vp.raster)
}

func (vp *Viewport) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (vp *Viewport) Dragged(e *fyne.DragEvent) {
	vp.viewer.Orbit(e.Dragged.DX, e.Dragged.DY)
	vp.raster.Refresh()
}

func (vp *Viewport) DragEnd() {}

func (vp *Viewport) Scrolled(e *fyne.ScrollEvent) {
	vp.viewer.Zoom(e.Scrolled.DY / scrollPerZoom)
	vp.raster.Refresh()
}
