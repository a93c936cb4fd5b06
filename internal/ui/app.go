// Package ui is the fyne front end: a viewport with a drop zone, a file
// picker and the light control panel.
package ui

import (
	"GopherView/internal/config"
	"GopherView/internal/engine"
	"GopherView/internal/logger"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// Window is the viewer's main window.
type Window struct {
	viewer   *engine.Viewer
	window   fyne.Window
	panel    *ControlPanel
	viewport *Viewport

	mu  sync.Mutex
	cfg *config.Config
}

// NewWindow lays out the viewport and the control panel inside a.
func NewWindow(a fyne.App, viewer *engine.Viewer, cfg *config.Config) *Window {
	w := &Window{
		viewer: viewer,
		window: a.NewWindow("GopherView"),
		cfg:    cfg,
	}
	w.viewport = NewViewport(viewer)
	w.panel = NewControlPanel(viewer.Lights, w.window)

	browse := widget.NewButton("Browse Files", func() {
		go w.browse()
	})
	hint := widget.NewLabel("Drop a .gltf or .glb file on the window")
	hint.Wrapping = fyne.TextWrapWord
	side := container.NewVScroll(container.NewVBox(browse, hint, widget.NewSeparator(), w.panel.Content()))

	split := container.NewHSplit(w.viewport, side)
	if cfg.WindowWidth > 0 {
		split.Offset = 1 - float64(cfg.PanelWidth)/float64(cfg.WindowWidth)
	}
	w.window.SetContent(split)
	w.window.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	w.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if dir, ok := openDropped(viewer, uris); ok {
			w.rememberDirectory(dir)
			w.viewport.raster.Refresh()
		}
	})
	return w
}

func (w *Window) browse() {
	w.mu.Lock()
	start := w.cfg.LastDirectory
	w.mu.Unlock()
	if dir, ok := browse(w.viewer, start); ok {
		w.rememberDirectory(dir)
		w.viewport.raster.Refresh()
	}
}

func (w *Window) rememberDirectory(dir string) {
	if dir == "" {
		return
	}
	w.mu.Lock()
	w.cfg.LastDirectory = dir
	w.mu.Unlock()
}

// refreshLoop calls refresh at frameRate until done is closed.
func (w *Window) refreshLoop(frameRate int, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()
	revision := w.viewer.Lights.Revision()
	for {
		select {
		case <-ticker.C:
			revision = w.refresh(revision)
		case <-done:
			return
		}
	}
}

// refresh redraws the viewport when the scene changed, pulls light values
// written outside the panel back into its widgets and updates the status
// line. It returns the light revision the panel now shows.
func (w *Window) refresh(revision uint64) uint64 {
	if w.viewport.NeedsRender() {
		w.viewport.raster.Refresh()
	}
	if current := w.viewer.Lights.Revision(); current != revision {
		w.panel.Refresh()
		revision = current
	}
	w.panel.SetStatus(w.viewer.Status().String())
	return revision
}

// Run shows the viewer window and blocks until it is closed. The final
// window size is written back to cfg.
func Run(viewer *engine.Viewer, cfg *config.Config) {
	a := app.NewWithID("io.gopherview.viewer")
	w := NewWindow(a, viewer, cfg)

	done := make(chan struct{})
	go w.refreshLoop(cfg.FrameRate, done)

	logger.Log.Info("Window opened",
		zap.Int("width", cfg.WindowWidth),
		zap.Int("height", cfg.WindowHeight),
		zap.Int("frameRate", cfg.FrameRate))
	w.window.ShowAndRun()
	close(done)

	size := w.window.Canvas().Size()
	w.mu.Lock()
	if size.Width > 0 && size.Height > 0 {
		cfg.WindowWidth, cfg.WindowHeight = int(size.Width), int(size.Height)
	}
	w.mu.Unlock()
}
