package engine

import (
	"GopherView/internal/config"
	"GopherView/internal/lighting"
	"GopherView/internal/loader"
	"GopherView/internal/logger"
	"GopherView/internal/renderer"
	"GopherView/internal/scene"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
)

// Status describes the model shown by the viewer.
type Status struct {
	File    string
	Loading bool
	Err     error
}

func (s Status) String() string {
	switch {
	case s.File == "":
		return "No model loaded"
	case s.Loading:
		return fmt.Sprintf("Loading %s...", s.File)
	case s.Err != nil:
		return fmt.Sprintf("Failed to load %s: %v", s.File, s.Err)
	}
	return s.File
}

// Viewer ties the light store, the loaded model and the renderer together.
// UI callbacks mutate it from the event goroutine while frames are produced
// on the render goroutine.
type Viewer struct {
	Lights *lighting.Store
	Post   renderer.PostProcessing

	session *loader.Session
	watcher *loader.Watcher
	rend    renderer.Render
	scale   float32

	mu           sync.Mutex
	camera       *renderer.Camera
	status       Status
	cameraDirty  bool
	lastRevision uint64
	lastModel    *renderer.Node
	lastW, lastH int
	rendered     bool
}

func NewViewer(cfg config.Config) *Viewer {
	post := renderer.DefaultPostProcessing()
	v := &Viewer{
		Lights:  lighting.NewStore(),
		Post:    post,
		session: loader.NewSession(loader.NewGLTFLoader()),
		rend:    renderer.NewSoftwareRenderer(post),
		scale:   cfg.RenderScale,
		camera:  renderer.NewDefaultCamera(int32(cfg.WindowWidth), int32(cfg.WindowHeight)),
	}
	if v.scale <= 0 || v.scale > 1 {
		v.scale = 1
	}

	if cfg.WatchModel {
		w, err := loader.NewWatcher(v.session)
		if err != nil {
			logger.Log.Warn("Model file watching disabled", zap.Error(err))
		} else {
			v.watcher = w
		}
	}

	logger.Log.Info("Viewer created",
		zap.Float32("renderScale", v.scale),
		zap.Bool("watchModel", v.watcher != nil))
	return v
}

// Open starts loading the model behind h. It returns false, and changes
// nothing, when the file is not a glTF model.
func (v *Viewer) Open(h *loader.Handle) bool {
	if h == nil {
		return false
	}
	name := h.Name
	if err := v.session.Select(h); err != nil {
		if !errors.Is(err, loader.ErrUnsupportedFile) {
			logger.Log.Error("Failed to open model", zap.String("name", name), zap.Error(err))
		}
		return false
	}

	v.mu.Lock()
	v.status = Status{File: name, Loading: true}
	v.mu.Unlock()

	if v.watcher != nil {
		if err := v.watcher.Watch(h.Path); err != nil {
			logger.Log.Warn("Failed to watch model file", zap.String("path", h.Path), zap.Error(err))
		}
	}
	return true
}

// poll installs finished loads and records their outcome. Reloads started
// by the watcher show up here as well.
func (v *Viewer) poll() {
	changed, err := v.session.Poll()
	loading := v.session.Loading()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status.File == "" {
		return
	}
	if loading && !v.status.Loading {
		v.status.Err = nil
	}
	v.status.Loading = loading
	if changed || err != nil {
		v.status.Err = err
	}
}

// RenderList composes the current frame's objects.
func (v *Viewer) RenderList() renderer.RenderList {
	v.poll()
	return scene.Compose(v.Lights.Snapshot(), v.session.Current())
}

// NeedsRender reports whether a frame of the given size would differ from the
// last one produced.
func (v *Viewer) NeedsRender(width, height int) bool {
	v.poll()
	model := v.currentModel()

	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.rendered ||
		v.cameraDirty ||
		v.lastRevision != v.Lights.Revision() ||
		v.lastModel != model ||
		v.lastW != width || v.lastH != height
}

// Frame renders the scene for a viewport of width x height. The image is
// drawn at the configured render scale.
func (v *Viewer) Frame(width, height int) image.Image {
	revision := v.Lights.Revision()
	list := v.RenderList()

	v.mu.Lock()
	camera := *v.camera
	v.cameraDirty = false
	v.lastRevision = revision
	v.lastModel = list.Model
	v.lastW, v.lastH = width, height
	v.rendered = true
	v.mu.Unlock()

	w := int(float32(width) * v.scale)
	h := int(float32(height) * v.scale)
	if w < 1 || h < 1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return v.rend.Render(list, &camera, w, h)
}

// Orbit rotates the camera around the origin by a drag delta in pixels.
func (v *Viewer) Orbit(dx, dy float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera.ProcessMouseMovement(dx, -dy, true)
	v.cameraDirty = true
}

// Zoom moves the camera towards (positive) or away from the origin.
func (v *Viewer) Zoom(amount float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera.Zoom(amount)
	v.cameraDirty = true
}

func (v *Viewer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *Viewer) currentModel() *renderer.Node {
	if asset := v.session.Current(); asset != nil {
		return asset.Root
	}
	return nil
}

// Close stops watching and releases the model.
func (v *Viewer) Close() {
	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			logger.Log.Warn("Failed to close model watcher", zap.Error(err))
		}
	}
	v.session.Close()
	logger.Log.Info("Viewer closed")
}
