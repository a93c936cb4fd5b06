package ui

import (
	"GopherView/internal/config"
	"GopherView/internal/engine"
	"GopherView/internal/lighting"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPanel(t *testing.T) (*ControlPanel, *lighting.Store) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	store := lighting.NewStore()
	return NewControlPanel(store, a.NewWindow("test")), store
}

func newTestViewer(t *testing.T) *engine.Viewer {
	t.Helper()
	cfg := config.Default()
	cfg.WatchModel = false
	v := engine.NewViewer(cfg)
	t.Cleanup(v.Close)
	return v
}

func TestControlPanelSliderWritesStore(t *testing.T) {
	p, store := newTestPanel(t)

	p.sliders[0].SetValue(2.5)

	assert.InDelta(t, 2.5, store.Directional().Intensity, 1e-5)
	assert.Equal(t, "2.5", p.values[0].Text)
	assert.Equal(t, lighting.White, store.Directional().Color)
}

func TestControlPanelPositionSlider(t *testing.T) {
	p, store := newTestPanel(t)

	p.sliders[4].SetValue(-3)

	assert.True(t, store.Directional().Position.ApproxEqual(mgl32.Vec3{5, 5, -3}), "got %v", store.Directional().Position)
}

func TestControlPanelColorDropsAlpha(t *testing.T) {
	p, store := newTestPanel(t)

	p.applyColor(6, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	assert.Equal(t, lighting.Color{R: 10, G: 20, B: 30}, store.Ambient().Color)
	assert.Equal(t, "#0a141e", p.values[6].Text)
	assert.Equal(t, lighting.White, store.Directional().Color)
}

func TestControlPanelRefresh(t *testing.T) {
	p, store := newTestPanel(t)

	store.SetAmbientLightIntensity(4)
	store.SetDirectionalLightColor(lighting.Color{G: 255})
	p.Refresh()

	assert.InDelta(t, 4, p.sliders[5].Value, 1e-6)
	assert.Equal(t, "4.0", p.values[5].Text)
	assert.Equal(t, "#00ff00", p.values[1].Text)
}

func TestControlPanelStatus(t *testing.T) {
	p, _ := newTestPanel(t)

	p.SetStatus("Loading model.glb...")

	assert.Equal(t, "Loading model.glb...", p.status.Text)
}

func TestOpenDroppedIgnoresOtherFiles(t *testing.T) {
	v := newTestViewer(t)
	path := filepath.Join(t.TempDir(), "model.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\n"), 0o644))

	_, ok := openDropped(v, []fyne.URI{storage.NewFileURI(path)})

	assert.False(t, ok)
	assert.Equal(t, engine.Status{}, v.Status())
}

func TestOpenDroppedUsesFirstItemOnly(t *testing.T) {
	v := newTestViewer(t)
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	model := filepath.Join(dir, "model.glb")
	require.NoError(t, os.WriteFile(notes, []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(model, []byte("glTF"), 0o644))

	_, ok := openDropped(v, []fyne.URI{storage.NewFileURI(notes), storage.NewFileURI(model)})
	assert.False(t, ok)
	assert.Equal(t, engine.Status{}, v.Status())

	got, ok := openDropped(v, []fyne.URI{storage.NewFileURI(model), storage.NewFileURI(notes)})
	assert.True(t, ok)
	assert.Equal(t, dir, got)
	assert.Equal(t, "model.glb", v.Status().File)
}

func TestOpenDroppedExtensionIsCaseSensitive(t *testing.T) {
	v := newTestViewer(t)
	path := filepath.Join(t.TempDir(), "Model.GLB")
	require.NoError(t, os.WriteFile(path, []byte("glTF"), 0o644))

	_, ok := openDropped(v, []fyne.URI{storage.NewFileURI(path)})

	assert.False(t, ok)
	assert.Equal(t, engine.Status{}, v.Status())
	_, ok = openDropped(v, nil)
	assert.False(t, ok)
}

func TestWindowRefreshSyncsPanel(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newTestViewer(t)
	cfg := config.Default()
	w := NewWindow(a, v, &cfg)
	revision := v.Lights.Revision()

	v.Lights.SetDirectionalLightIntensity(3)
	revision = w.refresh(revision)

	assert.Equal(t, v.Lights.Revision(), revision)
	assert.InDelta(t, 3, w.panel.sliders[0].Value, 1e-6)
	assert.Equal(t, "3.0", w.panel.values[0].Text)
	assert.Equal(t, "No model loaded", w.panel.status.Text)

	// Unchanged lights leave the widgets alone
	w.panel.values[0].SetText("edited")
	assert.Equal(t, revision, w.refresh(revision))
	assert.Equal(t, "edited", w.panel.values[0].Text)
}

func TestViewportDragAndScroll(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newTestViewer(t)
	vp := NewViewport(v)

	vp.draw(64, 48)
	require.False(t, vp.NeedsRender())

	vp.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 12, DY: -4}})
	assert.True(t, vp.NeedsRender())

	vp.draw(64, 48)
	vp.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 10}})
	assert.True(t, vp.NeedsRender())
}
