package engine

import (
	"GopherView/internal/config"
	"GopherView/internal/loader"
	"GopherView/internal/renderer"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.WatchModel = false
	cfg.RenderScale = 0.5
	return cfg
}

func writeCubeGLB(t *testing.T, name string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	})
	idx := modeler.WriteIndices(doc, []uint16{
		0, 2, 1, 0, 3, 2, 4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4, 3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3, 1, 2, 6, 1, 6, 5,
	})
	doc.Meshes = []*gltf.Mesh{{
		Name: "cube",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos)},
			Indices:    gltf.Index(uint32(idx)),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "cube", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []uint32{0}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

// steppedLoader finishes one load per value sent on next.
type steppedLoader struct {
	next chan struct{}
}

func (l *steppedLoader) Load(ctx context.Context, h *loader.Handle) (*loader.Asset, error) {
	select {
	case <-l.next:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &loader.Asset{Name: h.Name, Path: h.Path, Root: renderer.NewNode(h.Name)}, nil
}

func waitForLoad(t *testing.T, v *Viewer) {
	t.Helper()
	require.Eventually(t, func() bool {
		v.RenderList()
		return !v.Status().Loading
	}, 5*time.Second, 5*time.Millisecond)
}

func TestViewerStartsEmpty(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()

	list := v.RenderList()

	assert.Len(t, list.Objects(), 3)
	assert.Nil(t, list.Model)
	assert.Equal(t, "No model loaded", v.Status().String())
}

func TestViewerIgnoresUnsupportedFile(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()
	path := filepath.Join(t.TempDir(), "model.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\n"), 0o644))
	before := v.Lights.Snapshot()

	assert.False(t, v.Open(loader.FileHandle(path)))

	assert.Equal(t, Status{}, v.Status())
	assert.Equal(t, before, v.Lights.Snapshot())
	assert.Len(t, v.RenderList().Objects(), 3)
}

func TestViewerLoadsModel(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()

	require.True(t, v.Open(loader.FileHandle(writeCubeGLB(t, "cube.glb"))))
	assert.True(t, v.Status().Loading)
	waitForLoad(t, v)

	list := v.RenderList()
	require.NotNil(t, list.Model)
	objects := list.Objects()
	require.Len(t, objects, 4)
	assert.Equal(t, renderer.ModelObject, objects[3].Kind)
	assert.Equal(t, "cube.glb", v.Status().String())
	assert.NoError(t, v.Status().Err)
}

func TestViewerReportsLoadFailure(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()
	path := filepath.Join(t.TempDir(), "broken.gltf")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	require.True(t, v.Open(loader.FileHandle(path)))
	waitForLoad(t, v)

	assert.Error(t, v.Status().Err)
	assert.Contains(t, v.Status().String(), "Failed to load broken.gltf")
	assert.Nil(t, v.RenderList().Model)
}

func TestViewerNeedsRender(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()

	assert.True(t, v.NeedsRender(64, 48))
	v.Frame(64, 48)
	assert.False(t, v.NeedsRender(64, 48))

	assert.True(t, v.NeedsRender(80, 48), "resize")

	v.Lights.SetAmbientLightIntensity(1)
	assert.True(t, v.NeedsRender(64, 48), "light change")
	v.Frame(64, 48)

	v.Orbit(10, 0)
	assert.True(t, v.NeedsRender(64, 48), "orbit")
	v.Frame(64, 48)

	v.Zoom(1)
	assert.True(t, v.NeedsRender(64, 48), "zoom")
}

func TestViewerNeedsRenderAfterModelLoads(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()
	v.Frame(64, 48)

	require.True(t, v.Open(loader.FileHandle(writeCubeGLB(t, "cube.glb"))))

	require.Eventually(t, func() bool { return v.NeedsRender(64, 48) }, 5*time.Second, 5*time.Millisecond)
}

func TestViewerFrameUsesRenderScale(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()

	img := v.Frame(200, 100)

	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	assert.True(t, v.Frame(1, 1).Bounds().Empty())
}

func TestViewerOpenNil(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()

	assert.NotPanics(t, func() { assert.False(t, v.Open(nil)) })
	assert.Equal(t, Status{}, v.Status())
}

func TestViewerShowsReloadInProgress(t *testing.T) {
	v := NewViewer(testConfig())
	defer v.Close()
	steps := &steppedLoader{next: make(chan struct{}, 1)}
	v.session.Close()
	v.session = loader.NewSession(steps)

	steps.next <- struct{}{}
	require.True(t, v.Open(loader.FileHandle(filepath.Join(t.TempDir(), "cube.glb"))))
	waitForLoad(t, v)
	model := v.RenderList().Model
	require.NotNil(t, model)

	v.session.Reload()
	list := v.RenderList()

	assert.True(t, v.Status().Loading)
	assert.Equal(t, "Loading cube.glb...", v.Status().String())
	assert.Same(t, model, list.Model, "the old model stays until the reload finishes")

	steps.next <- struct{}{}
	waitForLoad(t, v)
	assert.Equal(t, "cube.glb", v.Status().String())
	assert.NotSame(t, model, v.RenderList().Model)
}
