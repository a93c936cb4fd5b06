package renderer

import (
	"GopherView/internal/lighting"
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	testWidth  = 160
	testHeight = 120
)

func solidImage(width, height int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// plainPost disables every effect so pixels can be compared directly.
func plainPost() PostProcessing {
	return PostProcessing{ToneMapping: NoToneMapping, Exposure: 1, Environment: "studio"}
}

func testRenderList(model *Node) RenderList {
	return RenderList{
		Directional: DirectionalLight{
			Intensity:     1,
			Color:         lighting.White,
			Position:      mgl32.Vec3{5, 5, 5},
			CastShadow:    true,
			ShadowMapSize: 512,
		},
		Ambient: AmbientLight{Intensity: 0.5, Color: lighting.White},
		Ground: GroundPlane{
			Size:          100,
			Position:      mgl32.Vec3{0, -2, 0},
			Rotation:      mgl32.Vec3{-math.Pi / 2, 0, 0},
			ReceiveShadow: true,
			Transparent:   true,
			Opacity:       0.4,
		},
		Model: model,
	}
}

func pixelOf(cam *Camera, p mgl32.Vec3) (int, int) {
	aspect := float32(testWidth) / float32(testHeight)
	viewProj := mgl32.Perspective(mgl32.DegToRad(cam.Fov), aspect, cam.Near, cam.Far).Mul4(cam.GetViewMatrix())
	s := viewportTransform(viewProj.Mul4x1(p.Vec4(1)), testWidth, testHeight)
	return int(s.X()), int(s.Y())
}

func brightness(img *image.RGBA, x, y int) int {
	i := img.PixOffset(x, y)
	return int(img.Pix[i]) + int(img.Pix[i+1]) + int(img.Pix[i+2])
}

func TestRenderEmptyListDrawsBackground(t *testing.T) {
	rend := NewSoftwareRenderer(plainPost())
	cam := NewDefaultCamera(testWidth, testHeight)

	img := rend.Render(testRenderList(nil), cam, testWidth, testHeight)

	if img.Bounds().Dx() != testWidth || img.Bounds().Dy() != testHeight {
		t.Fatalf("Expected %dx%d image, got %v", testWidth, testHeight, img.Bounds())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatalf("Expected opaque output, pixel %d has alpha %d", i/4, img.Pix[i])
		}
	}
	if brightness(img, 0, 0) == brightness(img, 0, testHeight-1) {
		t.Error("Expected a vertical background gradient")
	}
	for _, d := range rend.Frame().LinearDepth {
		if d != 1 {
			t.Fatalf("Expected empty depth buffer, found %f", d)
		}
	}
}

func TestRenderInvalidSize(t *testing.T) {
	rend := NewSoftwareRenderer(plainPost())
	img := rend.Render(testRenderList(nil), NewDefaultCamera(1, 1), 0, 10)

	if !img.Bounds().Empty() {
		t.Errorf("Expected an empty image, got %v", img.Bounds())
	}
}

func TestRenderFollowsViewportAspect(t *testing.T) {
	rend := NewSoftwareRenderer(plainPost())
	cam := NewDefaultCamera(800, 800)

	rend.Render(testRenderList(newCubeNode("cube")), cam, testWidth, testHeight)

	want := float32(testWidth) / float32(testHeight)
	if math.Abs(float64(cam.AspectRatio-want)) > 1e-6 {
		t.Errorf("Expected aspect ratio %f, got %f", want, cam.AspectRatio)
	}
	frame := rend.Frame()
	x, y := pixelOf(cam, mgl32.Vec3{0, 0, 0})
	if d := frame.LinearDepth[y*frame.Width+x]; d >= 1 {
		t.Errorf("Expected the model at its projected pixel (%d,%d), got depth %f", x, y, d)
	}
}

func TestRenderModelWritesDepth(t *testing.T) {
	rend := NewSoftwareRenderer(plainPost())
	cam := NewDefaultCamera(testWidth, testHeight)

	rend.Render(testRenderList(newCubeNode("cube")), cam, testWidth, testHeight)

	frame := rend.Frame()
	x, y := pixelOf(cam, mgl32.Vec3{0, 0, 0})
	center := frame.LinearDepth[y*frame.Width+x]
	if center <= 0 || center >= 1 {
		t.Errorf("Expected model depth inside (0,1), got %f", center)
	}
	if frame.LinearDepth[0] != 1 {
		t.Errorf("Expected background depth 1 in the corner, got %f", frame.LinearDepth[0])
	}
}

func TestGroundReceivesModelShadow(t *testing.T) {
	cam := NewDefaultCamera(testWidth, testHeight)
	// The cube's shadow falls along the light direction onto the ground
	x, y := pixelOf(cam, mgl32.Vec3{-2, -2, -2})

	empty := NewSoftwareRenderer(plainPost()).Render(testRenderList(nil), cam, testWidth, testHeight)
	shadowed := NewSoftwareRenderer(plainPost()).Render(testRenderList(newCubeNode("cube")), cam, testWidth, testHeight)

	if brightness(shadowed, x, y) >= brightness(empty, x, y) {
		t.Errorf("Expected shadowed ground (%d) darker than empty ground (%d)",
			brightness(shadowed, x, y), brightness(empty, x, y))
	}

	// Away from the shadow the ground stays invisible
	fx, fy := pixelOf(cam, mgl32.Vec3{1.5, -2, 1})
	if brightness(shadowed, fx, fy) != brightness(empty, fx, fy) {
		t.Errorf("Expected unshadowed ground to match background, got %d vs %d",
			brightness(shadowed, fx, fy), brightness(empty, fx, fy))
	}
}

func TestShadowDisabledWithoutCastShadow(t *testing.T) {
	cam := NewDefaultCamera(testWidth, testHeight)
	x, y := pixelOf(cam, mgl32.Vec3{-2, -2, -2})

	list := testRenderList(newCubeNode("cube"))
	list.Directional.CastShadow = false
	img := NewSoftwareRenderer(plainPost()).Render(list, cam, testWidth, testHeight)
	empty := NewSoftwareRenderer(plainPost()).Render(testRenderList(nil), cam, testWidth, testHeight)

	if brightness(img, x, y) != brightness(empty, x, y) {
		t.Error("Ground should not darken when the light casts no shadow")
	}
}

func TestDirectionalIntensityBrightensModel(t *testing.T) {
	cam := NewDefaultCamera(testWidth, testHeight)
	x, y := pixelOf(cam, mgl32.Vec3{0, 0, 0.5})

	render := func(intensity float32) int {
		list := testRenderList(newCubeNode("cube"))
		list.Ambient.Intensity = 0
		list.Directional.Intensity = intensity
		return brightness(NewSoftwareRenderer(plainPost()).Render(list, cam, testWidth, testHeight), x, y)
	}

	dim, bright := render(0.5), render(1)
	if bright <= dim {
		t.Errorf("Expected intensity 1 (%d) brighter than 0.5 (%d)", bright, dim)
	}
}

func TestAmbientColorTintsModel(t *testing.T) {
	cam := NewDefaultCamera(testWidth, testHeight)
	x, y := pixelOf(cam, mgl32.Vec3{0, 0, 0.5})

	list := testRenderList(newCubeNode("cube"))
	list.Directional.Intensity = 0
	list.Ambient.Color = lighting.Color{R: 255}
	img := NewSoftwareRenderer(plainPost()).Render(list, cam, testWidth, testHeight)

	i := img.PixOffset(x, y)
	if img.Pix[i] == 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
		t.Errorf("Expected a pure red pixel, got %v", img.Pix[i:i+3])
	}
}

func TestDefaultPipelineRuns(t *testing.T) {
	rend := NewSoftwareRenderer(DefaultPostProcessing())
	cam := NewDefaultCamera(testWidth, testHeight)

	img := rend.Render(testRenderList(newCubeNode("cube")), cam, testWidth, testHeight)

	if img != rend.Frame().Image {
		t.Error("Expected the returned image to be the frame output")
	}
}

func TestACESFilmicRange(t *testing.T) {
	if acesFilmic(0) > 0.01 {
		t.Errorf("Expected black to stay near black, got %f", acesFilmic(0))
	}
	if v := acesFilmic(100); v > 1 || v < 0.99 {
		t.Errorf("Expected bright values to saturate near 1, got %f", v)
	}
}
