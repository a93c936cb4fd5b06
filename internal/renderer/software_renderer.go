package renderer

import (
	"GopherView/internal/logger"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

// Frame holds the buffers of one rendered image. Post-processing stages
// read LinearDepth and modify Image in place.
type Frame struct {
	Width, Height int
	Color         []mgl32.Vec3 // Linear HDR radiance
	Depth         []float32    // Window-space depth used for the z-test, 1 where empty
	LinearDepth   []float32    // View depth normalized between near and far, 1 where empty
	Image         *image.RGBA  // Tone-mapped sRGB output
}

func (f *Frame) resize(width, height int) {
	if f.Width == width && f.Height == height {
		return
	}
	f.Width, f.Height = width, height
	f.Color = make([]mgl32.Vec3, width*height)
	f.Depth = make([]float32, width*height)
	f.LinearDepth = make([]float32, width*height)
}

// Environment background presets, zenith then horizon, in sRGB hex.
var environments = map[string][2]string{
	"sunset": {"#2b3a67", "#f2a65a"},
	"studio": {"#3a3a3a", "#9a9a9a"},
}

// SoftwareRenderer rasterizes a RenderList on the CPU.
type SoftwareRenderer struct {
	Post   PostProcessing
	frame  Frame
	shadow shadowMap
	stages []Stage
	sky    [2]colorful.Color
}

func NewSoftwareRenderer(post PostProcessing) *SoftwareRenderer {
	rend := &SoftwareRenderer{Post: post, stages: post.Stages()}
	preset, ok := environments[post.Environment]
	if !ok {
		preset = environments["studio"]
	}
	for i, hex := range preset {
		c, err := colorful.Hex(hex)
		if err != nil {
			logger.Log.Error("Invalid environment color", zap.String("color", hex), zap.Error(err))
			continue
		}
		rend.sky[i] = c
	}
	names := make([]string, 0, len(rend.stages))
	for _, stage := range rend.stages {
		names = append(names, stage.Name())
	}
	logger.Log.Info("Software renderer initialized",
		zap.String("environment", post.Environment),
		zap.Strings("postprocessing", names))
	return rend
}

// Frame returns the buffers of the last rendered image.
func (rend *SoftwareRenderer) Frame() *Frame {
	return &rend.frame
}

// meshBatch is one mesh flattened to world-space triangles.
type meshBatch struct {
	triangles []worldTriangle
	material  *Material
	center    mgl32.Vec3
	radius    float32
}

type worldTriangle struct {
	positions [3]mgl32.Vec3
	normals   [3]mgl32.Vec3
}

// shading holds the per-frame lighting terms.
type shading struct {
	toLight     mgl32.Vec3
	directional mgl32.Vec3 // Color * intensity
	ambient     mgl32.Vec3
	eye         mgl32.Vec3
}

// fragmentShader returns a linear color and its coverage for a surface point.
type fragmentShader func(position, normal mgl32.Vec3) (mgl32.Vec3, float32)

// Render draws list into a width x height image. The camera projection is
// updated to the viewport aspect ratio.
func (rend *SoftwareRenderer) Render(list RenderList, camera *Camera, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	rend.frame.resize(width, height)
	rend.clear()

	camera.SetAspectRatio(float32(width) / float32(height))
	viewProj := camera.GetViewProjection()
	frustum := camera.CalculateFrustum()

	light := shading{
		toLight:     normalizeOr(list.Directional.Position, mgl32.Vec3{0, 1, 0}),
		directional: list.Directional.Color.Linear().Mul(list.Directional.Intensity),
		ambient:     list.Ambient.Color.Linear().Mul(list.Ambient.Intensity),
		eye:         camera.Position,
	}

	batches := collectBatches(list.Model)
	if center, radius, ok := batchBounds(batches); ok && list.Directional.CastShadow {
		rend.shadow.build(batches, light.toLight, center, radius, list.Directional.ShadowMapSize)
	} else {
		rend.shadow.disable()
	}

	for _, batch := range batches {
		if !frustum.IntersectsSphere(batch.center, batch.radius) {
			continue
		}
		shade := rend.surfaceShader(batch.material, light)
		for _, tri := range batch.triangles {
			rend.drawTriangle(viewProj, camera, tri, shade, true)
		}
	}

	if list.Ground.Size > 0 {
		rend.drawGround(list.Ground, viewProj, camera)
	}

	img := rend.toneMap()
	for _, stage := range rend.stages {
		stage.Apply(&rend.frame)
	}
	return img
}

func (rend *SoftwareRenderer) clear() {
	f := &rend.frame
	for y := 0; y < f.Height; y++ {
		t := float64(y) / float64(maxInt(f.Height-1, 1))
		r, g, b := rend.sky[0].BlendLab(rend.sky[1], t).Clamped().LinearRgb()
		bg := mgl32.Vec3{float32(r), float32(g), float32(b)}
		row := y * f.Width
		for x := 0; x < f.Width; x++ {
			f.Color[row+x] = bg
			f.Depth[row+x] = 1
			f.LinearDepth[row+x] = 1
		}
	}
}

// surfaceShader lights a material with Lambert diffuse and Blinn-Phong specular.
func (rend *SoftwareRenderer) surfaceShader(mat *Material, light shading) fragmentShader {
	if mat == nil {
		mat = DefaultMaterial
	}
	base := mat.BaseColor.Vec3()
	diffuseColor := base.Mul(1 - mat.Metallic)
	specularColor := mgl32.Vec3{0.04, 0.04, 0.04}.Mul(1 - mat.Metallic).Add(base.Mul(mat.Metallic))
	roughness := mgl32.Clamp(mat.Roughness, 0.05, 1)
	shininess := float64(2/(roughness*roughness*roughness*roughness) - 2)

	return func(p, n mgl32.Vec3) (mgl32.Vec3, float32) {
		view := normalizeOr(light.eye.Sub(p), mgl32.Vec3{0, 0, 1})
		n = normalizeOr(n, view)
		if n.Dot(view) < 0 {
			n = n.Mul(-1) // Two-sided lighting
		}

		color := mulVec(diffuseColor, light.ambient)
		ndl := n.Dot(light.toLight)
		if ndl > 0 {
			visibility := rend.shadow.visibility(p)
			half := normalizeOr(light.toLight.Add(view), n)
			spec := float32(math.Pow(float64(max32(n.Dot(half), 0)), shininess))
			radiance := light.directional.Mul(ndl * visibility)
			color = color.Add(mulVec(diffuseColor.Add(specularColor.Mul(spec)), radiance))
		}
		return color, mat.BaseColor.W()
	}
}

// drawGround renders a shadow-only plane: it darkens what is behind it where shadowed.
func (rend *SoftwareRenderer) drawGround(ground GroundPlane, viewProj mgl32.Mat4, camera *Camera) {
	if !ground.ReceiveShadow || !rend.shadow.enabled {
		return
	}
	corners := ground.Corners()
	normal := ground.Normal()
	shade := func(p, _ mgl32.Vec3) (mgl32.Vec3, float32) {
		return mgl32.Vec3{}, ground.Opacity * (1 - rend.shadow.visibility(p))
	}
	for _, idx := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
		tri := worldTriangle{
			positions: [3]mgl32.Vec3{corners[idx[0]], corners[idx[1]], corners[idx[2]]},
			normals:   [3]mgl32.Vec3{normal, normal, normal},
		}
		rend.drawTriangle(viewProj, camera, tri, shade, !ground.Transparent)
	}
}

// toneMap converts the HDR buffer into the output image.
func (rend *SoftwareRenderer) toneMap() *image.RGBA {
	f := &rend.frame
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	exposure := rend.Post.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	for i, c := range f.Color {
		c = c.Mul(exposure)
		if rend.Post.ToneMapping == ACESFilmicToneMapping {
			c = mgl32.Vec3{acesFilmic(c[0]), acesFilmic(c[1]), acesFilmic(c[2])}
		}
		r, g, b := colorful.LinearRgb(float64(c[0]), float64(c[1]), float64(c[2])).Clamped().RGB255()
		img.Pix[i*4] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = 0xff
	}
	f.Image = img
	return img
}

// acesFilmic is the Narkowicz fit of the ACES filmic curve.
func acesFilmic(x float32) float32 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}

func collectBatches(root *Node) []meshBatch {
	if root == nil {
		return nil
	}
	var batches []meshBatch
	root.Walk(func(node *Node, world mgl32.Mat4) {
		normalMatrix := world.Mat3().Inv().Transpose()
		for _, mesh := range node.Meshes {
			batch := meshBatch{material: mesh.Material}
			points := make([]mgl32.Vec3, len(mesh.Positions))
			for i, p := range mesh.Positions {
				points[i] = world.Mul4x1(p.Vec4(1)).Vec3()
			}
			hasNormals := len(mesh.Normals) == len(mesh.Positions)
			for i := 0; i+2 < len(mesh.Indices); i += 3 {
				a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
				if int(a) >= len(points) || int(b) >= len(points) || int(c) >= len(points) {
					continue
				}
				tri := worldTriangle{positions: [3]mgl32.Vec3{points[a], points[b], points[c]}}
				if hasNormals {
					for k, idx := range [3]uint32{a, b, c} {
						tri.normals[k] = normalMatrix.Mul3x1(mesh.Normals[idx])
					}
				} else {
					face := points[b].Sub(points[a]).Cross(points[c].Sub(points[a]))
					tri.normals = [3]mgl32.Vec3{face, face, face}
				}
				batch.triangles = append(batch.triangles, tri)
			}
			if len(batch.triangles) == 0 {
				continue
			}
			batch.center, batch.radius = boundingSphere(points)
			batches = append(batches, batch)
		}
	})
	return batches
}

// batchBounds returns a sphere enclosing every batch sphere.
func batchBounds(batches []meshBatch) (mgl32.Vec3, float32, bool) {
	if len(batches) == 0 {
		return mgl32.Vec3{}, 0, false
	}
	var center mgl32.Vec3
	for _, b := range batches {
		center = center.Add(b.center)
	}
	center = center.Mul(1 / float32(len(batches)))
	var radius float32
	for _, b := range batches {
		radius = max32(radius, b.center.Sub(center).Len()+b.radius)
	}
	return center, radius, radius > 0
}

func normalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-8 {
		return fallback
	}
	return v.Mul(1 / l)
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
