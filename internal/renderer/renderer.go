package renderer

import (
	"GopherView/internal/lighting"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

type ObjectKind int

const (
	DirectionalLightObject ObjectKind = iota
	AmbientLightObject
	GroundPlaneObject
	ModelObject
)

func (k ObjectKind) String() string {
	switch k {
	case DirectionalLightObject:
		return "directional-light"
	case AmbientLightObject:
		return "ambient-light"
	case GroundPlaneObject:
		return "ground-plane"
	case ModelObject:
		return "model"
	}
	return "unknown"
}

type DirectionalLight struct {
	Intensity     float32
	Color         lighting.Color
	Position      mgl32.Vec3 // The light shines from Position towards the origin
	CastShadow    bool
	ShadowMapSize int
}

type AmbientLight struct {
	Intensity float32
	Color     lighting.Color
}

// GroundPlane is a square in its local XY plane, placed by Position and Rotation (Euler XYZ, radians).
type GroundPlane struct {
	Size          float32
	Position      mgl32.Vec3
	Rotation      mgl32.Vec3
	ReceiveShadow bool
	Transparent   bool
	Opacity       float32 // Darkness of received shadows
}

// Transform returns the plane's world matrix.
func (g GroundPlane) Transform() mgl32.Mat4 {
	rotation := mgl32.HomogRotate3DX(g.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(g.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(g.Rotation[2]))
	return mgl32.Translate3D(g.Position[0], g.Position[1], g.Position[2]).Mul4(rotation)
}

// Corners returns the four world-space corners in winding order.
func (g GroundPlane) Corners() [4]mgl32.Vec3 {
	h := g.Size / 2
	world := g.Transform()
	local := [4]mgl32.Vec3{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}}
	var out [4]mgl32.Vec3
	for i, p := range local {
		out[i] = world.Mul4x1(p.Vec4(1)).Vec3()
	}
	return out
}

// Normal returns the world-space plane normal.
func (g GroundPlane) Normal() mgl32.Vec3 {
	return g.Transform().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3().Normalize()
}

// RenderList is everything drawn for one frame.
type RenderList struct {
	Directional DirectionalLight
	Ambient     AmbientLight
	Ground      GroundPlane
	Model       *Node // Nil until an asset has loaded
}

type Object struct {
	Kind ObjectKind
	Name string
}

// Objects enumerates the renderable items in draw order.
func (l RenderList) Objects() []Object {
	objects := []Object{
		{Kind: DirectionalLightObject, Name: "directional"},
		{Kind: AmbientLightObject, Name: "ambient"},
		{Kind: GroundPlaneObject, Name: "ground"},
	}
	if l.Model != nil {
		objects = append(objects, Object{Kind: ModelObject, Name: l.Model.Name})
	}
	return objects
}

// Render draws a render list into an image of the given size.
type Render interface {
	Render(list RenderList, camera *Camera, width, height int) *image.RGBA
}
