package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterial provides a basic material to fall back on
var DefaultMaterial = &Material{
	Name:      "default",
	BaseColor: mgl32.Vec4{1.0, 1.0, 1.0, 1.0}, // White color
	Metallic:  0.0,                            // Non-metallic by default
	Roughness: 0.5,                            // Medium roughness
}

type Material struct {
	// HOT DATA - Accessed for every shaded fragment
	BaseColor mgl32.Vec4 // Linear RGBA
	Metallic  float32    // 0.0 = dielectric, 1.0 = metallic
	Roughness float32    // 0.0 = mirror, 1.0 = completely rough

	// COLD DATA
	Name string
}

// Mesh is one triangle list with a single material.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // Optional, one per position
	Indices   []uint32     // Triangle list; always a multiple of three
	Material  *Material
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Node is a scene-graph node with a local transform relative to its parent.
type Node struct {
	Name     string
	Local    mgl32.Mat4
	Meshes   []*Mesh
	Children []*Node
}

func NewNode(name string) *Node {
	return &Node{Name: name, Local: mgl32.Ident4()}
}

func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// SetTRS sets the local transform from translation, rotation and scale.
func (n *Node) SetTRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	// Matrix multiplication order: translation * rotation * scale
	scaleMatrix := mgl32.Scale3D(scale[0], scale[1], scale[2])
	rotationMatrix := rotation.Normalize().Mat4()
	translationMatrix := mgl32.Translate3D(position[0], position[1], position[2])
	n.Local = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}

// Walk visits n and its descendants depth-first with their world matrices.
func (n *Node) Walk(visit func(node *Node, world mgl32.Mat4)) {
	n.walk(mgl32.Ident4(), visit)
}

func (n *Node) walk(parent mgl32.Mat4, visit func(*Node, mgl32.Mat4)) {
	world := parent.Mul4(n.Local)
	visit(n, world)
	for _, child := range n.Children {
		child.walk(world, visit)
	}
}

// TriangleCount sums triangles across the whole subtree.
func (n *Node) TriangleCount() int {
	count := 0
	n.Walk(func(node *Node, _ mgl32.Mat4) {
		for _, mesh := range node.Meshes {
			count += mesh.TriangleCount()
		}
	})
	return count
}

// BoundingSphere returns a sphere around every world-space vertex under n.
// ok is false when the subtree has no geometry.
func (n *Node) BoundingSphere() (center mgl32.Vec3, radius float32, ok bool) {
	var points []mgl32.Vec3
	n.Walk(func(node *Node, world mgl32.Mat4) {
		for _, mesh := range node.Meshes {
			for _, p := range mesh.Positions {
				points = append(points, world.Mul4x1(p.Vec4(1)).Vec3())
			}
		}
	})
	if len(points) == 0 {
		return mgl32.Vec3{}, 0, false
	}
	center, radius = boundingSphere(points)
	return center, radius, true
}

// boundingSphere uses the centroid and the farthest point from it.
func boundingSphere(points []mgl32.Vec3) (mgl32.Vec3, float32) {
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / float32(len(points)))

	var maxDistanceSq float32
	for _, p := range points {
		if d := p.Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}
	return center, float32(math.Sqrt(float64(maxDistanceSq)))
}
