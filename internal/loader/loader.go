package loader

import (
	"GopherView/internal/logger"
	"GopherView/internal/renderer"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// ErrUnsupportedFile is returned for files that are not glTF models.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrStreamResources is returned when a .gltf copied from a stream cannot be
// opened, usually because its buffers or images live next to the original.
var ErrStreamResources = errors.New("external resources are not available for dropped .gltf streams, use .glb")

// Accept reports whether name ends in .gltf or .glb. The match is case-sensitive.
func Accept(name string) bool {
	return strings.HasSuffix(name, ".gltf") || strings.HasSuffix(name, ".glb")
}

// Asset is a decoded model ready to be composed into a scene.
type Asset struct {
	Name string
	Path string
	Root *renderer.Node
}

// Loader decodes the file behind a handle.
type Loader interface {
	Load(ctx context.Context, h *Handle) (*Asset, error)
}

// GLTFLoader reads glTF 2.0 text and binary files.
type GLTFLoader struct{}

func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{}
}

func (l *GLTFLoader) Load(ctx context.Context, h *Handle) (*Asset, error) {
	if !Accept(h.Name) {
		return nil, fmt.Errorf("%s: %w", h.Name, ErrUnsupportedFile)
	}
	doc, err := gltf.Open(h.Path)
	if err != nil {
		if h.stream && strings.HasSuffix(h.Name, ".gltf") {
			return nil, fmt.Errorf("open %s: %w: %v", h.Name, ErrStreamResources, err)
		}
		return nil, fmt.Errorf("open %s: %w", h.Name, err)
	}

	materials := make([]*renderer.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = convertMaterial(m)
	}

	meshes := make([][]*renderer.Mesh, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for pi, prim := range m.Primitives {
			mesh, err := convertPrimitive(doc, prim, materials)
			if err != nil {
				// A broken primitive should not hide the rest of the model
				logger.Log.Warn("Skipping glTF primitive",
					zap.String("file", h.Name), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			mesh.Name = fmt.Sprintf("%s_%d", m.Name, pi)
			meshes[mi] = append(meshes[mi], mesh)
		}
	}

	nodes := make([]*renderer.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodes[i] = convertNode(i, n, meshes)
	}
	root := renderer.NewNode(h.Name)
	for _, idx := range rootNodes(doc) {
		if child := buildTree(doc, nodes, idx, map[uint32]bool{}); child != nil {
			root.AddChild(child)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Log.Info("Model loaded",
		zap.String("file", h.Name),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("triangles", root.TriangleCount()))
	return &Asset{Name: h.Name, Path: h.Path, Root: root}, nil
}

func convertMaterial(m *gltf.Material) *renderer.Material {
	mat := &renderer.Material{
		Name:      m.Name,
		BaseColor: renderer.DefaultMaterial.BaseColor,
		Metallic:  1, // glTF defaults
		Roughness: 1,
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		mat.BaseColor = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		mat.Metallic = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}
	if m.AlphaMode != gltf.AlphaBlend {
		mat.BaseColor[3] = 1
	}
	return mat
}

func convertPrimitive(doc *gltf.Document, prim *gltf.Primitive, materials []*renderer.Material) (*renderer.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return nil, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	mesh := &renderer.Mesh{
		Positions: make([]mgl32.Vec3, len(positions)),
		Material:  renderer.DefaultMaterial,
	}
	for i, p := range positions {
		mesh.Positions[i] = mgl32.Vec3(p)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok && int(idx) < len(doc.Accessors) {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err == nil && len(normals) == len(positions) {
			mesh.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				mesh.Normals[i] = mgl32.Vec3(n)
			}
		}
	}

	if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
		mesh.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		mesh.Indices = make([]uint32, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	if len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a triangle list", len(mesh.Indices))
	}

	if prim.Material != nil && int(*prim.Material) < len(materials) {
		mesh.Material = materials[*prim.Material]
	}
	return mesh, nil
}

func convertNode(i int, n *gltf.Node, meshes [][]*renderer.Mesh) *renderer.Node {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	node := renderer.NewNode(name)

	if n.Matrix != gltf.DefaultMatrix && n.Matrix != [16]float32{} {
		m := n.MatrixOrDefault()
		for k := range m {
			node.Local[k] = float32(m[k]) // Both are column-major
		}
	} else {
		t := n.TranslationOrDefault()
		r := n.RotationOrDefault() // [x, y, z, w]
		s := n.ScaleOrDefault()
		node.SetTRS(
			mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
			mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
			mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
		)
	}

	if n.Mesh != nil && int(*n.Mesh) < len(meshes) {
		node.Meshes = meshes[*n.Mesh]
	}
	return node
}

// rootNodes returns the default scene's nodes, or every parentless node when
// the file has no scene.
func rootNodes(doc *gltf.Document) []uint32 {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// buildTree attaches children below nodes[idx]. Nodes on the current path are
// skipped so a malformed file cannot recurse forever.
func buildTree(doc *gltf.Document, nodes []*renderer.Node, idx uint32, path map[uint32]bool) *renderer.Node {
	if int(idx) >= len(nodes) || path[idx] {
		return nil
	}
	path[idx] = true
	defer delete(path, idx)

	// Copy so a node referenced twice does not share its children slice
	src := nodes[idx]
	node := &renderer.Node{Name: src.Name, Local: src.Local, Meshes: src.Meshes}
	for _, c := range doc.Nodes[idx].Children {
		if child := buildTree(doc, nodes, c, path); child != nil {
			node.AddChild(child)
		}
	}
	return node
}
