package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	shadowBias = 0.0005

	// How far past the model the shadow frustum extends, so the ground can receive.
	shadowReceiverReach = 100
)

// shadowMap is a depth image rendered from the directional light with an
// orthographic projection fitted around the model.
type shadowMap struct {
	size     int
	depth    []float32
	viewProj mgl32.Mat4
	enabled  bool
}

func (s *shadowMap) disable() {
	s.enabled = false
}

// build renders triangles into the map. toLight points from the scene towards the light.
func (s *shadowMap) build(batches []meshBatch, toLight, center mgl32.Vec3, radius float32, size int) {
	if size <= 0 || radius <= 0 {
		s.disable()
		return
	}
	if s.size != size {
		s.size = size
		s.depth = make([]float32, size*size)
	}
	for i := range s.depth {
		s.depth[i] = 1
	}

	up := mgl32.Vec3{0, 1, 0}
	if abs32(toLight.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	eye := center.Add(toLight.Mul(radius * 2))
	view := mgl32.LookAtV(eye, center, up)
	proj := mgl32.Ortho(-radius, radius, -radius, radius, radius*0.5, radius*3+shadowReceiverReach)
	s.viewProj = proj.Mul4(view)
	s.enabled = true

	for _, batch := range batches {
		for _, tri := range batch.triangles {
			s.fill(tri.positions)
		}
	}
}

func (s *shadowMap) project(p mgl32.Vec3) mgl32.Vec3 {
	clip := s.viewProj.Mul4x1(p.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl32.Vec3{
		(ndc.X()*0.5 + 0.5) * float32(s.size),
		(ndc.Y()*0.5 + 0.5) * float32(s.size),
		ndc.Z()*0.5 + 0.5,
	}
}

func (s *shadowMap) fill(positions [3]mgl32.Vec3) {
	a, b, c := s.project(positions[0]), s.project(positions[1]), s.project(positions[2])
	area := edgeFunction(a, b, c.X(), c.Y())
	if area == 0 {
		return
	}

	minX, maxX := clampSpan(min3(a.X(), b.X(), c.X()), max3(a.X(), b.X(), c.X()), s.size)
	minY, maxY := clampSpan(min3(a.Y(), b.Y(), c.Y()), max3(a.Y(), b.Y(), c.Y()), s.size)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edgeFunction(b, c, px, py) / area
			w1 := edgeFunction(c, a, px, py) / area
			w2 := edgeFunction(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z() + w1*b.Z() + w2*c.Z()
			idx := y*s.size + x
			if z < s.depth[idx] {
				s.depth[idx] = z
			}
		}
	}
}

// visibility returns 1 for fully lit and 0 for fully shadowed, using 3x3 PCF.
func (s *shadowMap) visibility(p mgl32.Vec3) float32 {
	if !s.enabled {
		return 1
	}
	q := s.project(p)
	cx, cy := int(q.X()), int(q.Y())
	if cx < 0 || cy < 0 || cx >= s.size || cy >= s.size || q.Z() > 1 {
		return 1
	}

	var lit, taps float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= s.size || y >= s.size {
				continue
			}
			taps++
			if q.Z()-shadowBias <= s.depth[y*s.size+x] {
				lit++
			}
		}
	}
	return lit / taps
}
