package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// clipVertex carries the attributes interpolated across a triangle.
type clipVertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
	}
}

// clipNear cuts a polygon against the near plane (z >= -w in clip space).
func clipNear(in []clipVertex) []clipVertex {
	out := make([]clipVertex, 0, len(in)+1)
	for i := range in {
		cur, next := in[i], in[(i+1)%len(in)]
		dc := cur.clip.Z() + cur.clip.W()
		dn := next.clip.Z() + next.clip.W()
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, lerpVertex(cur, next, dc/(dc-dn)))
		}
	}
	return out
}

// viewportTransform maps a clip-space point to pixel coordinates with y down
// and depth in [0,1].
func viewportTransform(clip mgl32.Vec4, width, height int) mgl32.Vec3 {
	invW := 1 / clip.W()
	return mgl32.Vec3{
		(clip.X()*invW*0.5 + 0.5) * float32(width),
		(0.5 - clip.Y()*invW*0.5) * float32(height),
		clip.Z()*invW*0.5 + 0.5,
	}
}

// drawTriangle clips, rasterizes and shades one world-space triangle.
// Fragments are depth tested; writeDepth controls whether they also occlude.
func (rend *SoftwareRenderer) drawTriangle(viewProj mgl32.Mat4, camera *Camera, tri worldTriangle, shade fragmentShader, writeDepth bool) {
	var verts [3]clipVertex
	for i := range verts {
		verts[i] = clipVertex{
			clip:   viewProj.Mul4x1(tri.positions[i].Vec4(1)),
			world:  tri.positions[i],
			normal: tri.normals[i],
		}
	}
	poly := clipNear(verts[:])
	for i := 1; i+1 < len(poly); i++ {
		rend.rasterize(poly[0], poly[i], poly[i+1], camera, shade, writeDepth)
	}
}

func (rend *SoftwareRenderer) rasterize(v0, v1, v2 clipVertex, camera *Camera, shade fragmentShader, writeDepth bool) {
	f := &rend.frame
	a := viewportTransform(v0.clip, f.Width, f.Height)
	b := viewportTransform(v1.clip, f.Width, f.Height)
	c := viewportTransform(v2.clip, f.Width, f.Height)
	area := edgeFunction(a, b, c.X(), c.Y())
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}
	inv := [3]float32{1 / v0.clip.W(), 1 / v1.clip.W(), 1 / v2.clip.W()}
	depthRange := camera.Far - camera.Near

	minX, maxX := clampSpan(min3(a.X(), b.X(), c.X()), max3(a.X(), b.X(), c.X()), f.Width)
	minY, maxY := clampSpan(min3(a.Y(), b.Y(), c.Y()), max3(a.Y(), b.Y(), c.Y()), f.Height)
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
			idx := y*f.Width + x
			if z < 0 || z >= f.Depth[idx] {
				continue
			}

			// Perspective-correct weights
			p0, p1, p2 := w0*inv[0], w1*inv[1], w2*inv[2]
			viewDepth := 1 / (p0 + p1 + p2)
			p0, p1, p2 = p0*viewDepth, p1*viewDepth, p2*viewDepth

			world := v0.world.Mul(p0).Add(v1.world.Mul(p1)).Add(v2.world.Mul(p2))
			normal := v0.normal.Mul(p0).Add(v1.normal.Mul(p1)).Add(v2.normal.Mul(p2))
			color, alpha := shade(world, normal)
			if alpha <= 0 {
				continue
			}
			if alpha >= 1 {
				f.Color[idx] = color
			} else {
				f.Color[idx] = f.Color[idx].Mul(1 - alpha).Add(color.Mul(alpha))
			}
			if writeDepth {
				f.Depth[idx] = z
				f.LinearDepth[idx] = clamp01((viewDepth - camera.Near) / depthRange)
			}
		}
	}
}

// edgeFunction is twice the signed area of (a, b, p).
func edgeFunction(a, b mgl32.Vec3, px, py float32) float32 {
	return (b.X()-a.X())*(py-a.Y()) - (b.Y()-a.Y())*(px-a.X())
}

// clampSpan converts a float range to inclusive pixel bounds inside [0, size).
func clampSpan(lo, hi float32, size int) (int, int) {
	lo = mgl32.Clamp(lo, 0, float32(size))
	hi = mgl32.Clamp(hi, -1, float32(size-1))
	return int(math.Floor(float64(lo))), int(math.Ceil(float64(hi)))
}

func min3(a, b, c float32) float32 {
	return min32(a, min32(b, c))
}

func max3(a, b, c float32) float32 {
	return max32(a, max32(b, c))
}
