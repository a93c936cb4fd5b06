package renderer

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	perlin "github.com/aquilax/go-perlin"
)

// Stage is one post-processing effect applied in place to a tone-mapped frame.
type Stage interface {
	Name() string
	Apply(frame *Frame)
}

// edgeAntialias softens pixels on strong luminance edges.
type edgeAntialias struct {
	threshold float32
}

func (edgeAntialias) Name() string { return "smaa" }

func (aa edgeAntialias) Apply(frame *Frame) {
	src := cloneRGBA(frame.Image)
	w, h := frame.Width, frame.Height
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := lumaAt(src, x, y)
			n := lumaAt(src, x, y-1)
			s := lumaAt(src, x, y+1)
			e := lumaAt(src, x+1, y)
			wl := lumaAt(src, x-1, y)
			contrast := max32(max32(n, s), max32(e, wl)) - min32(min32(n, s), min32(e, wl))
			if contrast < aa.threshold || math.Abs(float64(center-(n+s+e+wl)/4)) < float64(aa.threshold)/2 {
				continue
			}
			i := src.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sum := int(src.Pix[i+c])*4 +
					int(src.Pix[src.PixOffset(x, y-1)+c]) +
					int(src.Pix[src.PixOffset(x, y+1)+c]) +
					int(src.Pix[src.PixOffset(x-1, y)+c]) +
					int(src.Pix[src.PixOffset(x+1, y)+c])
				frame.Image.Pix[i+c] = uint8(sum / 8)
			}
		}
	}
}

// bloom adds a blurred bright-pass back onto the frame.
type bloom struct {
	intensity, threshold, smoothing, radius float32
}

func (bloom) Name() string { return "bloom" }

func (b bloom) Apply(frame *Frame) {
	bright := image.NewRGBA(frame.Image.Rect)
	lit := false
	for i := 0; i < len(frame.Image.Pix); i += 4 {
		p := frame.Image.Pix[i : i+4 : i+4]
		k := smoothstep(b.threshold, b.threshold+b.smoothing, luma(p[0], p[1], p[2]))
		if k == 0 {
			continue
		}
		lit = true
		bright.Pix[i] = uint8(float32(p[0]) * k)
		bright.Pix[i+1] = uint8(float32(p[1]) * k)
		bright.Pix[i+2] = uint8(float32(p[2]) * k)
		bright.Pix[i+3] = 0xff
	}
	if !lit {
		return
	}

	radius := math.Max(1, float64(b.radius*float32(frame.Height)))
	glow := blur.Gaussian(bright, radius)
	for i := 0; i < len(frame.Image.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float32(frame.Image.Pix[i+c]) + float32(glow.Pix[i+c])*b.intensity
			frame.Image.Pix[i+c] = uint8(min32(v, 255))
		}
	}
}

// ambientOcclusion darkens pixels whose screen-space neighbours are closer to the camera.
type ambientOcclusion struct {
	samples, rings                     int
	radius, intensity                  float32
	distanceThreshold, distanceFalloff float32
	rangeThreshold, rangeFalloff       float32
	luminanceInfluence                 float32
	noise                              *perlin.Perlin
}

func newAmbientOcclusion(p PostProcessing) ambientOcclusion {
	return ambientOcclusion{
		samples:            p.SSAOSamples,
		rings:              p.SSAORings,
		radius:             p.SSAORadius,
		intensity:          p.SSAOIntensity,
		distanceThreshold:  p.SSAODistanceThreshold,
		distanceFalloff:    p.SSAODistanceFalloff,
		rangeThreshold:     p.SSAORangeThreshold,
		rangeFalloff:       p.SSAORangeFalloff,
		luminanceInfluence: p.SSAOLuminanceInfluence,
		noise:              perlin.NewPerlin(2, 2, 3, 1),
	}
}

func (ambientOcclusion) Name() string { return "ssao" }

func (a ambientOcclusion) Apply(frame *Frame) {
	if a.samples <= 0 {
		return
	}
	w, h := frame.Width, frame.Height
	reach := a.radius * float32(minInt(w, h))
	strength := clamp01(a.intensity / float32(a.samples))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			depth := frame.LinearDepth[y*w+x]
			if depth >= 1 {
				continue
			}

			jitter := a.noise.Noise2D(float64(x)*0.37, float64(y)*0.37) * math.Pi
			var occlusion float32
			for s := 0; s < a.samples; s++ {
				t := float64(s+1) / float64(a.samples)
				angle := t*float64(a.rings)*2*math.Pi + jitter
				dist := float64(reach) * t
				sx := x + int(math.Cos(angle)*dist)
				sy := y + int(math.Sin(angle)*dist)
				if sx < 0 || sy < 0 || sx >= w || sy >= h {
					continue
				}
				delta := depth - frame.LinearDepth[sy*w+sx]
				if delta <= 0 {
					continue
				}
				occlusion += 1 - smoothstep(a.rangeThreshold, a.rangeThreshold+a.rangeFalloff, delta)
			}
			occlusion /= float32(a.samples)
			occlusion *= 1 - smoothstep(a.distanceThreshold, a.distanceThreshold+a.distanceFalloff, depth)

			i := frame.Image.PixOffset(x, y)
			p := frame.Image.Pix[i : i+3 : i+3]
			shade := 1 - occlusion*strength
			shade = shade + (1-shade)*luma(p[0], p[1], p[2])*a.luminanceInfluence
			for c := range p {
				p[c] = uint8(float32(p[c]) * shade)
			}
		}
	}
}

// depthOfField blends towards a blurred frame as depth leaves the focus range.
type depthOfField struct {
	focusDistance, focalLength, bokehScale float32
}

func (depthOfField) Name() string { return "dof" }

func (d depthOfField) Apply(frame *Frame) {
	if d.bokehScale <= 0 || d.focalLength <= 0 {
		return
	}
	blurred := blur.Gaussian(frame.Image, float64(d.bokehScale))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			depth := frame.LinearDepth[y*frame.Width+x]
			coc := clamp01(float32(math.Abs(float64(depth-d.focusDistance))) / d.focalLength)
			if coc == 0 {
				continue
			}
			i := frame.Image.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sharp := float32(frame.Image.Pix[i+c])
				frame.Image.Pix[i+c] = uint8(sharp + (float32(blurred.Pix[i+c])-sharp)*coc)
			}
		}
	}
}

// vignette darkens towards the corners.
type vignette struct {
	offset, darkness float32
	eskil            bool
}

func (vignette) Name() string { return "vignette" }

func (v vignette) Apply(frame *Frame) {
	target := clamp01(1 - v.darkness)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			u := (float32(x)+0.5)/float32(frame.Width) - 0.5
			t := (float32(y)+0.5)/float32(frame.Height) - 0.5
			i := frame.Image.PixOffset(x, y)

			if v.eskil {
				k := smoothstep(0.8, v.offset*0.799, float32(math.Sqrt(float64(u*u+t*t)))*(v.darkness+v.offset))
				for c := 0; c < 3; c++ {
					frame.Image.Pix[i+c] = uint8(float32(frame.Image.Pix[i+c]) * k)
				}
				continue
			}

			u *= v.offset
			t *= v.offset
			mix := u*u + t*t
			for c := 0; c < 3; c++ {
				col := float32(frame.Image.Pix[i+c]) / 255
				frame.Image.Pix[i+c] = uint8((col + (target-col)*mix) * 255)
			}
		}
	}
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func lumaAt(img *image.RGBA, x, y int) float32 {
	i := img.PixOffset(x, y)
	return luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
}

// luma returns Rec. 709 luminance in [0,1].
func luma(r, g, b uint8) float32 {
	return (0.2126*float32(r) + 0.7152*float32(g) + 0.0722*float32(b)) / 255
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
