package lighting

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque sRGB color with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

var White = Color{255, 255, 255}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b}, nil
}

// FromColor converts any color.Color, discarding alpha.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

func (c Color) Hex() string {
	return c.colorful().Hex()
}

// RGBA implements color.Color. The color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// Linear returns the color in linear RGB, the space lighting is computed in.
func (c Color) Linear() mgl32.Vec3 {
	r, g, b := c.colorful().LinearRgb()
	return mgl32.Vec3{float32(r), float32(g), float32(b)}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
