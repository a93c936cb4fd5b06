// Package scene turns the light state and the loaded model into the list of
// objects drawn each frame.
package scene

import (
	"GopherView/internal/lighting"
	"GopherView/internal/loader"
	"GopherView/internal/renderer"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	ShadowMapSize = 2048
	GroundSize    = 100
	GroundHeight  = -2
	GroundOpacity = 0.4
)

// Compose builds the render list for one frame. It has no side effects; the
// asset's root node is referenced, not copied.
func Compose(state lighting.State, asset *loader.Asset) renderer.RenderList {
	list := renderer.RenderList{
		Directional: renderer.DirectionalLight{
			Intensity:     state.Directional.Intensity,
			Color:         state.Directional.Color,
			Position:      state.Directional.Position,
			CastShadow:    true,
			ShadowMapSize: ShadowMapSize,
		},
		Ambient: renderer.AmbientLight{
			Intensity: state.Ambient.Intensity,
			Color:     state.Ambient.Color,
		},
		Ground: Ground(),
	}
	if asset != nil {
		list.Model = asset.Root
	}
	return list
}

// Ground is the horizontal shadow catcher below the model.
func Ground() renderer.GroundPlane {
	return renderer.GroundPlane{
		Size:          GroundSize,
		Position:      mgl32.Vec3{0, GroundHeight, 0},
		Rotation:      mgl32.Vec3{-math.Pi / 2, 0, 0},
		ReceiveShadow: true,
		Transparent:   true,
		Opacity:       GroundOpacity,
	}
}
