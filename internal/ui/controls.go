package ui

import (
	"GopherView/internal/lighting"
)

type ControlKind int

const (
	NumberControl ControlKind = iota
	ColorControl
)

// Control binds one light field to a widget. Number controls use the Number
// accessors and color controls the Color ones.
type Control struct {
	Group string
	Label string
	Kind  ControlKind

	Min, Max, Step float64

	Number    func() float64
	SetNumber func(float64)
	Color     func() lighting.Color
	SetColor  func(lighting.Color)
}

const (
	DirectionalGroup = "Directional Light"
	AmbientGroup     = "Ambient Light"
)

// LightControls returns a control for every mutable field of the store, in
// panel order. Every edit is written through immediately.
func LightControls(store *lighting.Store) []Control {
	intensity := func(label, group string, get func() float32, set func(float32)) Control {
		return Control{
			Group: group, Label: label, Kind: NumberControl,
			Min: lighting.MinIntensity, Max: lighting.MaxIntensity, Step: lighting.IntensityStep,
			Number:    func() float64 { return float64(get()) },
			SetNumber: func(v float64) { set(float32(v)) },
		}
	}
	axis := func(label string, i int) Control {
		return Control{
			Group: DirectionalGroup, Label: label, Kind: NumberControl,
			Min: lighting.MinPosition, Max: lighting.MaxPosition, Step: lighting.PositionStep,
			Number: func() float64 { return float64(store.Directional().Position[i]) },
			SetNumber: func(v float64) {
				p := store.Directional().Position
				p[i] = float32(v)
				store.SetDirectionalLightPosition(p)
			},
		}
	}
	color := func(label, group string, get func() lighting.Color, set func(lighting.Color)) Control {
		return Control{Group: group, Label: label, Kind: ColorControl, Color: get, SetColor: set}
	}

	return []Control{
		intensity("Intensity", DirectionalGroup,
			func() float32 { return store.Directional().Intensity },
			store.SetDirectionalLightIntensity),
		color("Color", DirectionalGroup,
			func() lighting.Color { return store.Directional().Color },
			store.SetDirectionalLightColor),
		axis("Position X", 0),
		axis("Position Y", 1),
		axis("Position Z", 2),
		intensity("Intensity", AmbientGroup,
			func() float32 { return store.Ambient().Intensity },
			store.SetAmbientLightIntensity),
		color("Color", AmbientGroup,
			func() lighting.Color { return store.Ambient().Color },
			store.SetAmbientLightColor),
	}
}
