package ui

import (
	"GopherView/internal/lighting"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ControlPanel shows one widget per light control.
type ControlPanel struct {
	controls []Control
	window   fyne.Window

	sliders  []*widget.Slider
	values   []*widget.Label
	swatches []*canvas.Rectangle

	status  *widget.Label
	content *fyne.Container
}

// NewControlPanel builds the panel. Color pickers open over window.
func NewControlPanel(store *lighting.Store, window fyne.Window) *ControlPanel {
	p := &ControlPanel{
		controls: LightControls(store),
		window:   window,
		status:   widget.NewLabel("No model loaded"),
	}
	p.status.Wrapping = fyne.TextWrapWord
	p.sliders = make([]*widget.Slider, len(p.controls))
	p.values = make([]*widget.Label, len(p.controls))
	p.swatches = make([]*canvas.Rectangle, len(p.controls))

	rows := container.NewVBox()
	group := ""
	for i, c := range p.controls {
		if c.Group != group {
			group = c.Group
			rows.Add(widget.NewLabelWithStyle(group, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		}
		switch c.Kind {
		case NumberControl:
			rows.Add(p.numberRow(i))
		case ColorControl:
			rows.Add(p.colorRow(i))
		}
	}
	rows.Add(widget.NewSeparator())
	rows.Add(p.status)
	p.content = rows
	return p
}

func (p *ControlPanel) numberRow(i int) fyne.CanvasObject {
	c := p.controls[i]
	value := widget.NewLabel(formatNumber(c.Number()))
	slider := widget.NewSlider(c.Min, c.Max)
	slider.Step = c.Step
	slider.Value = c.Number()
	slider.OnChanged = func(v float64) {
		c.SetNumber(v)
		value.SetText(formatNumber(v))
	}
	p.sliders[i] = slider
	p.values[i] = value
	return container.NewBorder(nil, nil, widget.NewLabel(c.Label), value, slider)
}

func (p *ControlPanel) colorRow(i int) fyne.CanvasObject {
	c := p.controls[i]
	current := c.Color()
	swatch := canvas.NewRectangle(current)
	swatch.SetMinSize(fyne.NewSize(48, 24))
	value := widget.NewLabel(current.Hex())
	p.swatches[i] = swatch
	p.values[i] = value

	pick := widget.NewButton("", func() {
		picker := dialog.NewColorPicker(c.Label, "Pick a light color", func(picked color.Color) {
			p.applyColor(i, picked)
		}, p.window)
		picker.Advanced = true
		picker.SetColor(c.Color())
		picker.Show()
	})
	return container.NewBorder(nil, nil, widget.NewLabel(c.Label), value,
		container.NewStack(pick, container.NewPadded(swatch)))
}

// applyColor writes a picked color through to the store. Alpha is dropped.
func (p *ControlPanel) applyColor(i int, picked color.Color) {
	c := lighting.FromColor(picked)
	p.controls[i].SetColor(c)
	p.swatches[i].FillColor = c
	p.swatches[i].Refresh()
	p.values[i].SetText(c.Hex())
}

// Refresh pulls the store's values back into the widgets.
func (p *ControlPanel) Refresh() {
	for i, c := range p.controls {
		switch c.Kind {
		case NumberControl:
			p.sliders[i].Value = c.Number()
			p.sliders[i].Refresh()
			p.values[i].SetText(formatNumber(c.Number()))
		case ColorControl:
			col := c.Color()
			p.swatches[i].FillColor = col
			p.swatches[i].Refresh()
			p.values[i].SetText(col.Hex())
		}
	}
}

// SetStatus updates the model status line.
func (p *ControlPanel) SetStatus(text string) {
	if p.status.Text != text {
		p.status.SetText(text)
	}
}

func (p *ControlPanel) Content() fyne.CanvasObject {
	return p.content
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
