package renderer

import (
	"testing"
)

func TestDefaultPostProcessing(t *testing.T) {
	p := DefaultPostProcessing()

	if p.ToneMapping != ACESFilmicToneMapping {
		t.Errorf("Expected ACES filmic tone mapping, got %v", p.ToneMapping)
	}
	if p.Multisampling != 8 {
		t.Errorf("Expected multisampling 8, got %d", p.Multisampling)
	}
	if p.BloomIntensity != 1.0 || p.BloomThreshold != 0.9 || p.BloomSmoothing != 0.025 {
		t.Errorf("Unexpected bloom parameters: %v %v %v", p.BloomIntensity, p.BloomThreshold, p.BloomSmoothing)
	}
	if p.SSAOSamples != 31 || p.SSAORings != 4 || p.SSAOIntensity != 20 {
		t.Errorf("Unexpected SSAO parameters: %d %d %v", p.SSAOSamples, p.SSAORings, p.SSAOIntensity)
	}
	if p.SSAODistanceThreshold != 1 || p.SSAODistanceFalloff != 0.1 {
		t.Errorf("Unexpected SSAO distance: %v %v", p.SSAODistanceThreshold, p.SSAODistanceFalloff)
	}
	if p.SSAORangeThreshold != 0.05 || p.SSAORangeFalloff != 0.01 || p.SSAOLuminanceInfluence != 0.9 {
		t.Errorf("Unexpected SSAO range: %v %v %v", p.SSAORangeThreshold, p.SSAORangeFalloff, p.SSAOLuminanceInfluence)
	}
	if p.FocusDistance != 0 || p.FocalLength != 0.02 || p.BokehScale != 2 {
		t.Errorf("Unexpected depth of field: %v %v %v", p.FocusDistance, p.FocalLength, p.BokehScale)
	}
	if p.VignetteOffset != 0.5 || p.VignetteDarkness != 0.5 || p.VignetteEskil {
		t.Errorf("Unexpected vignette: %v %v %v", p.VignetteOffset, p.VignetteDarkness, p.VignetteEskil)
	}
}

func TestPostProcessingStageOrder(t *testing.T) {
	stages := DefaultPostProcessing().Stages()

	expected := []string{"smaa", "bloom", "ssao", "dof", "vignette"}
	if len(stages) != len(expected) {
		t.Fatalf("Expected %d stages, got %d", len(expected), len(stages))
	}
	for i, stage := range stages {
		if stage.Name() != expected[i] {
			t.Errorf("Stage %d: expected %s, got %s", i, expected[i], stage.Name())
		}
	}
}

func TestPostProcessingDisabledStages(t *testing.T) {
	p := DefaultPostProcessing()
	p.EnableBloom = false
	p.EnableDepthOfField = false

	var names []string
	for _, stage := range p.Stages() {
		names = append(names, stage.Name())
	}
	if len(names) != 3 || names[0] != "smaa" || names[1] != "ssao" || names[2] != "vignette" {
		t.Errorf("Expected [smaa ssao vignette], got %v", names)
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	frame := &Frame{}
	frame.resize(9, 9)
	frame.Image = solidImage(9, 9, 200)

	vignette{offset: 1, darkness: 1}.Apply(frame)

	center := frame.Image.Pix[frame.Image.PixOffset(4, 4)]
	corner := frame.Image.Pix[frame.Image.PixOffset(0, 0)]
	if corner >= center {
		t.Errorf("Expected corner (%d) darker than center (%d)", corner, center)
	}
}

func TestBloomSkipsDarkFrames(t *testing.T) {
	frame := &Frame{}
	frame.resize(8, 8)
	frame.Image = solidImage(8, 8, 40)

	bloom{intensity: 1, threshold: 0.9, smoothing: 0.025, radius: 0.1}.Apply(frame)

	for i := 0; i < len(frame.Image.Pix); i += 4 {
		if frame.Image.Pix[i] != 40 {
			t.Fatalf("Dark frame should be untouched, pixel %d is %d", i/4, frame.Image.Pix[i])
		}
	}
}
