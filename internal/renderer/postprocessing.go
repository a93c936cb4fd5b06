package renderer

type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	ACESFilmicToneMapping
)

// PostProcessing is the fixed effect chain run after every frame.
// The parameters are constants of the viewer, not user settings.
type PostProcessing struct {
	// Output
	ToneMapping ToneMapping `json:"toneMapping"`
	Exposure    float32     `json:"exposure"`
	Environment string      `json:"environment"` // Background preset

	// Anti-Aliasing
	EnableSMAA    bool    `json:"enableSMAA"`
	Multisampling int     `json:"multisampling"` // Hardware MSAA samples; GPU backends only
	SMAAThreshold float32 `json:"smaaThreshold"`

	// Bloom and HDR Effects
	EnableBloom    bool    `json:"enableBloom"`
	BloomIntensity float32 `json:"bloomIntensity"`
	BloomThreshold float32 `json:"bloomThreshold"` // Luminance in [0,1]
	BloomSmoothing float32 `json:"bloomSmoothing"`
	BloomRadius    float32 `json:"bloomRadius"` // Fraction of the frame height

	// Screen Space Ambient Occlusion (SSAO)
	EnableSSAO             bool    `json:"enableSSAO"`
	SSAOSamples            int     `json:"ssaoSamples"`
	SSAORings              int     `json:"ssaoRings"`
	SSAORadius             float32 `json:"ssaoRadius"` // Fraction of the smaller frame side
	SSAOIntensity          float32 `json:"ssaoIntensity"`
	SSAODistanceThreshold  float32 `json:"ssaoDistanceThreshold"`
	SSAODistanceFalloff    float32 `json:"ssaoDistanceFalloff"`
	SSAORangeThreshold     float32 `json:"ssaoRangeThreshold"`
	SSAORangeFalloff       float32 `json:"ssaoRangeFalloff"`
	SSAOLuminanceInfluence float32 `json:"ssaoLuminanceInfluence"`

	// Depth of Field
	EnableDepthOfField bool    `json:"enableDepthOfField"`
	FocusDistance      float32 `json:"focusDistance"` // Normalized depth
	FocalLength        float32 `json:"focalLength"`   // Normalized depth range kept sharp
	BokehScale         float32 `json:"bokehScale"`

	// Vignette
	EnableVignette   bool    `json:"enableVignette"`
	VignetteOffset   float32 `json:"vignetteOffset"`
	VignetteDarkness float32 `json:"vignetteDarkness"`
	VignetteEskil    bool    `json:"vignetteEskil"`
}

// DefaultPostProcessing returns the viewer's effect chain.
func DefaultPostProcessing() PostProcessing {
	return PostProcessing{
		ToneMapping: ACESFilmicToneMapping,
		Exposure:    1.0,
		Environment: "sunset",

		EnableSMAA:    true,
		Multisampling: 8,
		SMAAThreshold: 0.1,

		EnableBloom:    true,
		BloomIntensity: 1.0,
		BloomThreshold: 0.9,
		BloomSmoothing: 0.025,
		BloomRadius:    0.01,

		EnableSSAO:             true,
		SSAOSamples:            31,
		SSAORings:              4,
		SSAORadius:             0.1,
		SSAOIntensity:          20,
		SSAODistanceThreshold:  1,
		SSAODistanceFalloff:    0.1,
		SSAORangeThreshold:     0.05,
		SSAORangeFalloff:       0.01,
		SSAOLuminanceInfluence: 0.9,

		EnableDepthOfField: true,
		FocusDistance:      0,
		FocalLength:        0.02,
		BokehScale:         2,

		EnableVignette:   true,
		VignetteOffset:   0.5,
		VignetteDarkness: 0.5,
		VignetteEskil:    false,
	}
}

// Stages returns the enabled effects in the order they run.
func (p PostProcessing) Stages() []Stage {
	var stages []Stage
	if p.EnableSMAA {
		stages = append(stages, edgeAntialias{threshold: p.SMAAThreshold})
	}
	if p.EnableBloom {
		stages = append(stages, bloom{
			intensity: p.BloomIntensity,
			threshold: p.BloomThreshold,
			smoothing: p.BloomSmoothing,
			radius:    p.BloomRadius,
		})
	}
	if p.EnableSSAO {
		stages = append(stages, newAmbientOcclusion(p))
	}
	if p.EnableDepthOfField {
		stages = append(stages, depthOfField{
			focusDistance: p.FocusDistance,
			focalLength:   p.FocalLength,
			bokehScale:    p.BokehScale,
		})
	}
	if p.EnableVignette {
		stages = append(stages, vignette{
			offset:   p.VignetteOffset,
			darkness: p.VignetteDarkness,
			eskil:    p.VignetteEskil,
		})
	}
	return stages
}
