package transform

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Size is a resize target in pixels.
type Size struct {
	Width  int
	Height int
}

// ChainConfig fixes every step parameter for one run. The default and stress
// variants differ only in parameter values, never in behavior.
type ChainConfig struct {
	Width        int
	Height       int
	ResizeFilter imaging.ResampleFilter

	BlurSigma     float64
	SharpenSigma  float64
	ContrastPct   float64
	BrightnessPct float64

	// Iterations repeats each filter step; values above 1 are only used by
	// the stress profile.
	Iterations int

	// StressSizes, when non-empty, cycles the image through intermediate
	// resize dimensions before settling on Width×Height.
	StressSizes []Size

	JPEGQuality int

	// WatermarkText enables the optional trailing watermark step when
	// non-empty. WatermarkFontPath names a TTF file; when empty the step
	// uses a built-in bitmap face.
	WatermarkText     string
	WatermarkFontPath string
}

// DefaultProfile returns the canonical chain parameters: 800×600 Lanczos
// resize, blur sigma 2, sharpen sigma 1, contrast +20%, brightness +10%,
// JPEG quality 85.
func DefaultProfile() ChainConfig {
	return ChainConfig{
		Width:         800,
		Height:        600,
		ResizeFilter:  imaging.Lanczos,
		BlurSigma:     2.0,
		SharpenSigma:  1.0,
		ContrastPct:   20,
		BrightnessPct: 10,
		Iterations:    1,
		JPEGQuality:   85,
	}
}

// StressProfile returns a deliberately heavy variant of the default profile:
// each filter step repeats three times, the blur is wider, and the image is
// bounced through several intermediate resolutions before the final resize.
func StressProfile() ChainConfig {
	cfg := DefaultProfile()
	cfg.Iterations = 3
	cfg.BlurSigma = 5.0
	cfg.StressSizes = []Size{
		{800, 600},
		{1024, 768},
		{640, 480},
		{1280, 720},
	}

	return cfg
}

// ProfileByName maps a profile name from a batch request to its chain
// configuration. An empty name selects the default profile.
func ProfileByName(name string) (ChainConfig, error) {
	switch name {
	case "", "default":
		return DefaultProfile(), nil
	case "stress":
		return StressProfile(), nil
	default:
		return ChainConfig{}, fmt.Errorf("unknown transform profile: %s", name)
	}
}
