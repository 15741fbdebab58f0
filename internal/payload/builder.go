package payload

import (
	"fmt"
	"strings"

	"kreator/internal/domain"
	"kreator/internal/refimg"
)

const (
	defaultSteps    = 28
	defaultGuidance = 3.5

	// Speed-optimized variants reject the standard step range; these are
	// provider-imposed constants, not tunables.
	fastSteps    = 4
	fastGuidance = 0

	// Hidden prompt suffix applied when the mascot style toggle is on.
	styleSuffix = " W firmowym stylu maskotki Maxi: render 3D, miekkie studyjne swiatlo, zywe kolory marki."
)

// Settings carries the user-adjustable knobs from the form surface. Zero
// values mean "not set" and fall back to the model defaults.
type Settings struct {
	AspectRatio   string
	NumImages     int
	Steps         int
	GuidanceScale float64
	StyleOverlay  bool
}

// Arguments is the provider-specific argument object submitted with a
// generation request. Field presence follows the provider conventions:
// text-to-image carries a pixel-size token, edits carry the reference list,
// the fast multi-edit carries an explicit aspect-ratio token instead.
type Arguments struct {
	Prompt              string   `json:"prompt"`
	ImageSize           string   `json:"image_size,omitempty"`
	AspectRatio         string   `json:"aspect_ratio,omitempty"`
	NumInferenceSteps   int      `json:"num_inference_steps"`
	GuidanceScale       float64  `json:"guidance_scale"`
	NumImages           int      `json:"num_images,omitempty"`
	ImageURL            string   `json:"image_url,omitempty"`
	ImageURLs           []string `json:"image_urls,omitempty"`
	EnableSafetyChecker bool     `json:"enable_safety_checker"`
}

// Build maps a (model, prompt, settings, references) tuple onto the exact
// argument set the provider expects for the model's workflow. It is a pure
// function: identical inputs always produce identical output.
func Build(desc Descriptor, prompt string, settings Settings, refs []refimg.Reference) (Arguments, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Arguments{}, fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}

	args := Arguments{
		Prompt:              prompt,
		NumInferenceSteps:   defaultSteps,
		GuidanceScale:       defaultGuidance,
		EnableSafetyChecker: true,
	}
	if settings.Steps > 0 {
		args.NumInferenceSteps = settings.Steps
	}
	if settings.GuidanceScale > 0 {
		args.GuidanceScale = settings.GuidanceScale
	}
	if settings.NumImages > 1 {
		args.NumImages = settings.NumImages
	}

	switch desc.Mode {
	case TextToImage:
		args.ImageSize = ImageSizeFor(settings.AspectRatio)
		// A single reference rides along under the legacy single-image field
		// as a loose visual reference, not a hard edit source.
		if len(refs) == 1 {
			args.ImageURL = refs[0].DataURI
		}

	case ImageEdit:
		if len(refs) == 0 {
			return Arguments{}, domain.ErrMissingRequiredImage
		}
		// The provider infers output size from the source image.
		args.ImageURLs = referenceURLs(refs)

	case MultiImageEdit:
		if len(refs) == 0 {
			return Arguments{}, domain.ErrMissingRequiredImage
		}
		aspect := strings.TrimSpace(settings.AspectRatio)
		if aspect == "" {
			aspect = DefaultAspectRatio
		}
		// Explicit ratio token, distinct from the pixel-size token above.
		args.AspectRatio = aspect
		args.ImageURLs = referenceURLs(refs)
		if settings.StyleOverlay {
			args.Prompt = prompt + styleSuffix
		}

	default:
		return Arguments{}, fmt.Errorf("%w: unknown generation mode %d", domain.ErrValidation, desc.Mode)
	}

	// Fast variants hard-reject the standard step range, so the pinned
	// constants win over any slider value.
	if desc.Fast() {
		args.NumInferenceSteps = fastSteps
		args.GuidanceScale = fastGuidance
	}

	return args, nil
}

func referenceURLs(refs []refimg.Reference) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.DataURI)
	}
	return urls
}
