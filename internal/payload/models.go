package payload

import "strings"

// Mode is the closed set of generation workflows. The builder switches on it
// exhaustively; there is no default branch for an unknown mode to fall into.
type Mode int

const (
	TextToImage Mode = iota
	ImageEdit
	MultiImageEdit
)

func (m Mode) String() string {
	switch m {
	case TextToImage:
		return "text_to_image"
	case ImageEdit:
		return "image_edit"
	case MultiImageEdit:
		return "multi_image_edit"
	}
	return "unknown"
}

// Descriptor maps a user-facing label to the provider model and its workflow.
type Descriptor struct {
	Label   string
	ModelID string
	Mode    Mode
}

// Fast reports whether the model is a speed-optimized variant. Those reject
// the standard inference step range, so the builder pins steps and guidance
// and the interface must suppress the quality sliders entirely.
func (d Descriptor) Fast() bool {
	id := strings.ToLower(d.ModelID)
	for _, marker := range []string{"schnell", "lightning", "turbo", "fast"} {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

// Catalog is the static model table offered by the tool. Read-only at
// runtime; the order is the order presented to users.
var Catalog = []Descriptor{
	{Label: "Flux Dev", ModelID: "fal-ai/flux/dev", Mode: TextToImage},
	{Label: "Flux Schnell", ModelID: "fal-ai/flux/schnell", Mode: TextToImage},
	{Label: "Flux Kontext (edycja)", ModelID: "fal-ai/flux-pro/kontext", Mode: ImageEdit},
	{Label: "Maskotka Maxi", ModelID: "fal-ai/fast-lightning-sdxl", Mode: MultiImageEdit},
}

// Lookup resolves a catalog entry by its user-facing label.
func Lookup(label string) (Descriptor, bool) {
	for _, d := range Catalog {
		if d.Label == label {
			return d, true
		}
	}
	return Descriptor{}, false
}

// DefaultAspectRatio matches the original tool's preselected format.
const DefaultAspectRatio = "16:9"

// aspectToImageSize maps UI aspect-ratio labels onto the provider's
// pixel-size tokens used by text-to-image models.
var aspectToImageSize = map[string]string{
	"1:1":  "square_hd",
	"3:4":  "portrait_4_3",
	"9:16": "portrait_16_9",
	"4:3":  "landscape_4_3",
	"16:9": "landscape_16_9",
}

// AspectRatios lists the selectable aspect-ratio labels in display order.
var AspectRatios = []string{"1:1", "3:4", "9:16", "4:3", "16:9"}

// ImageSizeFor maps an aspect-ratio label to the provider size token,
// falling back to the default format for unrecognized input.
func ImageSizeFor(aspect string) string {
	if token, ok := aspectToImageSize[strings.TrimSpace(aspect)]; ok {
		return token
	}
	return aspectToImageSize[DefaultAspectRatio]
}
