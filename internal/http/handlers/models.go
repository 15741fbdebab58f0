package handlers

import (
	"net/http"

	"kreator/internal/payload"
)

type modelDTO struct {
	Label string `json:"label"`
	Mode  string `json:"mode"`
	// Fast variants run with pinned step count and guidance; the surface
	// must hide the quality sliders for them because an out-of-range step
	// count is a provider-side hard failure.
	Fast           bool `json:"fast"`
	SlidersLocked  bool `json:"sliders_locked"`
	NeedsReference bool `json:"needs_reference"`
}

type modelsResponse struct {
	Models        []modelDTO `json:"models"`
	AspectRatios  []string   `json:"aspect_ratios"`
	DefaultAspect string     `json:"default_aspect"`
	MaxUploads    int        `json:"max_uploads"`
}

// Models exposes the static model catalog and form options to the surface.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	models := make([]modelDTO, 0, len(payload.Catalog))
	for _, desc := range payload.Catalog {
		models = append(models, modelDTO{
			Label:          desc.Label,
			Mode:           desc.Mode.String(),
			Fast:           desc.Fast(),
			SlidersLocked:  desc.Fast(),
			NeedsReference: desc.Mode != payload.TextToImage,
		})
	}
	a.json(w, http.StatusOK, modelsResponse{
		Models:        models,
		AspectRatios:  payload.AspectRatios,
		DefaultAspect: payload.DefaultAspectRatio,
		MaxUploads:    a.Config.MaxUploadImages,
	})
}
