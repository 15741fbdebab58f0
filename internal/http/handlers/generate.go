package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"kreator/internal/domain"
	"kreator/internal/payload"
	"kreator/internal/providers/fal"
	"kreator/internal/refimg"
)

const (
	maxMultipartMemory = 32 << 20
	maxUploadBytes     = 20 << 20

	sourceUpload = "upload"
	sourcePreset = "preset"
)

type generateResponse struct {
	RequestID         string   `json:"request_id"`
	Model             string   `json:"model"`
	Images            []string `json:"images"`
	RemainingQuota    int      `json:"remaining_quota"`
	DroppedReferences int      `json:"dropped_references,omitempty"`
	SkippedFiles      []string `json:"skipped_files,omitempty"`
}

// ImagesGenerate runs the full pipeline for one button press: quota check,
// reference resolution, payload build, provider invocation, quota consumption
// on confirmed success.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	sess := a.Sessions.Current(r)
	if !sess.Authenticated {
		a.error(w, r, http.StatusUnauthorized, codeAuthFailure, "")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		a.error(w, r, http.StatusBadRequest, codeValidation, "invalid multipart form")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.error(w, r, http.StatusBadRequest, codeValidation, "prompt is required")
		return
	}

	desc, ok := payload.Lookup(r.FormValue("model"))
	if !ok {
		a.error(w, r, http.StatusBadRequest, codeValidation, "unknown model")
		return
	}

	settings := payload.Settings{
		AspectRatio:  r.FormValue("aspect_ratio"),
		StyleOverlay: parseBool(r.FormValue("style")),
	}
	if n, err := strconv.Atoi(r.FormValue("num_images")); err == nil && n > 0 {
		if n > 4 {
			n = 4
		}
		settings.NumImages = n
	}
	// Slider values are accepted only for non-fast models; the builder pins
	// the fast constants regardless, but the surface should not offer them.
	if !desc.Fast() {
		if steps, err := strconv.Atoi(r.FormValue("steps")); err == nil && steps > 0 {
			settings.Steps = steps
		}
		if guidance, err := strconv.ParseFloat(r.FormValue("guidance_scale"), 64); err == nil && guidance > 0 {
			settings.GuidanceScale = guidance
		}
	}

	// Quota is checked up front so a denied request never reaches the
	// provider, but only consumed after a confirmed success below.
	sess, decision := a.Quota.Check(sess)
	a.Sessions.Update(sess)
	if !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(decision.WaitSeconds))
		a.error(w, r, http.StatusTooManyRequests, codeQuotaExceeded,
			fmt.Sprintf("retry in %d seconds", decision.WaitSeconds))
		return
	}

	refs, refErrCode, refErr := a.resolveReferences(r, desc.Mode)
	if refErr != nil {
		status := http.StatusBadRequest
		if refErrCode == codeConfiguration {
			status = http.StatusInternalServerError
		}
		a.error(w, r, status, refErrCode, refErr.Error())
		return
	}

	args, err := payload.Build(desc, prompt, settings, refs.References)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	requestID := uuid.NewString()
	ctx, cancel := context.WithTimeout(r.Context(), a.Config.GenerateTimeout)
	defer cancel()

	a.Logger.Info().
		Str("request_id", requestID).
		Str("model", desc.ModelID).
		Str("mode", desc.Mode.String()).
		Int("references", len(refs.References)).
		Msg("submitting generation")

	urls, err := a.Invoker.Generate(ctx, desc.ModelID, args)
	if err != nil {
		a.renderGenerateError(w, r, requestID, err)
		return
	}

	sess = a.Quota.RecordSuccess(sess)
	a.Sessions.Update(sess)

	a.json(w, http.StatusOK, generateResponse{
		RequestID:         requestID,
		Model:             desc.ModelID,
		Images:            urls,
		RemainingQuota:    a.Quota.Remaining(sess),
		DroppedReferences: refs.Dropped,
		SkippedFiles:      refs.Skipped,
	})
}

// resolveReferences picks the image source for the request and normalizes it.
func (a *App) resolveReferences(r *http.Request, mode payload.Mode) (refimg.Result, string, error) {
	required := mode != payload.TextToImage

	if r.FormValue("source") == sourcePreset {
		res, err := a.Resolver.ResolvePresets()
		if err != nil {
			// Missing presets are an operator problem, not a user one.
			return res, codeConfiguration, err
		}
		return res, "", nil
	}

	uploads, err := readUploads(r.MultipartForm)
	if err != nil {
		return refimg.Result{}, codeValidation, err
	}
	res, err := a.Resolver.ResolveUploads(uploads, required)
	if err != nil {
		return res, codeValidation, err
	}
	return res, "", nil
}

func readUploads(form *multipart.Form) ([]refimg.Upload, error) {
	if form == nil {
		return nil, nil
	}
	var uploads []refimg.Upload
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		uploads = append(uploads, refimg.Upload{Name: header.Filename, Data: data})
	}
	return uploads, nil
}

func (a *App) renderGenerateError(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	logEvent := a.Logger.Error().Err(err).Str("request_id", requestID)

	var empty *fal.EmptyResultError
	switch {
	case errors.As(err, &empty):
		logEvent.Msg("generation returned no images")
		// The raw provider response is surfaced for diagnosis; an empty
		// result usually means the safety filter rejected the prompt.
		a.error(w, r, http.StatusBadGateway, codeEmptyResult, truncate(string(empty.Raw), 1024))
	case errors.Is(err, domain.ErrConfiguration):
		logEvent.Msg("generation misconfigured")
		a.error(w, r, http.StatusInternalServerError, codeConfiguration, "")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMissingRequiredImage):
		logEvent.Msg("generation rejected")
		a.error(w, r, http.StatusBadRequest, codeValidation, err.Error())
	default:
		logEvent.Msg("generation failed")
		a.error(w, r, http.StatusBadGateway, codeProviderError, err.Error())
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
