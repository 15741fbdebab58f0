package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"kreator/internal/domain"
	"kreator/internal/payload"
	"kreator/internal/providers/fal"
)

type fakeInvoker struct {
	lastModel string
	lastArgs  payload.Arguments
	calls     int
	urls      []string
	err       error
}

func (f *fakeInvoker) Generate(ctx context.Context, modelID string, args payload.Arguments) ([]string, error) {
	f.calls++
	f.lastModel = modelID
	f.lastArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.urls, nil
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files []formFile, cookies []*http.Cookie) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.name)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateTextToImage(t *testing.T) {
	invoker := &fakeInvoker{urls: []string{"https://cdn.example.com/out.jpg"}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{
		"prompt":       "a red bicycle",
		"model":        "Flux Dev",
		"aspect_ratio": "16:9",
	}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if invoker.lastModel != "fal-ai/flux/dev" {
		t.Fatalf("model = %q, want fal-ai/flux/dev", invoker.lastModel)
	}
	if invoker.lastArgs.Prompt != "a red bicycle" {
		t.Fatalf("prompt = %q", invoker.lastArgs.Prompt)
	}
	if invoker.lastArgs.ImageSize != "landscape_16_9" {
		t.Fatalf("image_size = %q, want landscape_16_9", invoker.lastArgs.ImageSize)
	}
	if invoker.lastArgs.NumInferenceSteps != 28 || invoker.lastArgs.GuidanceScale != 3.5 {
		t.Fatalf("steps/guidance = %d/%v, want 28/3.5",
			invoker.lastArgs.NumInferenceSteps, invoker.lastArgs.GuidanceScale)
	}
	if invoker.lastArgs.ImageURL != "" || len(invoker.lastArgs.ImageURLs) != 0 {
		t.Fatal("text-to-image without references must carry no image fields")
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Images) != 1 || resp.Images[0] != "https://cdn.example.com/out.jpg" {
		t.Fatalf("images = %v", resp.Images)
	}
	if resp.RemainingQuota != 4 {
		t.Fatalf("remaining quota = %d, want 4", resp.RemainingQuota)
	}
}

func TestGenerateFastVariantIgnoresSliders(t *testing.T) {
	invoker := &fakeInvoker{urls: []string{"https://cdn.example.com/out.jpg"}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{
		"prompt":         "szybki szkic",
		"model":          "Flux Schnell",
		"aspect_ratio":   "1:1",
		"steps":          "50",
		"guidance_scale": "9",
	}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if invoker.lastArgs.NumInferenceSteps != 4 || invoker.lastArgs.GuidanceScale != 0 {
		t.Fatalf("fast variant args = %d/%v, want 4/0",
			invoker.lastArgs.NumInferenceSteps, invoker.lastArgs.GuidanceScale)
	}
}

func TestGenerateUploadEdit(t *testing.T) {
	invoker := &fakeInvoker{urls: []string{"https://cdn.example.com/edited.jpg"}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	files := []formFile{
		{name: "a.png", data: pngBytes(t, 64, 64)},
		{name: "b.png", data: pngBytes(t, 64, 64)},
	}
	req := multipartRequest(t, map[string]string{
		"prompt": "zmien tlo na bialy cyklorame",
		"model":  "Flux Kontext (edycja)",
		"source": "upload",
	}, files, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(invoker.lastArgs.ImageURLs) != 2 {
		t.Fatalf("image_urls = %d, want 2", len(invoker.lastArgs.ImageURLs))
	}
	if invoker.lastArgs.ImageSize != "" {
		t.Fatalf("image_size must be omitted for edits, got %q", invoker.lastArgs.ImageSize)
	}
}

func TestGenerateEditWithoutImages(t *testing.T) {
	invoker := &fakeInvoker{}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{
		"prompt": "zmien tlo",
		"model":  "Flux Kontext (edycja)",
		"source": "upload",
	}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if invoker.calls != 0 {
		t.Fatal("provider must not be invoked without the required reference")
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != codeValidation {
		t.Fatalf("code = %q, want %q", envelope.Error.Code, codeValidation)
	}
}

func TestGenerateTruncatesExtraUploads(t *testing.T) {
	invoker := &fakeInvoker{urls: []string{"https://cdn.example.com/edited.jpg"}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	var files []formFile
	for i := 0; i < 7; i++ {
		files = append(files, formFile{name: fmt.Sprintf("ref-%d.png", i), data: pngBytes(t, 32, 32)})
	}
	req := multipartRequest(t, map[string]string{
		"prompt": "maskotka na targach",
		"model":  "Maskotka Maxi",
		"source": "upload",
	}, files, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(invoker.lastArgs.ImageURLs) != 6 {
		t.Fatalf("image_urls = %d, want 6", len(invoker.lastArgs.ImageURLs))
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DroppedReferences != 1 {
		t.Fatalf("dropped_references = %d, want 1", resp.DroppedReferences)
	}
}

func TestGeneratePresetSource(t *testing.T) {
	invoker := &fakeInvoker{urls: []string{"https://cdn.example.com/maxi.jpg"}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	for _, name := range []string{"maxi-1.png", "maxi-2.png"} {
		if err := os.WriteFile(filepath.Join(app.Config.PresetDir, name), pngBytes(t, 48, 48), 0o644); err != nil {
			t.Fatalf("write preset: %v", err)
		}
	}

	req := multipartRequest(t, map[string]string{
		"prompt":       "maskotka Maxi jedzie na hulajnodze",
		"model":        "Maskotka Maxi",
		"source":       "preset",
		"aspect_ratio": "16:9",
		"style":        "true",
	}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(invoker.lastArgs.ImageURLs) != 2 {
		t.Fatalf("image_urls = %d, want 2", len(invoker.lastArgs.ImageURLs))
	}
	if invoker.lastArgs.AspectRatio != "16:9" {
		t.Fatalf("aspect_ratio = %q, want 16:9", invoker.lastArgs.AspectRatio)
	}
	if invoker.lastArgs.Prompt == "maskotka Maxi jedzie na hulajnodze" {
		t.Fatal("style suffix should have been appended")
	}
}

func TestGeneratePresetSourceMissingDirectory(t *testing.T) {
	invoker := &fakeInvoker{}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{
		"prompt": "maskotka",
		"model":  "Maskotka Maxi",
		"source": "preset",
	}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != codeConfiguration {
		t.Fatalf("code = %q, want %q", envelope.Error.Code, codeConfiguration)
	}
}

func TestGenerateQuotaConsumedOnlyOnSuccess(t *testing.T) {
	invoker := &fakeInvoker{err: fmt.Errorf("%w: http 500", domain.ErrProviderFailure)}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	fields := map[string]string{"prompt": "rower", "model": "Flux Dev", "aspect_ratio": "1:1"}

	// Failed attempts never consume quota.
	for i := 0; i < 8; i++ {
		rec := httptest.NewRecorder()
		app.ImagesGenerate(rec, multipartRequest(t, fields, nil, cookies))
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("attempt %d status = %d, want 502", i+1, rec.Code)
		}
	}

	invoker.err = nil
	invoker.urls = []string{"https://cdn.example.com/out.jpg"}
	for i := 0; i < app.Quota.Limit; i++ {
		rec := httptest.NewRecorder()
		app.ImagesGenerate(rec, multipartRequest(t, fields, nil, cookies))
		if rec.Code != http.StatusOK {
			t.Fatalf("success %d status = %d, body: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, multipartRequest(t, fields, nil, cookies))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status after limit = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("quota denial should set Retry-After")
	}
}

func TestGenerateEmptyResultSurfacesRawBody(t *testing.T) {
	invoker := &fakeInvoker{err: &fal.EmptyResultError{Raw: []byte(`{"images":[],"detail":"nsfw filter"}`)}}
	app := newTestApp(t, invoker)
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{"prompt": "rower", "model": "Flux Dev"}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != codeEmptyResult {
		t.Fatalf("code = %q, want %q", envelope.Error.Code, codeEmptyResult)
	}
	if envelope.Error.Detail == "" {
		t.Fatal("raw provider response must be surfaced for diagnosis")
	}
}

func TestGenerateRejectsMissingPrompt(t *testing.T) {
	app := newTestApp(t, &fakeInvoker{})
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{"model": "Flux Dev"}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateRejectsUnknownModel(t *testing.T) {
	app := newTestApp(t, &fakeInvoker{})
	cookies := login(t, app, "team-pass")

	req := multipartRequest(t, map[string]string{"prompt": "rower", "model": "DALL-E 9000"}, nil, cookies)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateRequiresSession(t *testing.T) {
	app := newTestApp(t, &fakeInvoker{})
	req := multipartRequest(t, map[string]string{"prompt": "rower", "model": "Flux Dev"}, nil, nil)
	rec := httptest.NewRecorder()
	app.ImagesGenerate(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
