package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestModelsCatalog(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	app.Models(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp modelsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Models) != 4 {
		t.Fatalf("models = %d, want 4", len(resp.Models))
	}
	if resp.DefaultAspect != "16:9" {
		t.Fatalf("default aspect = %q, want 16:9", resp.DefaultAspect)
	}
	if resp.MaxUploads != 6 {
		t.Fatalf("max uploads = %d, want 6", resp.MaxUploads)
	}

	byLabel := make(map[string]modelDTO, len(resp.Models))
	for _, m := range resp.Models {
		byLabel[m.Label] = m
	}
	schnell, ok := byLabel["Flux Schnell"]
	if !ok {
		t.Fatal("missing Flux Schnell")
	}
	if !schnell.Fast || !schnell.SlidersLocked {
		t.Fatalf("fast variant flags = %+v, want fast with locked sliders", schnell)
	}
	dev := byLabel["Flux Dev"]
	if dev.Fast || dev.SlidersLocked || dev.NeedsReference {
		t.Fatalf("Flux Dev flags = %+v", dev)
	}
	kontext := byLabel["Flux Kontext (edycja)"]
	if !kontext.NeedsReference {
		t.Fatalf("edit model should need a reference, got %+v", kontext)
	}
}
