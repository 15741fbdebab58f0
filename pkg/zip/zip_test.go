package zip

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	archive := ArchiveAssets([]Asset{
		{Filename: "obraz-01", MIME: "image/jpeg", Data: []byte("jpeg-bytes")},
		{Filename: "obraz-02", MIME: "image/png", Data: []byte("png-bytes")},
		{Filename: "named.webp", MIME: "image/webp", Data: []byte("webp-bytes")},
	})

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	want := map[string]string{
		"obraz-01.jpg": "jpeg-bytes",
		"obraz-02.png": "png-bytes",
		"named.webp":   "webp-bytes",
	}
	if len(zr.File) != len(want) {
		t.Fatalf("archive has %d files, want %d", len(zr.File), len(want))
	}
	for _, f := range zr.File {
		expected, ok := want[f.Name]
		if !ok {
			t.Fatalf("unexpected file %q", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		_ = rc.Close()
		if buf.String() != expected {
			t.Fatalf("content of %s = %q, want %q", f.Name, buf.String(), expected)
		}
	}
}

func TestArchiveAssetsEmpty(t *testing.T) {
	archive := ArchiveAssets(nil)
	if _, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive))); err != nil {
		t.Fatalf("empty archive should still be a valid zip: %v", err)
	}
}
