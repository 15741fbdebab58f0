package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Asset is a single file to include in the archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs the assets into an in-memory zip archive. Filenames
// without an extension get one derived from the MIME type.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(filenameFor(asset))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func filenameFor(asset Asset) string {
	name := asset.Filename
	if name == "" {
		name = "asset"
	}
	if strings.Contains(name, ".") {
		return name
	}
	switch {
	case strings.Contains(asset.MIME, "png"):
		return name + ".png"
	case strings.Contains(asset.MIME, "webp"):
		return name + ".webp"
	case strings.Contains(asset.MIME, "gif"):
		return name + ".gif"
	default:
		return name + ".jpg"
	}
}
