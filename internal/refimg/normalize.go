package refimg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxDimension bounds the longer edge of every normalized image.
	// The provider enforces a total request-body limit, so oversized uploads
	// are scaled down rather than rejected.
	DefaultMaxDimension = 1024

	jpegQuality = 85
)

// Reference is a normalized provider-ready image: flattened, bounded in size
// and re-encoded as a self-describing data URI.
type Reference struct {
	Name    string
	Width   int
	Height  int
	DataURI string
}

// Normalize decodes raw image bytes, flattens any alpha or indexed color
// model onto a white background, downscales so neither dimension exceeds
// maxDim (preserving aspect ratio) and re-encodes as JPEG wrapped in a
// base64 data URI.
func Normalize(name string, data []byte, maxDim int) (Reference, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Reference{}, fmt.Errorf("decode %s: %w", name, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Reference{}, fmt.Errorf("decode %s: empty image", name)
	}

	outW, outH := fitWithin(width, height, maxDim)

	flat := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.Draw(flat, flat.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	if outW == width && outH == height {
		draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Over)
	} else {
		xdraw.CatmullRom.Scale(flat, flat.Bounds(), src, bounds, xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Reference{}, fmt.Errorf("encode %s: %w", name, err)
	}

	return Reference{
		Name:    name,
		Width:   outW,
		Height:  outH,
		DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// fitWithin scales (w, h) down so the longer edge is at most maxDim, keeping
// the aspect ratio. Images already within bounds are left untouched.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		scaled := h * maxDim / w
		if scaled < 1 {
			scaled = 1
		}
		return maxDim, scaled
	}
	scaled := w * maxDim / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxDim
}
