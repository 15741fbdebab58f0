package refimg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"kreator/internal/domain"
)

// DefaultMaxUploads caps how many uploaded references are forwarded to the
// provider in one request.
const DefaultMaxUploads = 6

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Upload is a user-supplied image file prior to normalization.
type Upload struct {
	Name string
	Data []byte
}

// Result carries the normalized references plus resolution diagnostics.
type Result struct {
	References []Reference
	// Dropped counts uploads discarded because they exceeded the maximum.
	Dropped int
	// Skipped lists files that failed to decode and were omitted.
	Skipped []string
}

// Resolver produces the set of provider-ready reference images, either from
// user uploads or from a fixed preset directory on disk.
type Resolver struct {
	PresetDir    string
	MaxUploads   int
	MaxDimension int
	Logger       zerolog.Logger
}

// NewResolver builds a resolver with the given preset directory and limits.
func NewResolver(presetDir string, maxUploads, maxDim int, logger zerolog.Logger) *Resolver {
	if maxUploads <= 0 {
		maxUploads = DefaultMaxUploads
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &Resolver{PresetDir: presetDir, MaxUploads: maxUploads, MaxDimension: maxDim, Logger: logger}
}

// ResolveUploads normalizes user uploads. When required is set and no upload
// survives, the resolution fails with ErrMissingRequiredImage. Excess uploads
// beyond the maximum are truncated; the dropped count is reported so callers
// can warn instead of proceeding silently.
func (r *Resolver) ResolveUploads(uploads []Upload, required bool) (Result, error) {
	var res Result
	if len(uploads) == 0 {
		if required {
			return res, domain.ErrMissingRequiredImage
		}
		return res, nil
	}

	if len(uploads) > r.MaxUploads {
		res.Dropped = len(uploads) - r.MaxUploads
		r.Logger.Warn().
			Int("supplied", len(uploads)).
			Int("max", r.MaxUploads).
			Msg("truncating uploaded reference images")
		uploads = uploads[:r.MaxUploads]
	}

	for _, up := range uploads {
		ref, err := Normalize(up.Name, up.Data, r.MaxDimension)
		if err != nil {
			// One bad file must not abort the batch.
			r.Logger.Warn().Err(err).Str("file", up.Name).Msg("skipping undecodable upload")
			res.Skipped = append(res.Skipped, up.Name)
			continue
		}
		res.References = append(res.References, ref)
	}

	if required && len(res.References) == 0 {
		return Result{Dropped: res.Dropped, Skipped: res.Skipped}, domain.ErrMissingRequiredImage
	}
	return res, nil
}

// ResolvePresets enumerates the preset directory and normalizes every image
// file found there, in stable name order.
func (r *Resolver) ResolvePresets() (Result, error) {
	var res Result
	entries, err := os.ReadDir(r.PresetDir)
	if err != nil {
		return res, fmt.Errorf("%w: preset directory %s: %v", domain.ErrNoReferenceImages, r.PresetDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.PresetDir, name))
		if err != nil {
			r.Logger.Warn().Err(err).Str("file", name).Msg("skipping unreadable preset")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		ref, err := Normalize(name, data, r.MaxDimension)
		if err != nil {
			r.Logger.Warn().Err(err).Str("file", name).Msg("skipping undecodable preset")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		res.References = append(res.References, ref)
	}

	if len(res.References) == 0 {
		return res, fmt.Errorf("%w: no usable images in %s", domain.ErrNoReferenceImages, r.PresetDir)
	}
	return res, nil
}
