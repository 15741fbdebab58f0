package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kreator/pkg/zip"
)

const (
	maxArchiveURLs  = 8
	maxArchiveBytes = 20 << 20
)

var archiveClient = &http.Client{Timeout: 60 * time.Second}

type archiveRequest struct {
	URLs []string `json:"urls"`
}

// ImagesArchive fetches the given result URLs and streams them back as a
// single zip attachment, so a batch can be downloaded in one click.
func (a *App) ImagesArchive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeValidation, "invalid payload")
		return
	}
	if len(req.URLs) == 0 {
		a.error(w, r, http.StatusBadRequest, codeValidation, "urls required")
		return
	}
	if len(req.URLs) > maxArchiveURLs {
		req.URLs = req.URLs[:maxArchiveURLs]
	}

	var assets []zip.Asset
	for i, raw := range req.URLs {
		url := strings.TrimSpace(raw)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			a.error(w, r, http.StatusBadRequest, codeValidation, fmt.Sprintf("unsupported url: %.60s", url))
			return
		}
		data, mime, err := fetchImage(url)
		if err != nil {
			a.Logger.Warn().Err(err).Str("url", url).Msg("archive fetch failed")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("obraz-%02d", i+1),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, r, http.StatusBadGateway, codeProviderError, "no image could be fetched")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="kreator-obrazy.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func fetchImage(url string) ([]byte, string, error) {
	resp, err := archiveClient.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}
