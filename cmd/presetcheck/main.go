// Command presetcheck validates the deployment configuration and the preset
// image directory before the API is started. Operators run it after changing
// PRESET_DIR contents or rotating secrets.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kreator/internal/infra"
	"kreator/internal/refimg"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	resolver := refimg.NewResolver(cfg.PresetDir, cfg.MaxUploadImages, cfg.MaxImageDimension, logger)
	res, err := resolver.ResolvePresets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "presets: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ok: %d preset image(s) usable in %s\n", len(res.References), cfg.PresetDir)
	for _, ref := range res.References {
		fmt.Printf("  %s (%dx%d)\n", ref.Name, ref.Width, ref.Height)
	}
	for _, skipped := range res.Skipped {
		fmt.Printf("  skipped: %s\n", skipped)
	}
}
