package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"carouselcraft.io/carousel-studio/internal/export"
	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/render"
	"carouselcraft.io/carousel-studio/internal/store"
	"github.com/spf13/cobra"
)

var renderOpts struct {
	settingsFile string
	outputFile   string
}

var renderCmd = &cobra.Command{
	Use:     "render <carousel.json>",
	Short:   "Render a carousel JSON file to a PDF",
	Example: "  carouselctl render carousel.json --settings style.json -o out.pdf",
	Args:    cobra.ExactArgs(1),
	RunE:    renderCommand,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOpts.settingsFile, "settings", "s", "", "style settings JSON (defaults when empty)")
	renderCmd.Flags().StringVarP(&renderOpts.outputFile, "output", "o", "", "output PDF path (named after the subject when empty)")
}

func renderCommand(cmd *cobra.Command, args []string) error {
	var c store.Carousel
	if err := readJSON(args[0], &c); err != nil {
		return err
	}
	if len(c.Slides) == 0 {
		return fmt.Errorf("%s contains no slides", args[0])
	}

	settings := store.DefaultSettings()
	if renderOpts.settingsFile != "" {
		if err := readJSON(renderOpts.settingsFile, &settings); err != nil {
			return err
		}
	}

	rasterizer, err := raster.NewRasterizer(raster.NewHTTPImageLoader())
	if err != nil {
		return err
	}
	surfaces := make([]export.Surface, len(c.Slides))
	for i, sl := range c.Slides {
		surfaces[i] = rasterizer.Surface(render.Render(sl, settings, len(c.Slides)))
	}

	result, err := export.NewExporter().Export(cmd.Context(), c.Slides, surfaces)
	if err != nil {
		return err
	}
	for _, sr := range result.Slides {
		if sr.Outcome == export.Skipped {
			log.Printf("Slide %d skipped: %s", sr.SlideNumber, sr.Reason)
		}
	}

	out := renderOpts.outputFile
	if out == "" {
		out = export.FileName(c.Subject, time.Now())
	}
	if err := os.WriteFile(out, result.Document, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages\n", out, result.Pages)
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
