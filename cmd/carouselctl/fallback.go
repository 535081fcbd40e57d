package main

import (
	"encoding/json"

	"carouselcraft.io/carousel-studio/internal/core"
	"carouselcraft.io/carousel-studio/internal/store"
	"github.com/spf13/cobra"
)

var fallbackOpts struct {
	slides   int
	combined bool
}

var fallbackCmd = &cobra.Command{
	Use:   "fallback <subject>",
	Short: "Print the template carousel used when generation is unavailable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style := store.ContentSplit
		if fallbackOpts.combined {
			style = store.ContentCombined
		}
		generated := core.NewGenerator(nil).Generate(cmd.Context(), core.GenerateRequest{
			Subject:      args[0],
			SlideCount:   fallbackOpts.slides,
			ContentStyle: style,
		})

		c := store.Carousel{
			Title:      generated.Title,
			Subject:    args[0],
			Status:     store.StatusDraft,
			SlideCount: len(generated.Slides),
			Hashtags:   generated.Hashtags,
			Slides:     generated.Slides,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	fallbackCmd.Flags().IntVarP(&fallbackOpts.slides, "slides", "n", 0, "slide count (0 picks the default)")
	fallbackCmd.Flags().BoolVar(&fallbackOpts.combined, "combined", false, "keep headings and bodies on the same slide")
}
