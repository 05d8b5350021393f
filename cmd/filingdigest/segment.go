package main

import (
	"path/filepath"

	"github.com/dgallion1/filingdigest/internal/config"
	"github.com/dgallion1/filingdigest/internal/loader"
	"github.com/dgallion1/filingdigest/internal/segment"
	"github.com/spf13/cobra"
)

var (
	segMarkers  string
	segMaxChars int
	segPreview  int
)

var segmentCmd = &cobra.Command{
	Use:   "segment <file>",
	Short: "Show how a filing splits into Item segments",
	Long: `Segment loads one document and prints every segment the summarizer would
receive, without calling the summarization service. Useful for checking that a
filing's headings are found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveSegmentConfig(cmd, config.Load())
		markers, err := segment.MarkerSet(cfg.MarkerSet)
		if err != nil {
			return err
		}
		text, err := loader.LoadFile(args[0], loader.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
		if err != nil {
			return err
		}
		seg := segment.NewSegmenter(markers)
		seg.MaxLength = cfg.MaxSegmentChars

		printSegments(cmd.OutOrStdout(), filepath.Base(args[0]), seg.Segment(text), segPreview)
		return nil
	},
}

// resolveSegmentConfig applies explicitly passed flags over the environment.
func resolveSegmentConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	if cmd.Flags().Changed("markers") {
		cfg.MarkerSet = segMarkers
	}
	if cmd.Flags().Changed("max-chars") {
		cfg.MaxSegmentChars = segMaxChars
	}
	return cfg
}

func init() {
	bindSegmentFlags(segmentCmd)
	rootCmd.AddCommand(segmentCmd)
}

func bindSegmentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&segMarkers, "markers", "legacy", "Marker set (legacy, full); overrides MARKER_SET")
	cmd.Flags().IntVar(&segMaxChars, "max-chars", segment.DefaultMaxLength, "Maximum characters kept per segment; overrides MAX_SEGMENT_CHARS")
	cmd.Flags().IntVar(&segPreview, "preview", 60, "Characters of each segment to preview")
}
