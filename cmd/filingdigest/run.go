package main

import (
	"fmt"

	"github.com/dgallion1/filingdigest/internal/config"
	"github.com/dgallion1/filingdigest/internal/loader"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/segment"
	"github.com/dgallion1/filingdigest/internal/store"
	"github.com/dgallion1/filingdigest/internal/summarize"
	"github.com/spf13/cobra"
)

var (
	runConfigPath      string
	runDataDir         string
	runOutputDir       string
	runConcurrency     int
	runFoldConcurrency int
	runMarkers         string
	runExtensions      []string
	runRecursive       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize every filing in the data directory",
	Long: `Run reads a run file (default config.json) naming the info types to extract,
the data directory and the output directory. Each matching file in the data
directory is summarized and written to <output>/<name>.json. A failing
document is reported and does not stop the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		log := newLogger(cmd.ErrOrStderr())

		rf, err := config.LoadRunFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg, dataDir := resolveRunConfig(cmd, rf, config.Load())
		if dataDir == "" {
			return fmt.Errorf("no data directory: set data_directory in %s or pass --dir", runConfigPath)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		markers, err := segment.MarkerSet(cfg.MarkerSet)
		if err != nil {
			return err
		}
		seg := segment.NewSegmenter(markers)
		seg.MaxLength = cfg.MaxSegmentChars

		llm, err := summarize.New(cfg.Summarizer(), log)
		if err != nil {
			return err
		}
		defer llm.Close()

		paths, err := loader.Discover(dataDir, runExtensions, runRecursive)
		if err != nil {
			return err
		}

		printRunHeader(out, runHeader{
			Config:    runConfigPath,
			DataDir:   dataDir,
			OutputDir: cfg.OutputDir,
			Markers:   cfg.MarkerSet,
			Model:     llm.Model(),
			InfoTypes: len(rf.InfoTypes),
			Documents: len(paths),
		})
		if len(paths) == 0 {
			fmt.Fprintln(out, warnStyle.Render("no matching documents"))
			return nil
		}

		proc := pipeline.NewProcessor(pipeline.ProcessorConfig{
			Segmenter:       seg,
			Summarizer:      llm,
			Sink:            store.NewFileSink(cfg.OutputDir),
			InfoTypes:       rf.InfoTypes,
			Loader:          loader.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
			FoldConcurrency: cfg.MaxConcurrentFolds,
		}, log)

		report := proc.RunBatch(cmd.Context(), paths, runConcurrency, func(path string, err error) {
			printDocumentDone(out, path, err)
		})
		printRunSummary(out, report)

		if !report.OK() {
			return fmt.Errorf("%d of %d documents failed", len(report.Failed), len(paths))
		}
		return nil
	},
}

// resolveRunConfig layers the environment, then the run file, then flags
// the user actually passed.
func resolveRunConfig(cmd *cobra.Command, rf config.RunFile, base config.Config) (config.Config, string) {
	cfg := rf.Apply(base)

	dataDir := rf.DataDirectory
	if runDataDir != "" {
		dataDir = runDataDir
	}
	if runOutputDir != "" {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("markers") {
		cfg.MarkerSet = runMarkers
	}
	if cmd.Flags().Changed("fold-concurrency") {
		cfg.MaxConcurrentFolds = runFoldConcurrency
	}
	return cfg, dataDir
}

func init() {
	bindRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func bindRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runConfigPath, "config", "c", "config.json", "Run file with info_dict, data_directory and output_directory")
	cmd.Flags().StringVar(&runDataDir, "dir", "", "Input directory (overrides data_directory)")
	cmd.Flags().StringVarP(&runOutputDir, "out", "o", "", "Output directory (overrides output_directory)")
	cmd.Flags().IntVarP(&runConcurrency, "concurrency", "j", 1, "Documents processed at once")
	cmd.Flags().IntVar(&runFoldConcurrency, "fold-concurrency", 1, "Info types folded at once per document")
	cmd.Flags().StringSliceVar(&runExtensions, "ext", []string{".html"}, "File extensions to process")
	cmd.Flags().BoolVarP(&runRecursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().StringVar(&runMarkers, "markers", "", "Marker set (legacy, full); overrides MARKER_SET and the run file")
}
