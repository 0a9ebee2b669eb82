package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/semdiff/pkg/compare"
	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/logging"
	"github.com/sdejongh/semdiff/pkg/models"
	"github.com/sdejongh/semdiff/pkg/output"
	"github.com/sdejongh/semdiff/pkg/tree"
	"github.com/sdejongh/semdiff/pkg/walk"
)

// diffFlags holds diff command flag values
type diffFlags struct {
	Output     string
	JSONReport string
	HTMLReport string
	NoProgress bool
	Workers    int

	JSONIgnoreKeyOrder     bool
	ImageMaxDistance       float64
	ImageMaxDiffRatio      float64
	AudioShiftTolerance    float64
	AudioLoudnessTolerance float64
	AudioSpectralTolerance float64
	AudioDiffRateTolerance float64
}

var diffOpts diffFlags

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <expected> <actual>",
		Short: "Compare two directory trees semantically",
		Long: `Compare an expected directory tree against an actual one, file by
file, with a content-aware comparator per file: text, JSON, image and
audio files are compared by meaning rather than byte identity, and
everything else byte for byte.

The exit code reports the outcome: 0 when the trees are equivalent,
1 when they differ, 2 when some entries could not be compared, and
3 when a root could not be read at all.`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}

	cmd.Flags().StringVarP(&diffOpts.Output, "output", "o", "", "output format: summary, json")
	cmd.Flags().StringVar(&diffOpts.JSONReport, "json-report", "", "write a JSON report to this file")
	cmd.Flags().StringVar(&diffOpts.HTMLReport, "html-report", "", "write an HTML report to this file")
	cmd.Flags().BoolVar(&diffOpts.NoProgress, "no-progress", false, "disable the progress line")
	cmd.Flags().IntVar(&diffOpts.Workers, "workers", 0, "max concurrent file comparisons (0 = config default)")

	cmd.Flags().BoolVar(&diffOpts.JSONIgnoreKeyOrder, "json-ignore-key-order", false,
		"treat JSON object key order as insignificant")
	cmd.Flags().Float64Var(&diffOpts.ImageMaxDistance, "image-max-distance", -1,
		"max perceptual color distance for a pixel to count as equal")
	cmd.Flags().Float64Var(&diffOpts.ImageMaxDiffRatio, "image-max-diff-ratio", -1,
		"max ratio of differing pixels for two images to count as equal")
	cmd.Flags().Float64Var(&diffOpts.AudioShiftTolerance, "audio-shift-tolerance", -1,
		"max temporal alignment shift in seconds")
	cmd.Flags().Float64Var(&diffOpts.AudioLoudnessTolerance, "audio-lufs-tolerance", -1,
		"max loudness delta in dB")
	cmd.Flags().Float64Var(&diffOpts.AudioSpectralTolerance, "audio-spectral-tolerance", -1,
		"max per-bin spectral log-magnitude delta")
	cmd.Flags().Float64Var(&diffOpts.AudioDiffRateTolerance, "audio-spectrogram-diff-rate", -1,
		"max ratio of differing spectrogram bins")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyDiffFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	expected, err := tree.NewLocal(args[0])
	if err != nil {
		return fmt.Errorf("expected root: %w", err)
	}
	defer expected.Close()

	actual, err := tree.NewLocal(args[1])
	if err != nil {
		return fmt.Errorf("actual root: %w", err)
	}
	defer actual.Close()

	walker := walk.New(expected, actual, compare.NewRegistry(), cfg, logger)

	var progress *output.Progress
	if cfg.Output.Progress && !cfg.Output.Quiet {
		progress = output.NewProgress(os.Stderr)
		walker.OnNode(progress.Node)
	}

	report, err := walker.Run(ctx)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(report.Status.ExitCode())
	}

	if !cfg.Output.Quiet {
		formatter := output.ForFormat(cfg.Output.Format)
		if err := formatter.Write(os.Stdout, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if cfg.Output.JSONPath != "" {
		if err := writeJSONReport(cfg.Output.JSONPath, report); err != nil {
			return err
		}
	}
	if cfg.Output.HTMLPath != "" {
		reporter, err := output.NewHTMLReporter()
		if err != nil {
			return err
		}
		if err := reporter.WriteFile(cfg.Output.HTMLPath, report); err != nil {
			return err
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// loadConfig loads the configuration honoring the --config flag
func loadConfig() (*config.Config, error) {
	flags := GetGlobalFlags()
	if flags.ConfigFile != "" {
		return config.LoadFromFile(flags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyDiffFlags overrides configuration with explicitly set flags.
// Tolerance flags use -1 as the unset sentinel; every real tolerance is
// non-negative.
func applyDiffFlags(cfg *config.Config) {
	GetGlobalFlags().ApplyTo(cfg)

	if diffOpts.Output != "" {
		cfg.Output.Format = diffOpts.Output
	}
	if diffOpts.JSONReport != "" {
		cfg.Output.JSONPath = diffOpts.JSONReport
	}
	if diffOpts.HTMLReport != "" {
		cfg.Output.HTMLPath = diffOpts.HTMLReport
	}
	if diffOpts.NoProgress {
		cfg.Output.Progress = false
	}
	if diffOpts.Workers > 0 {
		cfg.Performance.MaxWorkers = diffOpts.Workers
	}

	if diffOpts.JSONIgnoreKeyOrder {
		cfg.Tolerances.JSONIgnoreObjectKeyOrder = true
	}
	if diffOpts.ImageMaxDistance >= 0 {
		cfg.Tolerances.ImageMaxDistance = diffOpts.ImageMaxDistance
	}
	if diffOpts.ImageMaxDiffRatio >= 0 {
		cfg.Tolerances.ImageMaxDiffRatio = diffOpts.ImageMaxDiffRatio
	}
	if diffOpts.AudioShiftTolerance >= 0 {
		cfg.Tolerances.AudioShiftToleranceSeconds = diffOpts.AudioShiftTolerance
	}
	if diffOpts.AudioLoudnessTolerance >= 0 {
		cfg.Tolerances.AudioLUFSToleranceDB = diffOpts.AudioLoudnessTolerance
	}
	if diffOpts.AudioSpectralTolerance >= 0 {
		cfg.Tolerances.AudioSpectralTolerance = diffOpts.AudioSpectralTolerance
	}
	if diffOpts.AudioDiffRateTolerance >= 0 {
		cfg.Tolerances.AudioSpectrogramDiffRateTolerance = diffOpts.AudioDiffRateTolerance
	}
}

// buildLogger creates the run logger from configuration
func buildLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNull(), nil
	}
	return logging.New(logging.Options{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
	})
}

// writeJSONReport writes the JSON document report to a file
func writeJSONReport(path string, report *models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := output.NewJSONFormatter().Write(f, report); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
