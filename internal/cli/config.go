package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/semdiff/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify semdiff configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Tolerances:\n")
			fmt.Printf("  JSON ignore key order:        %t\n", cfg.Tolerances.JSONIgnoreObjectKeyOrder)
			fmt.Printf("  Image max pixel distance:     %g\n", cfg.Tolerances.ImageMaxDistance)
			fmt.Printf("  Image max diff ratio:         %g\n", cfg.Tolerances.ImageMaxDiffRatio)
			fmt.Printf("  Audio shift tolerance:        %gs\n", cfg.Tolerances.AudioShiftToleranceSeconds)
			fmt.Printf("  Audio loudness tolerance:     %g dB\n", cfg.Tolerances.AudioLUFSToleranceDB)
			fmt.Printf("  Audio spectral tolerance:     %g\n", cfg.Tolerances.AudioSpectralTolerance)
			fmt.Printf("  Audio spectrogram diff rate:  %g\n", cfg.Tolerances.AudioSpectrogramDiffRateTolerance)
			fmt.Printf("Performance:\n")
			fmt.Printf("  Max workers:                  %d\n", cfg.Performance.MaxWorkers)
			fmt.Printf("  Max file size:                %d bytes\n", cfg.Performance.MaxFileSizeBytes)
			fmt.Printf("Output:\n")
			fmt.Printf("  Format:                       %s\n", cfg.Output.Format)
			fmt.Printf("  Progress:                     %t\n", cfg.Output.Progress)
			fmt.Printf("Logging:\n")
			fmt.Printf("  Format:                       %s\n", cfg.Logging.Format)
			fmt.Printf("  Level:                        %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}
