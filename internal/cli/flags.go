package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/semdiff/pkg/config"
)

// GlobalFlags holds the persistent flag values shared by every
// subcommand
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the shared persistent flags on the root
// command
func AddGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&globalFlags.ConfigFile, "config", "", "config file (default is $HOME/.config/semdiff/config.yaml)")
	f.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug-level log output")
	f.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "suppress progress and log noise, print only the report")
}

// ApplyTo folds the verbosity flags into a loaded configuration. Both
// may be set at once: verbose raises the log level while quiet
// silences progress output.
func (g *GlobalFlags) ApplyTo(cfg *config.Config) {
	if g.Verbose {
		cfg.Logging.Level = "debug"
	}
	if g.Quiet {
		cfg.Output.Quiet = true
	}
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}
