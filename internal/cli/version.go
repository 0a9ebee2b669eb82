package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/semdiff/pkg/compare"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build capabilities",
		Long:  `Display version and build information along with the comparator classes this build ships.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(Version)
				return
			}

			classes := make([]string, 0, 8)
			for _, class := range compare.NewRegistry().Classes() {
				classes = append(classes, string(class))
			}

			fmt.Printf("semdiff %s\n", Version)
			fmt.Printf("  Commit:      %s\n", Commit)
			fmt.Printf("  Built:       %s\n", BuildDate)
			fmt.Printf("  Go version:  %s\n", runtime.Version())
			fmt.Printf("  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Printf("  Comparators: %s\n", strings.Join(classes, ", "))
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
