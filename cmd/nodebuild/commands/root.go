package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	// rawArgs holds the unparsed invocation arguments
	rawArgs []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nodebuild",
	Short: "nodebuild - reproducible node builds with debug symbols",
	Long: `nodebuild builds node for the current host and tags the result with a
unique build id.

On Linux the build runs inside the node-build container so the binary links
against a consistent glibc; on other hosts make runs natively. The build id
is compiled into the binary and handed to the symbol archiver together with
the object directory, so crash addresses can be mapped back to source later.`,
	Version: version,
	// Show help rather than silently succeeding when no subcommand is given
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command with args.
// Errors are printed by the printer package, so cobra's own output is silenced.
func Execute(args []string) error {
	rawArgs = args
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "nodebuild.yml", "Path to nodebuild.yml (optional)")
}
