package commands

import (
	"fmt"
	"path/filepath"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/spf13/cobra"
)

var (
	idPlatform string
	idWrite    bool
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print a fresh build id without building",
	Long: `Print a fresh build id of the form <platform>-node-<YYYYMMDD>-<random>.

The platform tag defaults to the platform setting in nodebuild.yml, then to
the current host (e.g. linux-x64, macOS-arm64, win-x64).

With --write the id is also written to the configured source file, exactly
as the build command would.`,
	Args: cobra.NoArgs,
	RunE: runID,
}

func init() {
	idCmd.Flags().StringVar(&idPlatform, "platform", "", "Platform tag (defaults to the current host)")
	idCmd.Flags().BoolVar(&idWrite, "write", false, "Also write the id into the source file")
	rootCmd.AddCommand(idCmd)
}

func runID(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	platform := idPlatform
	if platform == "" {
		platform = cfg.Platform
	}
	if platform == "" {
		platform = buildid.CurrentPlatform()
	}

	id := buildid.Generate(platform, timeNow())

	if idWrite {
		if err := buildid.Inject(id, cfg.SourceFile); err != nil {
			return printer.Error(
				"Could not write build id",
				err.Error(),
				[]string{"Run nodebuild from the root of the node checkout"},
			)
		}
		path, _ := filepath.Abs(cfg.SourceFile)
		printer.Success("Wrote %s\n", path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
