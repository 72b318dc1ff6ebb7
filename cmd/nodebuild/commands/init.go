package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/nodebuild/internal/git"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/dyluth/nodebuild/internal/scaffold"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a nodebuild.yml in the current directory",
	Long: `Create a commented nodebuild.yml with the default settings.

Run this from the root of the node checkout. nodebuild works without the
file; it is only needed to configure the symbol archiver, the build
registry or a platform override.

Use --force to overwrite an existing nodebuild.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	// No -f shorthand: it would read as the file flag of other tools
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing nodebuild.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	if _, err := git.Inspect(dir); errors.Is(err, git.ErrNotRepository) {
		printer.Warning("%s is not inside a Git repository; is this the node checkout?\n", dir)
	}

	path, err := scaffold.Initialize(dir, forceInit)
	if err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	printer.Success("Created %s\n", path)
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Set archiver.command to your symbol archiver\n")
	printer.Info("  2. Run: nodebuild build\n")
	return nil
}
