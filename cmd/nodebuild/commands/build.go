package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/config"
	dockerpkg "github.com/dyluth/nodebuild/internal/docker"
	"github.com/dyluth/nodebuild/internal/git"
	"github.com/dyluth/nodebuild/internal/handoff"
	"github.com/dyluth/nodebuild/internal/pipeline"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/dyluth/nodebuild/internal/strategy"
	"github.com/dyluth/nodebuild/internal/supervisor"
	"github.com/spf13/cobra"
)

var (
	buildContainer bool
	buildDryRun    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build node and archive its debug symbols",
	Long: `Build node for this host.

Steps:
  1. Generate a build id (<platform>-node-<YYYYMMDD>-<random>)
  2. Write it to src/node_build_id.cc
  3. Linux:  docker run -v <checkout>:/node node-build
     (preceded by docker build . -f Dockerfile.build -t node-build with --build-container)
     Other:  make -j<cpus> -C out BUILDTYPE=Release
  4. Hand the build id, out/Release and the library list to the symbol archiver
  5. Record the build in the registry, if one is configured

Build output is streamed live. The first failing step stops the build and
nodebuild exits with that step's exit status.`,
	// Arguments other than --build-container are ignored
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildContainer, "build-container", false, "Rebuild the node-build image before building (Linux only)")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the build plan without running it")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if workDir, err = filepath.Abs(workDir); err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	buildCfg := config.Detect(rawArgs, workDir)
	buildCfg.UseContainer = buildCfg.UseContainer || buildContainer

	platform := fileCfg.Platform
	if platform == "" {
		platform = buildid.CurrentPlatform()
	}

	if buildCfg.HostPlatform == config.PlatformLinux && !buildCfg.UseContainer && !buildDryRun {
		checkBuildImage(ctx)
	}

	opts := pipeline.Options{
		Build:          buildCfg,
		File:           fileCfg,
		Platform:       platform,
		Runner:         supervisor.New(),
		SourceRevision: sourceRevision(workDir),
		DryRun:         buildDryRun,
	}

	if fileCfg.ArchiverEnabled() {
		opts.Archiver = handoff.NewCommandArchiver(fileCfg.Archiver.Command, opts.Runner)
	}

	if !buildDryRun {
		reg, err := openRegistry(ctx, fileCfg)
		if err != nil {
			printer.Warning("Build registry unavailable, the build will not be recorded: %v\n", err)
		} else if reg != nil {
			defer reg.Close()
			opts.Registry = reg
		}
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return reportBuildFailure(result, err)
	}

	if !buildDryRun {
		printBuildSuccess(result)
	}
	return nil
}

// checkBuildImage warns when the container run would fail for lack of the image.
// It is advisory: the docker CLI subprocesses are what actually build.
func checkBuildImage(ctx context.Context) {
	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		log.Printf("[WARN] Skipping image preflight: %v", err)
		return
	}
	defer cli.Close()

	status, err := dockerpkg.InspectImage(ctx, cli, strategy.ImageTag)
	if err != nil {
		log.Printf("[WARN] Skipping image preflight: %v", err)
		return
	}

	if !status.Exists {
		printer.Warning("Image '%s' not found locally; run with --build-container to build it\n", strategy.ImageTag)
		return
	}

	log.Printf("[DEBUG] Using image %s (%s)", strategy.ImageTag, dockerpkg.ShortID(status.ID))
}

func sourceRevision(workDir string) string {
	source, err := git.Inspect(workDir)
	if err != nil {
		if !errors.Is(err, git.ErrNotRepository) {
			log.Printf("[WARN] Could not determine source revision: %v", err)
		}
		return ""
	}

	if !source.Clean {
		printer.Warning("Working tree has uncommitted changes; recorded revision %s may not match the build\n", git.ShortRevision(source.Revision))
	}
	return source.Revision
}

func reportBuildFailure(result *pipeline.Result, err error) error {
	details := map[string]string{}
	if result != nil {
		details["Build ID"] = result.BuildID.String()
		details["Strategy"] = result.Strategy
	}

	var (
		ioErr      *buildid.IOError
		buildErr   *strategy.BuildError
		archiveErr *handoff.ArchiveError
		printed    error
	)

	switch {
	case errors.As(err, &ioErr):
		printed = printer.ErrorWithContext(
			"Could not write build id",
			err.Error(),
			details,
			[]string{"Run nodebuild from the root of the node checkout"},
		)
	case errors.As(err, &buildErr):
		details["Step"] = buildErr.Step
		details["Command"] = buildErr.Command
		suggestions := []string{"See the build output above for the failing command's errors"}
		if buildErr.Step == "container run" {
			suggestions = append(suggestions, "Rebuild the build image: nodebuild build --build-container")
		}
		printed = printer.ErrorWithContext("Build failed", err.Error(), details, suggestions)
	case errors.As(err, &archiveErr):
		printed = printer.ErrorWithContext(
			"Symbol archive failed",
			"The build succeeded but its debug symbols were not archived.\n"+err.Error(),
			details,
			[]string{"Check the archiver output above and the archiver.command in nodebuild.yml"},
		)
	default:
		printed = printer.ErrorWithContext("Build failed", err.Error(), details, nil)
	}

	return fmt.Errorf("%w: %w", printed, err)
}

func printBuildSuccess(result *pipeline.Result) {
	printer.Info("\n")
	printer.Success("Build complete\n")
	printer.Info("  Build ID: %s\n", result.BuildID)
	if result.Manifest != nil {
		printer.Info("  Objects:  %s\n", result.Manifest.ObjectDirectory)
	}
	printer.Info("  Status:   %s\n", result.Status)
}
