package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/catalog"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/dyluth/nodebuild/internal/timespec"
	"github.com/dyluth/nodebuild/pkg/registry"
	"github.com/spf13/cobra"
)

var (
	buildsOutputFormat string
	buildsSince        string
	buildsUntil        string
	buildsPlatform     string
	buildsStatus       string
	buildsWatch        bool
)

// timeNow is replaced in tests
var timeNow = time.Now

var buildsCmd = &cobra.Command{
	Use:   "builds [BUILD_ID]",
	Short: "Look up recorded builds",
	Long: `Look up builds recorded in the build registry.

List Mode (no BUILD_ID):
  Displays recorded builds, newest first, as a table or JSONL stream.

Get Mode (with BUILD_ID):
  Displays the full record of one build as pretty-printed JSON, including
  the object directory and libraries its symbols were archived from.

The registry is configured with registry.url in nodebuild.yml or the
NODEBUILD_REDIS_URL environment variable.

Examples:
  # Builds from the last day
  nodebuild builds --since=24h

  # Linux builds whose symbols failed to archive
  nodebuild builds --platform="linux-*" --status=ArchiveFailed

  # Resolve a crash report's build id
  nodebuild builds linux-x64-node-20240307-123456789

  # Stream builds as they are recorded
  nodebuild builds --watch --output=jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuilds,
}

func init() {
	buildsCmd.Flags().StringVarP(&buildsOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")
	buildsCmd.Flags().StringVar(&buildsSince, "since", "", "Show builds after time (duration, YYYYMMDD or RFC3339)")
	buildsCmd.Flags().StringVar(&buildsUntil, "until", "", "Show builds up to time (duration, RFC3339, or YYYYMMDD covering that whole day)")
	buildsCmd.Flags().StringVar(&buildsPlatform, "platform", "", "Filter by platform tag (glob pattern)")
	buildsCmd.Flags().StringVar(&buildsStatus, "status", "", "Filter by status (Archived, ArchiveFailed, Built)")
	buildsCmd.Flags().BoolVarP(&buildsWatch, "watch", "w", false, "Keep running and print builds as they are recorded")
	rootCmd.AddCommand(buildsCmd)
}

func runBuilds(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	isGetMode := len(args) > 0

	var outputFormat catalog.OutputFormat
	if !isGetMode {
		switch buildsOutputFormat {
		case "default":
			outputFormat = catalog.OutputFormatDefault
		case "jsonl":
			outputFormat = catalog.OutputFormatJSONL
		default:
			return printer.Error(
				"invalid output format",
				fmt.Sprintf("Unknown format: %s", buildsOutputFormat),
				[]string{"Valid formats: default, jsonl"},
			)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := openRegistry(ctx, cfg)
	if err != nil {
		return printer.Error(
			"build registry unavailable",
			err.Error(),
			[]string{"Check registry.url in nodebuild.yml or NODEBUILD_REDIS_URL"},
		)
	}
	if reg == nil {
		return printer.Error(
			"no build registry configured",
			"Builds are only recorded when a registry is configured.",
			[]string{
				"Set registry.url in nodebuild.yml:\n  registry:\n    url: redis://localhost:6379",
				"Or export NODEBUILD_REDIS_URL",
			},
		)
	}
	defer reg.Close()

	if isGetMode {
		return getBuild(ctx, reg, args[0], cmd.OutOrStdout())
	}

	sinceMs, untilMs, err := timespec.ParseRange(buildsSince, buildsUntil, timeNow())
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration (1h30m), a date (20240307) or RFC3339 (2024-03-07T10:00:00Z)"},
		)
	}

	filter := &catalog.Filter{
		SinceMs:      sinceMs,
		UntilMs:      untilMs,
		PlatformGlob: buildsPlatform,
		Status:       buildsStatus,
	}

	if buildsWatch {
		return watchBuilds(ctx, reg, outputFormat, filter, cmd.OutOrStdout())
	}

	return catalog.ListBuilds(ctx, reg, outputFormat, filter, cmd.OutOrStdout())
}

func getBuild(ctx context.Context, reg catalog.Lister, buildID string, w io.Writer) error {
	err := catalog.GetBuild(ctx, reg, buildID, w)
	if err == nil {
		return nil
	}

	if catalog.IsNotFound(err) {
		return printer.Error(
			fmt.Sprintf("build '%s' not found", buildID),
			"No build with this id was recorded in the registry.",
			[]string{"List recorded builds:\n  nodebuild builds --since=168h"},
		)
	}
	if errors.Is(err, buildid.ErrInvalidIdentifier) {
		return printer.Error(
			"invalid build id",
			err.Error(),
			[]string{"Build ids look like linux-x64-node-20240307-123456789"},
		)
	}
	return printer.Error(
		"build registry unavailable",
		err.Error(),
		[]string{"Check that the registry at registry.url (or NODEBUILD_REDIS_URL) is reachable"},
	)
}

func watchBuilds(ctx context.Context, reg *registry.Client, format catalog.OutputFormat, filter *catalog.Filter, w io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := reg.SubscribeBuildEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	if format != catalog.OutputFormatJSONL {
		printer.Info("Watching for builds (Ctrl+C to stop)...\n")
	}

	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			printer.Warning("%v\n", err)
		case record, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if !catalog.Matches(filter, record) {
				continue
			}
			if err := catalog.FormatRecord(w, format, record); err != nil {
				return err
			}
		}
	}
}
