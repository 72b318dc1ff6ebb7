package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/config"
	"github.com/dyluth/nodebuild/internal/handoff"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/dyluth/nodebuild/internal/strategy"
	"github.com/dyluth/nodebuild/internal/supervisor"
	"github.com/dyluth/nodebuild/pkg/registry"
)

// Recorder stores finished builds for later symbol lookup
type Recorder interface {
	Save(ctx context.Context, r *registry.Record) error
}

// Options wires one pipeline run. Build and File are read-only.
type Options struct {
	Build    config.BuildConfig
	File     *config.FileConfig
	Platform string // Platform tag embedded in the build id

	Generator *buildid.Generator
	Now       func() time.Time
	Runner    supervisor.Runner
	Archiver  handoff.Archiver // nil skips the handoff
	Registry  Recorder         // nil skips recording

	SourceRevision string
	RunID          string
	DryRun         bool
}

// Result summarises a completed run
type Result struct {
	BuildID  buildid.Identifier
	Strategy string
	Commands []string
	Manifest *handoff.Manifest
	Status   registry.Status
}

// Run executes generate → inject → dispatch → handoff → record.
// Every error is terminal: nothing is retried and nothing is rolled back.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.File == nil {
		opts.File = config.Default()
	}
	if opts.Generator == nil {
		opts.Generator = buildid.NewGenerator(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Runner == nil {
		opts.Runner = supervisor.New()
	}
	if opts.RunID == "" {
		opts.RunID = registry.NewRunID()
	}

	// Step 1: identifier
	id := opts.Generator.Generate(opts.Platform, opts.Now())
	log.Printf("[INFO] Generated build id: build_id=%s run_id=%s", id, opts.RunID)
	printer.Step("Build ID: %s\n", id)

	selected := strategy.Select(opts.Build)
	result := &Result{
		BuildID:  id,
		Strategy: selected.Name(),
		Commands: strategy.Describe(selected),
	}

	if opts.DryRun {
		printer.Info("Dry run: %s strategy would run:\n", selected.Name())
		for _, line := range result.Commands {
			printer.Command(line)
		}
		return result, nil
	}

	// Step 2: inject into the source tree
	sourcePath := resolve(opts.Build.WorkDir, opts.File.SourceFile)
	if err := buildid.Inject(id, sourcePath); err != nil {
		return result, err
	}
	printer.Success("Wrote %s\n", opts.File.SourceFile)

	// Step 3: build
	printer.Step("Building with %s strategy (%s)\n", selected.Name(), describeConfig(opts.Build))
	for _, line := range result.Commands {
		printer.Command(line)
	}
	if err := strategy.Dispatch(opts.Build, opts.Runner); err != nil {
		return result, err
	}
	printer.Success("Build finished\n")

	// Step 4: handoff to the symbol archiver
	manifest := handoff.NewManifest(id, opts.File.ObjectDirectory, opts.File.Libraries)
	result.Manifest = &manifest

	var handoffErr error
	switch {
	case opts.Archiver == nil:
		log.Printf("[WARN] No archiver configured, skipping symbol archive: build_id=%s", id)
		printer.Warning("No symbol archiver configured; skipping handoff\n")
		result.Status = registry.StatusBuilt
	default:
		printer.Step("Archiving symbols for %v from %s\n", manifest.LibraryNames, manifest.ObjectDirectory)
		handoffErr = handoff.Handoff(ctx, opts.Archiver, manifest)
		if handoffErr != nil {
			result.Status = registry.StatusArchiveFailed
		} else {
			result.Status = registry.StatusArchived
			printer.Success("Symbols archived\n")
		}
	}

	// Step 5: record, even when the archiver failed, so the failure is visible later
	record(ctx, opts, result)

	return result, handoffErr
}

func record(ctx context.Context, opts Options, result *Result) {
	if opts.Registry == nil {
		return
	}

	rec := &registry.Record{
		BuildID:         result.BuildID.String(),
		RunID:           opts.RunID,
		Platform:        result.BuildID.PlatformTag,
		Strategy:        result.Strategy,
		ObjectDirectory: result.Manifest.ObjectDirectory,
		Libraries:       result.Manifest.LibraryNames,
		SourceRevision:  opts.SourceRevision,
		Status:          result.Status,
	}

	if err := opts.Registry.Save(ctx, rec); err != nil {
		// Registry is bookkeeping only; the build itself succeeded
		log.Printf("[WARN] Failed to record build: build_id=%s error=%v", rec.BuildID, err)
		printer.Warning("Could not record build in registry: %v\n", err)
		return
	}

	log.Printf("[INFO] Recorded build: build_id=%s status=%s", rec.BuildID, rec.Status)
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func describeConfig(cfg config.BuildConfig) string {
	if cfg.HostPlatform == config.PlatformLinux {
		return fmt.Sprintf("rebuild image: %t", cfg.UseContainer)
	}
	return fmt.Sprintf("%d jobs", cfg.Parallelism)
}

// ExitCode maps a pipeline error onto the process exit status.
// A failed build step propagates the child's exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var buildErr *strategy.BuildError
	if errors.As(err, &buildErr) && buildErr.ExitCode > 0 {
		return buildErr.ExitCode
	}
	return 1
}
