package handoff

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/supervisor"
)

// Manifest is the contract handed to the symbol archiver.
// It is only built after a successful build.
type Manifest struct {
	BuildID         buildid.Identifier
	ObjectDirectory string
	LibraryNames    []string
}

// NewManifest copies libraryNames so later changes by the caller are not observed
func NewManifest(id buildid.Identifier, objectDirectory string, libraryNames []string) Manifest {
	return Manifest{
		BuildID:         id,
		ObjectDirectory: objectDirectory,
		LibraryNames:    append([]string(nil), libraryNames...),
	}
}

// Archiver builds the debug-symbol archive for a finished build
type Archiver interface {
	BuildSymbolsArchive(ctx context.Context, m Manifest) error
}

// ArchiveError reports a failed archiver call. It is surfaced, never retried.
type ArchiveError struct {
	BuildID string
	Err     error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("symbol archive for %s failed: %v", e.BuildID, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Handoff passes m to a. Whether the listed libraries exist is the archiver's concern.
func Handoff(ctx context.Context, a Archiver, m Manifest) error {
	if a == nil {
		return &ArchiveError{BuildID: m.BuildID.String(), Err: errors.New("no archiver configured")}
	}

	log.Printf("[INFO] Handing off build: build_id=%s object_dir=%s libraries=%v",
		m.BuildID, m.ObjectDirectory, m.LibraryNames)

	if err := a.BuildSymbolsArchive(ctx, m); err != nil {
		return &ArchiveError{BuildID: m.BuildID.String(), Err: err}
	}
	return nil
}

// CommandArchiver runs an external archiver as
// <command...> <build-id> <object-dir> <lib...>
type CommandArchiver struct {
	Command []string
	Runner  supervisor.Runner
}

// NewCommandArchiver creates an archiver that invokes command through runner
func NewCommandArchiver(command []string, runner supervisor.Runner) *CommandArchiver {
	return &CommandArchiver{
		Command: append([]string(nil), command...),
		Runner:  runner,
	}
}

// Args returns the full argv (after the executable) for m
func (c *CommandArchiver) Args(m Manifest) []string {
	var args []string
	if len(c.Command) > 1 {
		args = append(args, c.Command[1:]...)
	}
	args = append(args, m.BuildID.String(), m.ObjectDirectory)
	return append(args, m.LibraryNames...)
}

func (c *CommandArchiver) BuildSymbolsArchive(ctx context.Context, m Manifest) error {
	if len(c.Command) == 0 {
		return errors.New("archiver command is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result := c.Runner.Run(c.Command[0], c.Args(m))
	if !result.Succeeded {
		if result.Signal != 0 {
			return fmt.Errorf("archiver killed by signal %v", result.Signal)
		}
		if result.ExitCode < 0 {
			return fmt.Errorf("archiver %s could not be started", c.Command[0])
		}
		return fmt.Errorf("archiver exited with code %d", result.ExitCode)
	}
	return nil
}
