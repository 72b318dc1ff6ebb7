package strategy

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrBuild matches every BuildError via errors.Is
var ErrBuild = errors.New("build failed")

// BuildError reports a build step whose process exited unsuccessfully
type BuildError struct {
	Step     string
	Command  string
	ExitCode int
	Signal   syscall.Signal // Set when the process was killed rather than exiting
}

func (e *BuildError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("%s killed by signal %d (%v): %s", e.Step, int(e.Signal), e.Signal, e.Command)
	}
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s failed to start: %s", e.Step, e.Command)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Step, e.ExitCode, e.Command)
}

func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}
