package supervisor

import (
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// ProcessResult is the outcome of one supervised subprocess.
// ExitCode is -1 only when the process could not be started. A process
// killed by a signal reports 128+signal, as a shell would, and sets Signal.
type ProcessResult struct {
	ExitCode  int
	Succeeded bool
	Signal    syscall.Signal // Zero unless the process was killed by a signal
}

// Runner spawns an external command and blocks until it exits
type Runner interface {
	Run(command string, args []string) ProcessResult
}

// Supervisor runs commands with their stdio attached to the given streams.
// Nothing is captured or buffered, so build output is visible live.
type Supervisor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Dir    string // Empty means the current working directory
}

// New creates a Supervisor attached to the orchestrator's own streams
func New() *Supervisor {
	return &Supervisor{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes command with args passed as a literal argv (no shell).
// There is no timeout and no retry: the call waits for natural termination.
func (s *Supervisor) Run(command string, args []string) ProcessResult {
	cmd := exec.Command(command, args...)
	cmd.Dir = s.Dir
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	log.Printf("[INFO] Running: %s", CommandLine(command, args))
	startTime := time.Now()

	err := cmd.Run()
	duration := time.Since(startTime)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				sig := status.Signal()
				log.Printf("[ERROR] %s killed by signal: %v duration=%s", command, sig, duration.Round(time.Millisecond))
				return ProcessResult{ExitCode: 128 + int(sig), Succeeded: false, Signal: sig}
			}
			exitCode = exitErr.ExitCode()
		} else {
			// Process couldn't be started
			log.Printf("[ERROR] Failed to start %s: %v", command, err)
			return ProcessResult{ExitCode: -1, Succeeded: false}
		}
	}

	log.Printf("[INFO] Finished: command=%s exit_code=%d duration=%s", command, exitCode, duration.Round(time.Millisecond))

	return ProcessResult{ExitCode: exitCode, Succeeded: exitCode == 0}
}

// CommandLine renders a command for display only; it is never handed to a shell
func CommandLine(command string, args []string) string {
	return strings.Join(append([]string{command}, args...), " ")
}
