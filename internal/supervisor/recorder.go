package supervisor

import "syscall"

// Call is one invocation seen by a Recorder
type Call struct {
	Command string
	Args    []string
}

// Recorder is a Runner that records calls instead of spawning processes.
// Results are replayed in order; once exhausted every call succeeds.
type Recorder struct {
	Calls   []Call
	Results []ProcessResult
}

// NewRecorder creates a Recorder that replays results in order
func NewRecorder(results ...ProcessResult) *Recorder {
	return &Recorder{Results: results}
}

func (r *Recorder) Run(command string, args []string) ProcessResult {
	r.Calls = append(r.Calls, Call{Command: command, Args: append([]string(nil), args...)})

	if len(r.Calls) <= len(r.Results) {
		return r.Results[len(r.Calls)-1]
	}
	return ProcessResult{ExitCode: 0, Succeeded: true}
}

// Failed returns a result for a process that exited with code
func Failed(code int) ProcessResult {
	return ProcessResult{ExitCode: code, Succeeded: false}
}

// Killed returns a result for a process terminated by sig
func Killed(sig syscall.Signal) ProcessResult {
	return ProcessResult{ExitCode: 128 + int(sig), Succeeded: false, Signal: sig}
}

// Succeeded returns the result of a process that exited cleanly
func Succeeded() ProcessResult {
	return ProcessResult{ExitCode: 0, Succeeded: true}
}
