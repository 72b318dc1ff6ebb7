package main

import (
	"os"

	"github.com/dyluth/nodebuild/cmd/nodebuild/commands"
	"github.com/dyluth/nodebuild/internal/pipeline"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package; a failed build step
	// exits with the status of the process that failed
	if err := commands.Execute(os.Args[1:]); err != nil {
		os.Exit(pipeline.ExitCode(err))
	}
}
