package strategy

import (
	"fmt"

	"github.com/dyluth/nodebuild/internal/config"
	"github.com/dyluth/nodebuild/internal/supervisor"
)

const (
	// ImageTag names the build environment image
	ImageTag = "node-build"

	// Dockerfile describes the build environment image
	Dockerfile = "Dockerfile.build"

	// ContainerMountPoint is where the checkout is mounted inside the container
	ContainerMountPoint = "/node"
)

// Strategy is one of Container or Native
type Strategy interface {
	Name() string
	steps() []step
}

// Container builds inside the node-build image, optionally rebuilding it first
type Container struct {
	RebuildImage bool
	WorkDir      string
}

// Native runs make directly against the host toolchain
type Native struct {
	Parallelism int
}

func (Container) Name() string { return "container" }
func (Native) Name() string    { return "native" }

type step struct {
	name    string
	command string
	args    []string
}

func (c Container) steps() []step {
	var steps []step
	if c.RebuildImage {
		steps = append(steps, step{
			name:    "image build",
			command: "docker",
			args:    []string{"build", ".", "-f", Dockerfile, "-t", ImageTag},
		})
	}
	return append(steps, step{
		name:    "container run",
		command: "docker",
		args:    []string{"run", "-v", c.WorkDir + ":" + ContainerMountPoint, ImageTag},
	})
}

func (n Native) steps() []step {
	return []step{{
		name:    "native build",
		command: "make",
		args:    []string{fmt.Sprintf("-j%d", n.Parallelism), "-C", "out", "BUILDTYPE=Release"},
	}}
}

// Select picks the strategy for cfg. Exactly one strategy runs per invocation.
func Select(cfg config.BuildConfig) Strategy {
	if cfg.HostPlatform == config.PlatformLinux {
		return Container{RebuildImage: cfg.UseContainer, WorkDir: cfg.WorkDir}
	}
	return Native{Parallelism: cfg.Parallelism}
}

// Execute runs every step of s through r, stopping at the first failure
func Execute(s Strategy, r supervisor.Runner) error {
	for _, st := range s.steps() {
		result := r.Run(st.command, st.args)
		if !result.Succeeded {
			return &BuildError{
				Step:     st.name,
				Command:  supervisor.CommandLine(st.command, st.args),
				ExitCode: result.ExitCode,
				Signal:   result.Signal,
			}
		}
	}
	return nil
}

// Dispatch selects the strategy for cfg and executes it
func Dispatch(cfg config.BuildConfig, r supervisor.Runner) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid build configuration: %w", err)
	}
	return Execute(Select(cfg), r)
}

// Describe lists the command lines s would run, in order
func Describe(s Strategy) []string {
	var lines []string
	for _, st := range s.steps() {
		lines = append(lines, supervisor.CommandLine(st.command, st.args))
	}
	return lines
}
