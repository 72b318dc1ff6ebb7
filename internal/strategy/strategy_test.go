package strategy

import (
	"errors"
	"runtime"
	"strconv"
	"syscall"
	"testing"

	"github.com/dyluth/nodebuild/internal/config"
	"github.com/dyluth/nodebuild/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	imageBuildCall = supervisor.Call{
		Command: "docker",
		Args:    []string{"build", ".", "-f", "Dockerfile.build", "-t", "node-build"},
	}
	containerRunCall = supervisor.Call{
		Command: "docker",
		Args:    []string{"run", "-v", "/work/node:/node", "node-build"},
	}
)

func linuxConfig(useContainer bool) config.BuildConfig {
	return config.BuildConfig{
		HostPlatform: config.PlatformLinux,
		UseContainer: useContainer,
		Parallelism:  8,
		WorkDir:      "/work/node",
	}
}

func TestDispatch_NonLinuxRunsMake(t *testing.T) {
	cfg := config.BuildConfig{
		HostPlatform: config.PlatformOther,
		Parallelism:  runtime.NumCPU(),
	}
	r := supervisor.NewRecorder()

	require.NoError(t, Dispatch(cfg, r))

	require.Len(t, r.Calls, 1)
	assert.Equal(t, "make", r.Calls[0].Command)
	assert.Equal(t, []string{"-j" + strconv.Itoa(runtime.NumCPU()), "-C", "out", "BUILDTYPE=Release"}, r.Calls[0].Args)
}

func TestDispatch_NonLinuxIgnoresContainerFlag(t *testing.T) {
	cfg := config.BuildConfig{HostPlatform: config.PlatformOther, UseContainer: true, Parallelism: 4}
	r := supervisor.NewRecorder()

	require.NoError(t, Dispatch(cfg, r))

	require.Len(t, r.Calls, 1)
	assert.Equal(t, []string{"-j4", "-C", "out", "BUILDTYPE=Release"}, r.Calls[0].Args)
}

func TestDispatch_LinuxWithRebuild(t *testing.T) {
	r := supervisor.NewRecorder()

	require.NoError(t, Dispatch(linuxConfig(true), r))

	assert.Equal(t, []supervisor.Call{imageBuildCall, containerRunCall}, r.Calls)
}

func TestDispatch_LinuxWithoutRebuild(t *testing.T) {
	r := supervisor.NewRecorder()

	require.NoError(t, Dispatch(linuxConfig(false), r))

	assert.Equal(t, []supervisor.Call{containerRunCall}, r.Calls)
}

func TestDispatch_ImageBuildFailureAborts(t *testing.T) {
	r := supervisor.NewRecorder(supervisor.Failed(1))

	err := Dispatch(linuxConfig(true), r)

	require.Error(t, err)
	assert.Len(t, r.Calls, 1, "container run must not start after a failed image build")

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "image build", buildErr.Step)
	assert.Equal(t, 1, buildErr.ExitCode)
	assert.True(t, errors.Is(err, ErrBuild))
}

func TestDispatch_RunFailureIsReported(t *testing.T) {
	r := supervisor.NewRecorder(supervisor.Failed(2))

	err := Dispatch(linuxConfig(false), r)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "container run", buildErr.Step)
	assert.Equal(t, 2, buildErr.ExitCode)
	assert.Equal(t, "docker run -v /work/node:/node node-build", buildErr.Command)
}

func TestDispatch_NativeFailureIsReported(t *testing.T) {
	cfg := config.BuildConfig{HostPlatform: config.PlatformOther, Parallelism: 2}
	r := supervisor.NewRecorder(supervisor.Failed(-1))

	err := Dispatch(cfg, r)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, -1, buildErr.ExitCode)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestDispatch_KilledBuildIsNotAStartFailure(t *testing.T) {
	cfg := config.BuildConfig{HostPlatform: config.PlatformOther, Parallelism: 8}
	r := supervisor.NewRecorder(supervisor.Killed(syscall.SIGKILL))

	err := Dispatch(cfg, r)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, syscall.SIGKILL, buildErr.Signal)
	assert.Equal(t, 137, buildErr.ExitCode)
	assert.Contains(t, err.Error(), "native build killed by signal 9")
	assert.NotContains(t, err.Error(), "failed to start")
}

func TestDispatch_InvalidConfig(t *testing.T) {
	r := supervisor.NewRecorder()

	err := Dispatch(config.BuildConfig{HostPlatform: config.PlatformOther}, r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid build configuration")
	assert.Empty(t, r.Calls)
}

func TestSelect(t *testing.T) {
	assert.Equal(t, Container{RebuildImage: true, WorkDir: "/work/node"}, Select(linuxConfig(true)))
	assert.Equal(t, Native{Parallelism: 3}, Select(config.BuildConfig{HostPlatform: config.PlatformOther, Parallelism: 3}))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, []string{
		"docker build . -f Dockerfile.build -t node-build",
		"docker run -v /work/node:/node node-build",
	}, Describe(Select(linuxConfig(true))))

	assert.Equal(t, []string{"make -j16 -C out BUILDTYPE=Release"}, Describe(Native{Parallelism: 16}))
}
