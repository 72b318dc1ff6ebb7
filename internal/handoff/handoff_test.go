package handoff

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/dyluth/nodebuild/internal/buildid"
	"github.com/dyluth/nodebuild/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = buildid.Identifier{PlatformTag: "linux-x64", Date: "20240307", RandomSuffix: "123456789"}

type archiverFunc func(ctx context.Context, m Manifest) error

func (f archiverFunc) BuildSymbolsArchive(ctx context.Context, m Manifest) error {
	return f(ctx, m)
}

func TestNewManifest_CopiesLibraries(t *testing.T) {
	libs := []string{"node"}
	m := NewManifest(testID, "out/Release", libs)
	libs[0] = "changed"

	assert.Equal(t, []string{"node"}, m.LibraryNames)
}

func TestHandoff_PassesManifest(t *testing.T) {
	var got Manifest
	a := archiverFunc(func(ctx context.Context, m Manifest) error {
		got = m
		return nil
	})

	m := NewManifest(testID, "out/Release", []string{"node"})
	require.NoError(t, Handoff(context.Background(), a, m))
	assert.Equal(t, m, got)
}

func TestHandoff_WrapsFailure(t *testing.T) {
	cause := errors.New("upload rejected")
	a := archiverFunc(func(ctx context.Context, m Manifest) error { return cause })

	err := Handoff(context.Background(), a, NewManifest(testID, "out/Release", []string{"node"}))

	var archiveErr *ArchiveError
	require.True(t, errors.As(err, &archiveErr))
	assert.Equal(t, "linux-x64-node-20240307-123456789", archiveErr.BuildID)
	assert.True(t, errors.Is(err, cause))
}

func TestHandoff_NilArchiver(t *testing.T) {
	err := Handoff(context.Background(), nil, NewManifest(testID, "out/Release", nil))

	var archiveErr *ArchiveError
	require.True(t, errors.As(err, &archiveErr))
	assert.Contains(t, err.Error(), "no archiver configured")
}

func TestCommandArchiver(t *testing.T) {
	m := NewManifest(testID, "out/Release", []string{"node", "libnode"})

	t.Run("appends manifest to the command", func(t *testing.T) {
		r := supervisor.NewRecorder()
		a := NewCommandArchiver([]string{"node", "scripts/build-symbols.js", "--upload"}, r)

		require.NoError(t, a.BuildSymbolsArchive(context.Background(), m))

		require.Len(t, r.Calls, 1)
		assert.Equal(t, "node", r.Calls[0].Command)
		assert.Equal(t, []string{
			"scripts/build-symbols.js", "--upload",
			"linux-x64-node-20240307-123456789", "out/Release", "node", "libnode",
		}, r.Calls[0].Args)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		a := NewCommandArchiver([]string{"archive-symbols"}, supervisor.NewRecorder(supervisor.Failed(4)))

		err := a.BuildSymbolsArchive(context.Background(), m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 4")
	})

	t.Run("cannot start", func(t *testing.T) {
		a := NewCommandArchiver([]string{"archive-symbols"}, supervisor.NewRecorder(supervisor.Failed(-1)))

		err := a.BuildSymbolsArchive(context.Background(), m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not be started")
	})

	t.Run("killed by signal", func(t *testing.T) {
		a := NewCommandArchiver([]string{"archive-symbols"}, supervisor.NewRecorder(supervisor.Killed(syscall.SIGKILL)))

		err := a.BuildSymbolsArchive(context.Background(), m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "killed by signal")
	})

	t.Run("empty command", func(t *testing.T) {
		r := supervisor.NewRecorder()
		a := NewCommandArchiver(nil, r)

		require.Error(t, a.BuildSymbolsArchive(context.Background(), m))
		assert.Empty(t, r.Calls)
	})

	t.Run("args without a command", func(t *testing.T) {
		a := NewCommandArchiver(nil, supervisor.NewRecorder())

		assert.Equal(t, []string{"linux-x64-node-20240307-123456789", "out/Release", "node", "libnode"}, a.Args(m))
	})

	t.Run("cancelled context", func(t *testing.T) {
		r := supervisor.NewRecorder()
		a := NewCommandArchiver([]string{"archive-symbols"}, r)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, a.BuildSymbolsArchive(ctx, m), context.Canceled)
		assert.Empty(t, r.Calls)
	})
}
