package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit and returns its path and HEAD hash
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# node\n"), 0644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("README.md")
	require.NoError(t, err)

	hash, err := worktree.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Node Build", Email: "build@nodebuild.local", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestInspect_CleanRepository(t *testing.T) {
	dir, head := initRepo(t)

	source, err := Inspect(dir)
	require.NoError(t, err)
	assert.Equal(t, head, source.Revision)
	assert.NotEmpty(t, source.Branch)
	assert.True(t, source.Clean)
}

func TestInspect_FromSubdirectory(t *testing.T) {
	dir, head := initRepo(t)
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0755))

	source, err := Inspect(sub)
	require.NoError(t, err)
	assert.Equal(t, head, source.Revision)
}

func TestInspect_DirtyRepository(t *testing.T) {
	dir, _ := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0644))

	source, err := Inspect(dir)
	require.NoError(t, err)
	assert.False(t, source.Clean)
}

func TestInspect_NotARepository(t *testing.T) {
	_, err := Inspect(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRepository))
}

func TestShortRevision(t *testing.T) {
	assert.Equal(t, "01234567", ShortRevision("0123456789abcdef"))
	assert.Equal(t, "abc", ShortRevision("abc"))
}
