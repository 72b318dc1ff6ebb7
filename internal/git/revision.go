package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when dir is not inside a Git repository
var ErrNotRepository = errors.New("not a Git repository")

// Source describes the checkout a build was produced from
type Source struct {
	Revision string // HEAD commit hash
	Branch   string // Short branch name, empty when HEAD is detached
	Clean    bool   // No staged, unstaged or untracked changes
}

// Inspect opens the repository containing dir (searching parent directories)
// and reports its HEAD revision and working tree state
func Inspect(dir string) (*Source, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open Git repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	source := &Source{Revision: ref.Hash().String()}
	if ref.Name().IsBranch() {
		source.Branch = ref.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to check Git status: %w", err)
	}
	source.Clean = status.IsClean()

	return source, nil
}

// ShortRevision truncates a commit hash for display
func ShortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
