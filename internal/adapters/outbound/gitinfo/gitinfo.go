package gitinfo

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git. Source directories
// are usually nested inside a repository, so the lookup walks up to the
// nearest .git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsGitRepo(path string) bool {
	_, err := open(path)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

func (g *GitInfoAdapter) Uncommitted(file string) (bool, error) {
	repo, err := open(filepath.Dir(file))
	if err != nil {
		return false, fmt.Errorf("opening git repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), file)
	if err != nil {
		return false, fmt.Errorf("resolving %s in worktree: %w", file, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading worktree status: %w", err)
	}
	// Status only lists files that differ from HEAD.
	st, ok := status[filepath.ToSlash(rel)]
	if !ok {
		return false, nil
	}
	return st.Worktree != git.Unmodified || st.Staging != git.Unmodified, nil
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}
