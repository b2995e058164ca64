// Package git discovers changed files for diff-aware analysis runs.
package git

import (
	"context"
	"fmt"
	"sort"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Engine implements the check.GitEngine port backed by go-git.
type Engine struct{}

// NewEngine constructs a Git engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ChangedFiles returns the paths in the repository at repoDir changed between
// baseRef and the working tree: committed changes against HEAD plus any
// staged or unstaged modifications. Deleted files are excluded since there is
// nothing left to analyse. The result is sorted and free of duplicates.
func (e *Engine) ChangedFiles(ctx context.Context, repoDir, baseRef string) ([]string, error) {
	repo, err := goGit.PlainOpenWithOptions(repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve base ref %q: %w", baseRef, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("load HEAD commit: %w", err)
	}

	changed := map[string]bool{}

	patch, err := baseCommit.PatchContext(ctx, headCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		if to == nil {
			continue // deleted
		}
		changed[to.Path()] = true
	}

	// Uncommitted work counts as changed too: the analysis targets the
	// working tree, not a commit.
	worktree, err := repo.Worktree()
	if err == nil {
		status, err := worktree.Status()
		if err == nil {
			for path, st := range status {
				if st.Worktree == goGit.Deleted || st.Staging == goGit.Deleted {
					continue
				}
				if st.Worktree != goGit.Unmodified || st.Staging != goGit.Unmodified {
					changed[path] = true
				}
			}
		}
	}

	files := make([]string, 0, len(changed))
	for path := range changed {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		name := plumbing.Revision(candidate)
		hash, err := repo.ResolveRevision(name)
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	return nil, lastErr
}
