// Package gitsync mirrors remote git repositories into local directories,
// cloning on first use and fast-forwarding afterwards.
package gitsync

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	RemoteName    = "origin"
	DefaultBranch = "master"
)

type Outcome string

const (
	OutcomeCloned        Outcome = "cloned"
	OutcomeUpToDate      Outcome = "up-to-date"
	OutcomeFastForwarded Outcome = "fast-forwarded"
	OutcomeDiverged      Outcome = "diverged"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Sync brings localPath in line with remote. A diverged mirror is left
// untouched and reported as OutcomeDiverged, not as an error.
func (e *Engine) Sync(ctx context.Context, remote, localPath string) (Outcome, error) {
	repository, err := git.PlainOpen(localPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return e.clone(ctx, remote, localPath)
	}
	if err != nil {
		return "", &Error{Op: "open", Remote: remote, Err: err}
	}

	return e.update(ctx, remote, repository)
}

func (e *Engine) clone(ctx context.Context, remote, localPath string) (Outcome, error) {
	repository, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
		URL:        remote,
		RemoteName: RemoteName,
		Tags:       git.NoTags,
	})
	if err != nil {
		return "", &Error{Op: "clone", Remote: remote, Kind: ErrCloneFailed, Err: err}
	}

	if head, err := repository.Head(); err == nil {
		slog.Info("Repository cloned", "remote", remote, "path", localPath, "commit", shortHash(head.Hash()))
	} else {
		slog.Info("Repository cloned", "remote", remote, "path", localPath)
	}

	return OutcomeCloned, nil
}

func (e *Engine) update(ctx context.Context, remote string, repository *git.Repository) (Outcome, error) {
	wt, err := repository.Worktree()
	if err != nil {
		return "", &Error{Op: "worktree", Remote: remote, Err: err}
	}

	// 1. Discard local modifications
	head, headErr := repository.Head()
	if headErr == nil {
		if err := wt.Reset(&git.ResetOptions{Commit: head.Hash(), Mode: git.HardReset}); err != nil {
			return "", &Error{Op: "reset", Remote: remote, Err: err}
		}
	}

	// 2. Resolve default branch
	branch := resolveDefaultBranch(repository)

	// 3. Fetch it
	if err := fetchOrigin(ctx, repository, branch); err != nil {
		return "", &Error{Op: "fetch", Remote: remote, Kind: ErrFetchFailed, Err: err}
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName(RemoteName, branch), true)
	if err != nil {
		return "", &Error{Op: "fetch", Remote: remote, Kind: ErrFetchFailed, Err: err}
	}

	// Nothing checked out yet; take whatever the remote has.
	if headErr != nil {
		if err := fastForward(repository, wt, branch, remoteRef.Hash()); err != nil {
			return "", &Error{Op: "checkout", Remote: remote, Err: err}
		}
		slog.Info("Fast-forwarded repository", "remote", remote, "branch", branch, "to", shortHash(remoteRef.Hash()))
		return OutcomeFastForwarded, nil
	}

	// 4. Merge analysis
	local, fetched := head.Hash(), remoteRef.Hash()

	upToDate, err := isAncestor(repository, fetched, local)
	if err != nil {
		return "", &Error{Op: "merge-analysis", Remote: remote, Err: err}
	}
	if upToDate {
		slog.Info("Repository already up-to-date", "remote", remote, "branch", branch, "commit", shortHash(local))
		return OutcomeUpToDate, nil
	}

	canFastForward, err := isAncestor(repository, local, fetched)
	if err != nil {
		return "", &Error{Op: "merge-analysis", Remote: remote, Err: err}
	}
	if !canFastForward {
		slog.Warn("Repository diverged from remote, leaving as is", "remote", remote, "branch", branch,
			"local", shortHash(local), "remote_commit", shortHash(fetched))
		return OutcomeDiverged, nil
	}

	if err := fastForward(repository, wt, branch, fetched); err != nil {
		return "", &Error{Op: "checkout", Remote: remote, Err: err}
	}

	slog.Info("Fast-forwarded repository", "remote", remote, "branch", branch, "from", shortHash(local), "to", shortHash(fetched))

	return OutcomeFastForwarded, nil
}

func fetchOrigin(ctx context.Context, repository *git.Repository, branch string) error {
	refSpec := ggitcfg.RefSpec("+refs/heads/" + branch + ":refs/remotes/" + RemoteName + "/" + branch)

	err := repository.FetchContext(ctx, &git.FetchOptions{
		RemoteName: RemoteName,
		RefSpecs:   []ggitcfg.RefSpec{refSpec},
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// resolveDefaultBranch prefers the remote's advertised HEAD, then the local
// HEAD branch, then DefaultBranch.
func resolveDefaultBranch(repository *git.Repository) string {
	if ref, err := repository.Reference(plumbing.NewRemoteHEADReferenceName(RemoteName), false); err == nil &&
		ref.Type() == plumbing.SymbolicReference {
		prefix := "refs/remotes/" + RemoteName + "/"
		if target := ref.Target().String(); strings.HasPrefix(target, prefix) {
			return strings.TrimPrefix(target, prefix)
		}
	}

	if ref, err := repository.Reference(plumbing.HEAD, false); err == nil &&
		ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
		return ref.Target().Short()
	}

	return DefaultBranch
}

func fastForward(repository *git.Repository, wt *git.Worktree, branch string, target plumbing.Hash) error {
	branchRef := plumbing.NewBranchReferenceName(branch)

	if err := repository.Storer.SetReference(plumbing.NewHashReference(branchRef, target)); err != nil {
		return err
	}
	if err := repository.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
		return err
	}

	return wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true})
}

// isAncestor reports whether a is reachable from b (a == b counts).
func isAncestor(repository *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repository.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:8]
}
