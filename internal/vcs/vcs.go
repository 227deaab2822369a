// Package vcs wraps the git commands the workflow core treats as an opaque
// version-control integration: current branch, status, main branch name,
// checkout, restore-to-HEAD, stash, discard, commit, and push. Every
// operation shells out to the git binary the same way the teacher's git
// history scanner did, trading a native git library for the one dependency
// guaranteed to match whatever git the user already has installed.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo runs git commands against a working tree rooted at Dir.
type Repo struct {
	Dir string
}

func Open(dir string) *Repo {
	return &Repo{Dir: dir}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit returns the current HEAD commit hash.
func (r *Repo) HeadCommit(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Status describes the working tree's staged, unstaged, and untracked files.
type Status struct {
	Staged    []string
	Unstaged  []string
	Untracked []string
}

func (s Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Unstaged) == 0 && len(s.Untracked) == 0
}

// Status parses `git status --porcelain` into staged/unstaged/untracked buckets.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return Status{}, err
	}
	var st Status
	scanner := strings.Split(out, "\n")
	for _, line := range scanner {
		if len(line) < 3 {
			continue
		}
		index, worktree := line[0], line[1]
		path := strings.TrimSpace(line[3:])
		switch {
		case index == '?' && worktree == '?':
			st.Untracked = append(st.Untracked, path)
		default:
			if index != ' ' {
				st.Staged = append(st.Staged, path)
			}
			if worktree != ' ' {
				st.Unstaged = append(st.Unstaged, path)
			}
		}
	}
	return st, nil
}

// MainBranch returns the repository's default branch, preferring origin/HEAD
// and falling back to whichever of main/master exists locally.
func (r *Repo) MainBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		name := strings.TrimSpace(out)
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			return name[idx+1:], nil
		}
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := r.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no main branch found")
}

// Checkout switches to branch, creating it from the current HEAD if create is true.
func (r *Repo) Checkout(ctx context.Context, branch string, create bool) error {
	if create {
		_, err := r.run(ctx, "checkout", "-b", branch)
		return err
	}
	_, err := r.run(ctx, "checkout", branch)
	return err
}

// RestoreFile discards working-tree changes to path, restoring it to HEAD.
func (r *Repo) RestoreFile(ctx context.Context, path string) error {
	_, err := r.run(ctx, "checkout", "--", path)
	return err
}

// StashPush stashes the working tree, including untracked files, under message.
func (r *Repo) StashPush(ctx context.Context, message string) error {
	_, err := r.run(ctx, "stash", "push", "-u", "-m", message)
	return err
}

// DiscardAll resets tracked changes and removes untracked files.
func (r *Repo) DiscardAll(ctx context.Context) error {
	if _, err := r.run(ctx, "reset", "--hard", "HEAD"); err != nil {
		return err
	}
	_, err := r.run(ctx, "clean", "-fd")
	return err
}

// CommitAll stages every change and commits it with message.
func (r *Repo) CommitAll(ctx context.Context, message string) error {
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		return err
	}
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes branch to origin, setting the upstream on first push.
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "push", "-u", "origin", branch)
	return err
}
