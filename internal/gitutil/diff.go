// Package gitutil provides local git operations for the review pipeline.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
)

// NoChanges is returned instead of an empty string when the diff command
// succeeds but the revisions are identical, so downstream logic always has
// non-empty input to reason about.
const NoChanges = "No changes detected between the last two commits."

// VCSError indicates a failed version-control command. Stderr carries the
// captured diagnostic output of the command.
type VCSError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *VCSError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Cmd, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *VCSError) Unwrap() error { return e.Err }

// Diff returns the unified diff between the previous and current commit of
// the working repository. Both output streams are buffered in full before the
// command result is inspected.
func Diff(ctx context.Context) (string, error) {
	out, err := runGit(ctx, "diff", "HEAD~1", "HEAD")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return NoChanges, nil
	}
	return out, nil
}

// HeadSHA resolves the current commit identifier. It first asks go-git,
// which avoids spawning a process, and falls back to `git rev-parse HEAD`
// for repository layouts go-git cannot open.
func HeadSHA(ctx context.Context) (string, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		head, herr := repo.Head()
		if herr == nil {
			return head.Hash().String(), nil
		}
	}

	out, err := runGit(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &VCSError{
			Cmd:    "git " + strings.Join(args, " "),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.String(), nil
}
