package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// ReviewEvent is the internal view of a single review request, regardless of
// whether it originated from the CLI entry point or a webhook delivery.
type ReviewEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string

	PRNumber int
	HeadSHA  string

	// InstallationID is set only for webhook-originated events and selects
	// GitHub App installation authentication over a personal access token.
	InstallationID int64

	// Diff holds a pre-fetched unified diff. When empty, the job fetches the
	// diff from the GitHub API instead.
	Diff string
}

// reviewedActions are the pull_request webhook actions that trigger a review.
var reviewedActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal ReviewEvent representation. It acts as an
// anti-corruption layer: the incoming webhook payload is validated and
// reduced to the fields a review job needs before it crosses into the job
// queue.
func EventFromPullRequest(event *github.PullRequestEvent) (*ReviewEvent, error) {
	if !reviewedActions[event.GetAction()] {
		return nil, fmt.Errorf("action %q does not trigger a review", event.GetAction())
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	prNumber := event.GetPullRequest().GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &ReviewEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		PRNumber:       prNumber,
		HeadSHA:        event.GetPullRequest().GetHead().GetSHA(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}
