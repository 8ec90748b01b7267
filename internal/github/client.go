// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/diffsentry/diffsentry/internal/core"
)

// ChangedFile holds the filename and patch data for a single file included in
// a pull request. The patch is used to validate which lines can carry an
// inline comment.
type ChangedFile struct {
	Filename string
	Patch    string
}

// DraftReviewComment represents a single inline comment to be posted as part
// of a review. Comments are always anchored to the new side of the diff.
type DraftReviewComment struct {
	Path string
	Line int
	Body string
}

// ReviewRequest is one review-creation call: a summary body plus zero or more
// inline comments, anchored to a commit.
type ReviewRequest struct {
	CommitID string
	Body     string
	Comments []DraftReviewComment
}

// Client defines the GitHub operations the review pipeline needs.
type Client interface {
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
	CreateReview(ctx context.Context, owner, repo string, number int, review ReviewRequest) error
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps an already authenticated go-github client.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a GitHub client authenticated with a personal access
// token, the authentication mode used by the CLI entry point in CI.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// CreateReview submits a pull request review with event COMMENT in a single
// API call.
func (g *gitHubClient) CreateReview(ctx context.Context, owner, repo string, number int, review ReviewRequest) error {
	comments := make([]*github.DraftReviewComment, 0, len(review.Comments))
	for _, c := range review.Comments {
		comments = append(comments, &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Side: github.Ptr("RIGHT"),
			Body: github.Ptr(c.Body),
		})
	}

	reviewRequest := &github.PullRequestReviewRequest{
		Body:     github.Ptr(review.Body),
		Event:    github.Ptr("COMMENT"),
		Comments: comments,
	}
	if review.CommitID != "" {
		reviewRequest.CommitID = github.Ptr(review.CommitID)
	}

	_, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, reviewRequest)
	if err != nil {
		g.logger.Error("failed to create pull request review", "owner", owner, "repo", repo, "pr", number, "error", err)
		return upstreamError(err)
	}
	return nil
}

// GetPullRequestDiff retrieves the raw unified diff of a pull request.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Error("failed to get pull request diff", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", upstreamError(err)
	}
	return diff, nil
}

// GetChangedFiles retrieves the list of files modified in a pull request,
// following pagination (the API returns at most 100 files per page).
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	var allFiles []ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, upstreamError(err)
		}

		for _, file := range files {
			allFiles = append(allFiles, ChangedFile{
				Filename: file.GetFilename(),
				Patch:    file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// upstreamError converts go-github's error response into the application's
// upstream error type, surfacing the status, message and per-field error
// details of the REST reply.
func upstreamError(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		body := ghErr.Message
		for _, detail := range ghErr.Errors {
			body += "; " + detail.Error()
		}
		return &core.UpstreamError{
			Service:    "github",
			StatusCode: status,
			Body:       body,
		}
	}
	return err
}
