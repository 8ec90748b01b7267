// Package jobs implements the review pipeline and its background dispatch.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/diffsentry/diffsentry/internal/config"
	"github.com/diffsentry/diffsentry/internal/core"
	"github.com/diffsentry/diffsentry/internal/github"
	"github.com/diffsentry/diffsentry/internal/gitutil"
	"github.com/diffsentry/diffsentry/internal/llm"
)

const fallbackPreamble = "Automated review (the model reply could not be parsed into structured issues):"

const noIssuesBody = "Automated review: no critical issues found."

// Requester asks the model for a review of a diff and returns its raw reply.
type Requester interface {
	ReviewDiff(ctx context.Context, diff string) (string, error)
}

// ReviewJob performs one end-to-end review run: diff, model request,
// interpretation, publishing. It retains no state between runs.
type ReviewJob struct {
	cfg       *config.Config
	requester Requester
	logger    *slog.Logger

	// Indirections for tests.
	newClient func(ctx context.Context, event *core.ReviewEvent) (github.Client, error)
	headSHA   func(ctx context.Context) (string, error)
}

// NewReviewJob creates a review job. The GitHub client is resolved per run:
// installation authentication for webhook events, a personal access token
// otherwise.
func NewReviewJob(cfg *config.Config, requester Requester, logger *slog.Logger) *ReviewJob {
	j := &ReviewJob{
		cfg:       cfg,
		requester: requester,
		logger:    logger,
		headSHA:   gitutil.HeadSHA,
	}
	j.newClient = j.defaultClient
	return j
}

func (j *ReviewJob) defaultClient(ctx context.Context, event *core.ReviewEvent) (github.Client, error) {
	if event.InstallationID != 0 {
		return github.CreateInstallationClient(ctx, j.cfg, event.InstallationID, j.logger)
	}
	if j.cfg.GitHub.Token == "" {
		return nil, nil
	}
	return github.NewPATClient(ctx, j.cfg.GitHub.Token, j.logger), nil
}

// Run executes the pipeline for a single event. VCS, configuration and
// upstream failures are returned and abort the run; missing publishing
// prerequisites are logged and skipped; a malformed model reply is always
// recovered by posting it verbatim as a fallback comment.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	diff := event.Diff
	var ghc github.Client

	if diff == "" {
		// Webhook-originated run: the diff comes from the GitHub API.
		var err error
		ghc, err = j.newClient(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}
		if ghc == nil {
			return fmt.Errorf("no GitHub credentials available to fetch the diff")
		}
		diff, err = ghc.GetPullRequestDiff(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
		if err != nil {
			return err
		}
		if strings.TrimSpace(diff) == "" {
			diff = gitutil.NoChanges
		}
	}

	raw, err := j.requester.ReviewDiff(ctx, diff)
	if err != nil {
		return err
	}

	outcome := interpret(raw)

	owner, name, prNumber, ok := j.target(event)
	if !ok {
		return nil
	}

	if ghc == nil {
		ghc, err = j.newClient(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}
		if ghc == nil {
			j.logger.Warn("GITHUB_TOKEN is not set, skipping review publishing")
			return nil
		}
	}

	commitID, err := j.commitID(ctx, event)
	if err != nil {
		return err
	}

	if !outcome.Structured() {
		j.logger.Warn("model reply is not parseable, posting raw text as fallback")
		return j.publishFallback(ctx, ghc, owner, name, prNumber, commitID, outcome.Fallback)
	}
	return j.publishStructured(ctx, ghc, owner, name, prNumber, commitID, outcome.Issues)
}

// interpret parses the model's raw reply into the run's single outcome:
// structured issues, or the raw text destined for fallback posting.
func interpret(raw string) core.ReviewOutcome {
	issues, err := llm.ParseIssues(raw)
	if err != nil {
		return core.ReviewOutcome{Fallback: raw}
	}
	return core.ReviewOutcome{Issues: issues}
}

// target resolves the owner, repository and pull request number to publish
// to. For CLI runs these come from the environment and the CI event payload;
// a missing piece skips publishing without failing the run.
func (j *ReviewJob) target(event *core.ReviewEvent) (owner, name string, prNumber int, ok bool) {
	if event.RepoOwner != "" && event.RepoName != "" && event.PRNumber > 0 {
		return event.RepoOwner, event.RepoName, event.PRNumber, true
	}

	owner, name, ok = j.cfg.GitHub.RepoOwnerName()
	if !ok {
		j.logger.Warn("GITHUB_REPOSITORY is not set or malformed, skipping review publishing",
			"value", j.cfg.GitHub.Repository)
		return "", "", 0, false
	}

	if j.cfg.GitHub.EventPath == "" {
		j.logger.Warn("GITHUB_EVENT_PATH is not set, skipping review publishing")
		return "", "", 0, false
	}
	prNumber, err := github.PullRequestNumberFromEvent(j.cfg.GitHub.EventPath)
	if err != nil {
		j.logger.Warn("could not resolve pull request number, skipping review publishing", "error", err)
		return "", "", 0, false
	}

	return owner, name, prNumber, true
}

// commitID prefers the head SHA carried by the event, then the CI-provided
// SHA, then the local repository HEAD.
func (j *ReviewJob) commitID(ctx context.Context, event *core.ReviewEvent) (string, error) {
	if event.HeadSHA != "" {
		return event.HeadSHA, nil
	}
	if j.cfg.GitHub.SHA != "" {
		return j.cfg.GitHub.SHA, nil
	}
	return j.headSHA(ctx)
}

func (j *ReviewJob) publishStructured(ctx context.Context, ghc github.Client, owner, name string, prNumber int, commitID string, issues []core.Issue) error {
	inline := issues
	var offDiff []core.Issue

	// Best-effort anchoring check: issues pointing at lines outside the diff
	// would make the whole review-creation call fail, so they are folded into
	// the summary body instead. If the file listing itself fails, post
	// everything inline and let the API decide.
	if len(issues) > 0 {
		files, err := ghc.GetChangedFiles(ctx, owner, name, prNumber)
		if err != nil {
			j.logger.Warn("could not list changed files, posting all issues inline", "error", err)
		} else {
			inline, offDiff = SplitByCommentable(j.logger, issues, github.CommentableLinesByFile(files))
		}
	}

	comments := make([]github.DraftReviewComment, 0, len(inline))
	for _, issue := range inline {
		comments = append(comments, github.DraftReviewComment{
			Path: issue.Path,
			Line: issue.Line,
			Body: formatIssue(issue),
		})
	}

	review := github.ReviewRequest{
		CommitID: commitID,
		Body:     summaryBody(issues, offDiff),
		Comments: comments,
	}

	if err := ghc.CreateReview(ctx, owner, name, prNumber, review); err != nil {
		return err
	}
	j.logger.Info("posted structured review", "repo", owner+"/"+name, "pr", prNumber,
		"inline", len(comments), "off_diff", len(offDiff))
	return nil
}

func (j *ReviewJob) publishFallback(ctx context.Context, ghc github.Client, owner, name string, prNumber int, commitID string, raw string) error {
	review := github.ReviewRequest{
		CommitID: commitID,
		Body:     fallbackPreamble + "\n\n" + raw,
	}
	if err := ghc.CreateReview(ctx, owner, name, prNumber, review); err != nil {
		return err
	}
	j.logger.Info("posted fallback review", "repo", owner+"/"+name, "pr", prNumber)
	return nil
}

// formatIssue renders one issue as an inline comment body.
func formatIssue(issue core.Issue) string {
	return fmt.Sprintf("**%s** %s\n\n%s", issue.Severity, issue.Title, issue.Body)
}

// summaryBody renders the review body: an issue count (or the all-clear
// affirmation) plus any findings that could not be anchored to diff lines.
func summaryBody(issues, offDiff []core.Issue) string {
	var b strings.Builder
	if len(issues) == 0 {
		b.WriteString(noIssuesBody)
	} else {
		fmt.Fprintf(&b, "Automated review found %d issue(s) requiring attention.", len(issues))
	}

	if len(offDiff) > 0 {
		b.WriteString("\n\n### Findings outside the diff\n")
		for _, issue := range offDiff {
			fmt.Fprintf(&b, "\n- `%s:%d` %s\n", issue.Path, issue.Line, formatIssue(issue))
		}
	}
	return b.String()
}
