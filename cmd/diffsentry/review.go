package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/diffsentry/diffsentry/internal/config"
	"github.com/diffsentry/diffsentry/internal/core"
	"github.com/diffsentry/diffsentry/internal/gitutil"
	"github.com/diffsentry/diffsentry/internal/jobs"
	"github.com/diffsentry/diffsentry/internal/llm"
	"github.com/diffsentry/diffsentry/internal/logger"
)

// previewChars bounds the diff preview printed by --dry-run.
const previewChars = 2000

var dryRun bool

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the latest commit's diff and post the findings",
	Long: `Review the diff between the previous and current commit of the working
repository and post the findings as a pull request review.

The publishing target is taken from the GITHUB_REPOSITORY, GITHUB_TOKEN and
GITHUB_EVENT_PATH environment variables; when any of them is missing, the
review still runs but nothing is posted.`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print a diff preview and exit without calling any remote API")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, nil)

	diff, err := gitutil.Diff(ctx)
	if err != nil {
		return err
	}

	repoCfg, err := config.LoadRepoConfig(".")
	switch {
	case errors.Is(err, config.ErrRepoConfigNotFound):
		log.Debug("no .diffsentry.yml found, using defaults")
	case err != nil:
		return err
	default:
		if len(repoCfg.Ignore) > 0 {
			diff = gitutil.FilterDiff(diff, repoCfg.Ignore)
			if diff == "" {
				diff = gitutil.NoChanges
			}
		}
		if repoCfg.Model != "" {
			log.Info("using repository model override", "model", repoCfg.Model)
			cfg.LLM.Model = repoCfg.Model
		}
	}

	if dryRun {
		printDiffPreview(cmd.OutOrStdout(), diff)
		return nil
	}

	job := jobs.NewReviewJob(cfg, llm.NewClient(cfg.LLM, log), log)
	return job.Run(ctx, &core.ReviewEvent{Diff: diff})
}

func printDiffPreview(w io.Writer, diff string) {
	titleColor.Fprintln(w, "diffsentry dry run")
	dimColor.Fprintf(w, "diff length: %d chars\n\n", len(diff))

	preview := llm.Truncate(diff, previewChars)
	fmt.Fprintln(w, preview)
	if len(preview) < len(diff) {
		dimColor.Fprintln(w, "... (truncated)")
	}
}
