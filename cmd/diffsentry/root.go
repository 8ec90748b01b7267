package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diffsentry",
	Short: "diffsentry posts LLM-generated code reviews on pull requests.",
	Long: `diffsentry reviews the latest changes of a repository with an LLM and
posts the findings as a pull request review.

In CI it runs one-shot via "diffsentry review", reading its target from the
standard GitHub Actions environment. "diffsentry serve" runs the same pipeline
as a GitHub App webhook server instead.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
