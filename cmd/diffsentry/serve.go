package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diffsentry/diffsentry/internal/config"
	"github.com/diffsentry/diffsentry/internal/jobs"
	"github.com/diffsentry/diffsentry/internal/llm"
	"github.com/diffsentry/diffsentry/internal/logger"
	"github.com/diffsentry/diffsentry/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review pipeline as a GitHub App webhook server",
	Long: `Run an HTTP server that listens for pull_request webhooks and queues a
review for every opened, synchronized or reopened pull request. Requires
GITHUB_APP_ID, GITHUB_WEBHOOK_SECRET and GITHUB_PRIVATE_KEY_PATH.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, nil)

	job := jobs.NewReviewJob(cfg, llm.NewClient(cfg.LLM, log), log)
	dispatcher := jobs.NewDispatcher(job, cfg.Server.MaxWorkers, log)
	srv := server.NewServer(cfg, dispatcher, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		dispatcher.Stop()
		return err
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	if err := srv.Stop(); err != nil {
		log.Error("failed to stop server cleanly", "error", err)
	}
	dispatcher.Stop()
	return nil
}
