package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newWorkCmd creates the 'work' subcommand. It runs the crawl worker pool
// against the task queue until interrupted.
func newWorkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "work",
		Short: "Run the crawl worker pool",
		Long: `Consumes crawl tasks from the queue, renders each URL in a headless
browser, extracts readable article content, and stores the result. Runs
until interrupted.`,
		RunE: runWorkCommand,
	}
}

func runWorkCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	w, cleanup, err := appInstance.NewWorker()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			logger.Warn("failed to stop renderer", zap.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concurrency := appInstance.Config().Crawler.Concurrency
	logger.Info("starting crawl workers", zap.Int("concurrency", concurrency))
	w.RunPool(ctx, concurrency)
	logger.Info("crawl workers stopped")
	return nil
}
