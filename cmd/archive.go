package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newArchiveCmd creates the 'archive' subcommand. It runs one retention
// sweep over stored articles and analytics events.
func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Run one archival sweep",
		Long: `Deletes processed articles older than the article retention window and
analytics events older than the analytics retention window, then records a
summary analytics event.`,
		RunE: runArchiveCommand,
	}
}

func runArchiveCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	report, err := appInstance.Sweeper().Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run archival sweep: %w", err)
	}

	appInstance.Logger().Info("archival sweep finished",
		zap.Int64("articles_deleted", report.ArticlesDeleted),
		zap.Int64("events_deleted", report.EventsDeleted),
	)
	return nil
}
