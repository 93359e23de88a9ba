package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newDiscoverCmd creates the 'discover' subcommand. It runs one discovery
// pass: aggregate subscriber topics, search each one, and enqueue URLs not
// yet stored.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Run one topic discovery pass",
		Long: `Aggregates the topics of all subscribers, searches the web for recent
articles about each, filters out URLs already stored, and enqueues the rest
as crawl tasks.`,
		RunE: runDiscoverCommand,
	}
}

func runDiscoverCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	report, err := appInstance.DiscoveryRunner().Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run discovery: %w", err)
	}

	appInstance.Logger().Info("discovery pass finished",
		zap.Int("topics", report.Topics),
		zap.Int("urls_found", report.URLsFound),
		zap.Int("urls_new", report.URLsNew),
		zap.Int("enqueued", report.Enqueued),
	)
	return nil
}
