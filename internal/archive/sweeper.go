// Package archive implements the retention-driven deletion sweep.
package archive

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/metrics"
	"github.com/up2d8/pipeline/internal/pipeline"
)

// Config sets the independent retention windows in days.
type Config struct {
	ArticleDays   int
	AnalyticsDays int
}

// Sweeper deletes article and analytics records past their retention
// windows. It is scheduled without overlap and never raises to the scheduler:
// partial failure is reported through a best-effort failure event and logs.
type Sweeper struct {
	articles  pipeline.ArticleStore
	analytics pipeline.AnalyticsStore
	clock     pipeline.Clock
	cfg       Config
	logger    *zap.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(
	articles pipeline.ArticleStore,
	analytics pipeline.AnalyticsStore,
	clock pipeline.Clock,
	cfg Config,
	logger *zap.Logger,
) *Sweeper {
	metrics.Init()
	return &Sweeper{
		articles:  articles,
		analytics: analytics,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one archival sweep. Only processed articles older than the
// article cutoff are deleted; unprocessed articles survive regardless of age.
// Analytics events older than the analytics cutoff are deleted with no
// filtering by type. Counts accumulated before a partial failure are kept in
// the returned report.
func (s *Sweeper) Run(ctx context.Context) (pipeline.ArchiveReport, error) {
	now := s.clock.Now()
	report := pipeline.ArchiveReport{
		ArticleCutoff: now.AddDate(0, 0, -s.cfg.ArticleDays),
		EventCutoff:   now.AddDate(0, 0, -s.cfg.AnalyticsDays),
	}

	s.logger.Info("starting archival sweep",
		zap.Time("article_cutoff", report.ArticleCutoff),
		zap.Time("event_cutoff", report.EventCutoff),
	)

	articlesDeleted, articleErr := s.articles.DeleteProcessedBefore(ctx, report.ArticleCutoff)
	report.ArticlesDeleted = articlesDeleted
	metrics.ObserveArchiveDeletions("articles", articlesDeleted)
	if articleErr != nil {
		s.logger.Error("article archival failed", zap.Error(articleErr))
	}

	eventsDeleted, eventErr := s.analytics.DeleteEventsBefore(ctx, report.EventCutoff)
	report.EventsDeleted = eventsDeleted
	metrics.ObserveArchiveDeletions("events", eventsDeleted)
	if eventErr != nil {
		s.logger.Error("analytics archival failed", zap.Error(eventErr))
	}

	s.recordSummary(ctx, report, articleErr, eventErr)

	if articleErr != nil {
		return report, fmt.Errorf("delete processed articles: %w", articleErr)
	}
	if eventErr != nil {
		return report, fmt.Errorf("delete analytics events: %w", eventErr)
	}

	s.logger.Info("archival sweep finished",
		zap.Int64("articles_deleted", report.ArticlesDeleted),
		zap.Int64("events_deleted", report.EventsDeleted),
	)
	return report, nil
}

// recordSummary writes one analytics event covering the whole sweep. On a
// partial failure the event carries the error text alongside whatever counts
// were accumulated.
func (s *Sweeper) recordSummary(ctx context.Context, report pipeline.ArchiveReport, errs ...error) {
	details := map[string]any{
		"articles_deleted": report.ArticlesDeleted,
		"events_deleted":   report.EventsDeleted,
		"article_cutoff":   report.ArticleCutoff,
		"event_cutoff":     report.EventCutoff,
	}
	eventType := "archival_run"
	for _, err := range errs {
		if err != nil {
			eventType = "archival_run_failed"
			details["error"] = err.Error()
			break
		}
	}
	event := pipeline.AnalyticsEvent{
		EventType: eventType,
		Details:   details,
		Timestamp: s.clock.Now(),
	}
	if err := s.analytics.RecordEvent(ctx, event); err != nil {
		s.logger.Warn("failed to record archival analytics event", zap.Error(err))
	}
}
