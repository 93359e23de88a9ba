// Package discovery finds candidate article URLs for subscribed topics and
// feeds them to the crawl queue.
package discovery

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/metrics"
	"github.com/up2d8/pipeline/internal/pipeline"
)

// Config controls one discovery pass.
type Config struct {
	// QueryTemplate must contain one %s placeholder for the topic.
	QueryTemplate string
	// ResultsPerTopic caps search results requested per topic.
	ResultsPerTopic int
}

// Report summarizes one discovery pass.
type Report struct {
	Topics    int `json:"topics"`
	URLsFound int `json:"urls_found"`
	URLsNew   int `json:"urls_new"`
	Enqueued  int `json:"enqueued"`
}

// Runner executes the discovery pass: aggregate topics, search each one,
// filter already-known URLs, and enqueue the remainder as crawl tasks.
type Runner struct {
	subscribers pipeline.SubscriberStore
	search      pipeline.SearchClient
	articles    pipeline.ArticleStore
	queue       pipeline.Enqueuer
	analytics   pipeline.AnalyticsStore
	clock       pipeline.Clock
	cfg         Config
	logger      *zap.Logger
}

// NewRunner constructs a Runner.
func NewRunner(
	subscribers pipeline.SubscriberStore,
	search pipeline.SearchClient,
	articles pipeline.ArticleStore,
	queue pipeline.Enqueuer,
	analytics pipeline.AnalyticsStore,
	clock pipeline.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	metrics.Init()
	return &Runner{
		subscribers: subscribers,
		search:      search,
		articles:    articles,
		queue:       queue,
		analytics:   analytics,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// AggregateTopics returns the deduplicated union of all subscribers' topics,
// sorted for deterministic runs. An empty result means nothing to discover.
func (r *Runner) AggregateTopics(ctx context.Context) ([]string, error) {
	subs, err := r.subscribers.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	set := make(map[string]struct{})
	for _, sub := range subs {
		for _, topic := range sub.Topics {
			if topic != "" {
				set[topic] = struct{}{}
			}
		}
	}
	topics := make([]string, 0, len(set))
	for topic := range set {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}

// Run executes one discovery pass. A single topic's search failure or a
// single URL's enqueue failure never aborts the rest of the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	topics, err := r.AggregateTopics(ctx)
	if err != nil {
		return Report{}, err
	}
	if len(topics) == 0 {
		r.logger.Warn("no subscriber topics found, nothing to discover")
		return Report{}, nil
	}
	r.logger.Info("aggregated subscriber topics", zap.Int("count", len(topics)))

	report := Report{Topics: len(topics)}
	found := r.searchTopics(ctx, topics)
	report.URLsFound = len(found)
	metrics.ObserveDiscoveryURLs("found", len(found))

	if len(found) == 0 {
		r.logger.Warn("search returned no urls")
		r.recordRunEvent(ctx, report)
		return report, nil
	}

	fresh, err := r.articles.FilterNewLinks(ctx, found)
	if err != nil {
		return report, fmt.Errorf("filter new links: %w", err)
	}
	report.URLsNew = len(fresh)
	metrics.ObserveDiscoveryURLs("new", len(fresh))

	for _, url := range fresh {
		if err := r.queue.Enqueue(ctx, url); err != nil {
			r.logger.Error("failed to enqueue crawl task",
				zap.String("url", url), zap.Error(err))
			continue
		}
		report.Enqueued++
	}
	metrics.ObserveDiscoveryURLs("enqueued", report.Enqueued)

	r.logger.Info("discovery pass finished",
		zap.Int("topics", report.Topics),
		zap.Int("urls_found", report.URLsFound),
		zap.Int("urls_new", report.URLsNew),
		zap.Int("enqueued", report.Enqueued),
	)
	r.recordRunEvent(ctx, report)
	return report, nil
}

// searchTopics queries every topic sequentially and unions the results,
// keeping first-seen order. Per-topic failures are logged and skipped.
func (r *Runner) searchTopics(ctx context.Context, topics []string) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, topic := range topics {
		query := fmt.Sprintf(r.cfg.QueryTemplate, topic)
		results, err := r.search.Search(ctx, query, r.cfg.ResultsPerTopic)
		if err != nil {
			r.logger.Error("search failed for topic",
				zap.String("topic", topic), zap.Error(err))
			metrics.ObserveTopicSearch("failed")
			continue
		}
		if len(results) == 0 {
			metrics.ObserveTopicSearch("empty")
			continue
		}
		metrics.ObserveTopicSearch("ok")
		for _, url := range results {
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls
}

func (r *Runner) recordRunEvent(ctx context.Context, report Report) {
	event := pipeline.AnalyticsEvent{
		EventType: "discovery_run",
		Details: map[string]any{
			"topics":     report.Topics,
			"urls_found": report.URLsFound,
			"urls_new":   report.URLsNew,
			"enqueued":   report.Enqueued,
		},
		Timestamp: r.clock.Now(),
	}
	if err := r.analytics.RecordEvent(ctx, event); err != nil {
		r.logger.Warn("failed to record discovery analytics event", zap.Error(err))
	}
}
