// Package worker implements the crawl task execution loop.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/extract"
	"github.com/up2d8/pipeline/internal/metrics"
	"github.com/up2d8/pipeline/internal/pipeline"
)

// Config controls Worker behavior.
type Config struct {
	// SnapshotPrefix is the object path prefix for raw HTML snapshots.
	SnapshotPrefix string
	// RetryTransient nacks the queue message on a failed fetch so the queue
	// redelivers it. When false a failed fetch is logged and dropped.
	RetryTransient bool
}

// Worker consumes crawl tasks and executes the fetch/extract/store pipeline.
// Many worker instances may run concurrently with no coordination beyond the
// article store's link uniqueness constraint.
type Worker struct {
	queue     pipeline.TaskQueue
	renderer  pipeline.Renderer
	extractor *extract.Extractor
	articles  pipeline.ArticleStore
	snapshots pipeline.SnapshotStore
	clock     pipeline.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	queue pipeline.TaskQueue,
	renderer pipeline.Renderer,
	extractor *extract.Extractor,
	articles pipeline.ArticleStore,
	snapshots pipeline.SnapshotStore,
	clock pipeline.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	metrics.Init()
	if extractor == nil {
		extractor = extract.New()
	}
	if snapshots == nil {
		snapshots = pipeline.SnapshotStore(noSnapshots{})
	}
	return &Worker{
		queue:     queue,
		renderer:  renderer,
		extractor: extractor,
		articles:  articles,
		snapshots: snapshots,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run blocks, consuming queue messages until the context finishes.
func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Receive(ctx, w.handleTask)
}

// RunPool starts n concurrent consumers and blocks until all return.
func (w *Worker) RunPool(ctx context.Context, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("worker consumer stopped", zap.Error(err))
			}
		}()
	}
	wg.Wait()
}

// handleTask is the per-message boundary: every failure is logged here and
// the message is acknowledged, except fetch failures when RetryTransient is
// set, which are nacked for redelivery.
func (w *Worker) handleTask(ctx context.Context, url string) error {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()
	start := w.clock.Now()

	outcome, err := w.Process(ctx, url)
	metrics.ObserveCrawlTask(string(outcome), url, w.clock.Now().Sub(start))

	if err != nil {
		w.logger.Error("crawl task failed",
			zap.String("url", url),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		if w.cfg.RetryTransient && outcome == pipeline.CrawlFetchFailed {
			return err
		}
	}
	return nil
}

// Process executes the crawl pipeline for one URL. Duplicate links and empty
// pages are normal outcomes, not errors. Unexpected panics are caught so a
// malformed page can never take down the consumer loop.
func (w *Worker) Process(ctx context.Context, url string) (outcome pipeline.CrawlOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = pipeline.CrawlFetchFailed
			err = fmt.Errorf("panic processing %s: %v", url, r)
		}
	}()

	w.logger.Info("processing crawl task", zap.String("url", url))

	page, err := w.renderer.Render(ctx, url)
	if err != nil {
		return pipeline.CrawlFetchFailed, fmt.Errorf("render page: %w", err)
	}
	if strings.TrimSpace(page.HTML) == "" {
		w.logger.Warn("no html content found", zap.String("url", url))
		return pipeline.CrawlNoContent, nil
	}

	w.saveSnapshot(ctx, url, page.HTML)

	res, err := w.extractor.Extract(page.HTML)
	if err != nil {
		return pipeline.CrawlNoContent, fmt.Errorf("extract content: %w", err)
	}

	now := w.clock.Now()
	article := pipeline.Article{
		Title:     res.Title,
		Link:      url,
		Summary:   extract.Summarize(res.Text, extract.SummaryLines),
		Content:   res.Text,
		Source:    pipeline.SourceCrawler,
		Published: now,
		CreatedAt: now,
		Processed: false,
	}

	insert, err := w.articles.InsertArticle(ctx, article)
	if err != nil {
		return "", fmt.Errorf("insert article: %w", err)
	}
	if !insert.Created() {
		w.logger.Warn("article already exists, skipping",
			zap.String("url", url), zap.String("id", insert.ID))
		return pipeline.CrawlDuplicate, nil
	}

	w.logger.Info("inserted new article",
		zap.String("url", url),
		zap.String("id", insert.ID),
		zap.String("strategy", res.Strategy),
		zap.Duration("fetch_duration", page.Duration),
	)
	return pipeline.CrawlCreated, nil
}

// saveSnapshot persists the raw markup. Snapshot failures are never fatal to
// the task.
func (w *Worker) saveSnapshot(ctx context.Context, url, html string) {
	prefix := strings.Trim(w.cfg.SnapshotPrefix, "/")
	if prefix == "" {
		prefix = "pages"
	}
	sum := sha256.Sum256([]byte(html))
	path := fmt.Sprintf("%s/%s.html", prefix, hex.EncodeToString(sum[:]))
	if _, err := w.snapshots.PutSnapshot(ctx, path, []byte(html)); err != nil {
		w.logger.Warn("failed to save page snapshot",
			zap.String("url", url), zap.Error(err))
	}
}

type noSnapshots struct{}

func (noSnapshots) PutSnapshot(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}
