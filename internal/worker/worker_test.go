package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/pipeline"
	queuemem "github.com/up2d8/pipeline/internal/queue/memory"
	storemem "github.com/up2d8/pipeline/internal/store/memory"
)

type fakeRenderer struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, url string) (pipeline.Page, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errs[url]; err != nil {
		return pipeline.Page{}, err
	}
	return pipeline.Page{URL: url, HTML: f.pages[url], Duration: 10 * time.Millisecond}, nil
}

func (f *fakeRenderer) renderCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

const samplePage = `<html><head><title>Sample</title></head><body><article>Body text here.</article></body></html>`

func newTestWorker(store *storemem.Store, renderer *fakeRenderer, cfg Config) (*Worker, *queuemem.Queue) {
	q := queuemem.NewQueue(8)
	w := New(
		q,
		renderer,
		nil,
		store,
		nil,
		fixedClock{now: time.Unix(1700000000, 0).UTC()},
		cfg,
		zap.NewNop(),
	)
	return w, q
}

func TestProcessCreatesArticle(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{pages: map[string]string{"https://example.com/a": samplePage}}
	w, _ := newTestWorker(store, renderer, Config{})

	outcome, err := w.Process(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, pipeline.CrawlCreated, outcome)

	article, ok := store.Article("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "Sample", article.Title)
	assert.Equal(t, "Body text here.", article.Content)
	assert.Equal(t, "Body text here....", article.Summary)
	assert.Equal(t, pipeline.SourceCrawler, article.Source)
	assert.False(t, article.Processed)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), article.Published)
}

func TestProcessRedeliveryYieldsDuplicate(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{pages: map[string]string{"https://example.com/a": samplePage}}
	w, _ := newTestWorker(store, renderer, Config{})

	first, err := w.Process(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	second, err := w.Process(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, pipeline.CrawlCreated, first)
	assert.Equal(t, pipeline.CrawlDuplicate, second)
	assert.Equal(t, 1, store.ArticleCount(), "redelivery must never create a second record")
}

func TestProcessEmptyPageWritesNothing(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{pages: map[string]string{"https://example.com/empty": "   "}}
	w, _ := newTestWorker(store, renderer, Config{})

	outcome, err := w.Process(context.Background(), "https://example.com/empty")
	require.NoError(t, err)
	assert.Equal(t, pipeline.CrawlNoContent, outcome)
	assert.Zero(t, store.ArticleCount())
}

func TestProcessFetchFailureWritesNothing(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{errs: map[string]error{
		"https://example.com/down": errors.New("navigation timeout"),
	}}
	w, _ := newTestWorker(store, renderer, Config{})

	outcome, err := w.Process(context.Background(), "https://example.com/down")
	require.Error(t, err)
	assert.Equal(t, pipeline.CrawlFetchFailed, outcome)
	assert.Zero(t, store.ArticleCount())
}

func TestHandleTaskAcksFetchFailureByDefault(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{errs: map[string]error{
		"https://example.com/down": errors.New("navigation timeout"),
	}}
	w, _ := newTestWorker(store, renderer, Config{})

	// Default policy: the failure is swallowed so the message is acked.
	require.NoError(t, w.handleTask(context.Background(), "https://example.com/down"))
}

func TestHandleTaskNacksFetchFailureWhenRetryEnabled(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{errs: map[string]error{
		"https://example.com/down": errors.New("navigation timeout"),
	}}
	w, _ := newTestWorker(store, renderer, Config{RetryTransient: true})

	require.Error(t, w.handleTask(context.Background(), "https://example.com/down"))
}

func TestRunConsumesQueue(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{pages: map[string]string{
		"https://example.com/1": samplePage,
		"https://example.com/2": samplePage,
	}}
	w, q := newTestWorker(store, renderer, Config{})

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, "https://example.com/1"))
	require.NoError(t, q.Enqueue(ctx, "https://example.com/2"))
	require.NoError(t, q.Close())

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 2, store.ArticleCount())
}

func TestRunPoolAtLeastOnceTolerance(t *testing.T) {
	t.Parallel()

	store := storemem.NewStore()
	renderer := &fakeRenderer{pages: map[string]string{"https://example.com/dup": samplePage}}
	w, q := newTestWorker(store, renderer, Config{})

	// The same URL delivered twice: one created, one duplicate, one record.
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, "https://example.com/dup"))
	require.NoError(t, q.Enqueue(ctx, "https://example.com/dup"))
	require.NoError(t, q.Close())

	w.RunPool(ctx, 2)
	assert.Equal(t, 1, store.ArticleCount())
	assert.Equal(t, 2, renderer.renderCalls())
}
