package pipeline

import (
	"context"
	"time"
)

// ArticleStore persists articles and answers link-existence queries.
// Implementations must enforce link uniqueness at the storage layer so that
// concurrent workers racing on the same URL resolve to exactly one Created.
type ArticleStore interface {
	// InsertArticle writes a new article. A link collision resolves to
	// InsertAlreadyExists with the existing record's ID and a nil error.
	InsertArticle(ctx context.Context, article Article) (InsertResult, error)

	// FilterNewLinks returns the subset of links not already stored, using a
	// single batched existence query.
	FilterNewLinks(ctx context.Context, links []string) ([]string, error)

	// DeleteProcessedBefore removes processed articles created before cutoff
	// and returns the number of rows removed. Unprocessed articles are never
	// touched regardless of age.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalyticsStore records pipeline outcome events and supports retention sweeps.
type AnalyticsStore interface {
	RecordEvent(ctx context.Context, event AnalyticsEvent) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubscriberStore reads user topic subscriptions.
type SubscriberStore interface {
	ListSubscribers(ctx context.Context) ([]Subscriber, error)
}

// Enqueuer is the producer side of the task queue. Discovery and the manual
// trigger surface depend on this interface only, so they are testable without
// a real queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, url string) error
}

// TaskQueue carries discovered URLs to the worker pool with at-least-once
// delivery. Receive blocks until the context finishes, invoking handler once
// per delivery; a nil handler error acknowledges the message, a non-nil error
// nacks it for redelivery. Ordering across messages is not guaranteed.
type TaskQueue interface {
	Enqueuer
	Receive(ctx context.Context, handler func(ctx context.Context, url string) error) error
	Close() error
}

// SearchClient executes one topic-scoped query against a web-search backend
// and returns candidate article URLs.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Renderer fetches a URL through a browser engine and returns the rendered
// markup. Implementations own their navigation timeout.
type Renderer interface {
	Render(ctx context.Context, url string) (Page, error)
}

// SnapshotStore persists raw rendered HTML and returns a URI for the object.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, path string, data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
