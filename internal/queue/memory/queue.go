// Package memory provides a queue implementation for local development and
// tests. It honors the same at-least-once contract as the Pub/Sub queue: a
// nacked message goes back on the channel for redelivery.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/up2d8/pipeline/internal/metrics"
)

// ErrClosed is returned when enqueueing to a closed queue.
var ErrClosed = errors.New("queue closed")

// Queue is a bounded in-memory task queue with context-aware operations.
type Queue struct {
	ch      chan string
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	metrics.Init()
	return &Queue{
		ch: make(chan string, capacity),
	}
}

// Enqueue pushes a URL into the queue or returns if the context ends.
func (q *Queue) Enqueue(ctx context.Context, url string) error {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return ErrClosed
	}
	q.closeMu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- url:
		metrics.ObserveQueueMessage("enqueued")
		return nil
	}
}

// Receive delivers queued URLs to handler until ctx finishes or the queue is
// closed and drained. A non-nil handler error puts the URL back for
// redelivery.
func (q *Queue) Receive(ctx context.Context, handler func(ctx context.Context, url string) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case url, ok := <-q.ch:
			if !ok {
				return nil
			}
			if err := handler(ctx, url); err != nil {
				metrics.ObserveQueueMessage("nacked")
				q.redeliver(ctx, url)
				continue
			}
			metrics.ObserveQueueMessage("acked")
		}
	}
}

func (q *Queue) redeliver(ctx context.Context, url string) {
	select {
	case q.ch <- url:
	case <-ctx.Done():
	}
}

// Close closes the underlying channel for shutdown. Receive drains whatever
// is already buffered.
func (q *Queue) Close() error {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return nil
	}
	close(q.ch)
	q.closed = true
	return nil
}
