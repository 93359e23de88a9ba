// Package queue provides the crawl task queue implementations. The queue
// carries plain UTF-8 URL strings with at-least-once delivery; consumers must
// tolerate redelivery.
package queue

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/metrics"
)

// PubSubQueue implements pipeline.TaskQueue on Google Cloud Pub/Sub.
type PubSubQueue struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	logger *zap.Logger
}

// NewPubSubQueue connects to Pub/Sub and verifies the topic and subscription
// exist. It authenticates using Application Default Credentials.
func NewPubSubQueue(ctx context.Context, projectID, topicID, subscriptionID string, logger *zap.Logger) (*PubSubQueue, error) {
	metrics.Init()

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		closeQuietly(client, logger)
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !ok {
		closeQuietly(client, logger)
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}

	sub := client.Subscription(subscriptionID)
	ok, err = sub.Exists(ctx)
	if err != nil {
		closeQuietly(client, logger)
		return nil, fmt.Errorf("check pubsub subscription %q: %w", subscriptionID, err)
	}
	if !ok {
		closeQuietly(client, logger)
		return nil, fmt.Errorf("pubsub subscription %q does not exist in project %q", subscriptionID, projectID)
	}

	return &PubSubQueue{
		client: client,
		topic:  topic,
		sub:    sub,
		logger: logger,
	}, nil
}

// Enqueue publishes one URL and blocks until the server acknowledges it, so
// discovery can report enqueue failures per URL instead of losing them.
func (q *PubSubQueue) Enqueue(ctx context.Context, url string) error {
	result := q.topic.Publish(ctx, &pubsub.Message{Data: []byte(url)})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish crawl task: %w", err)
	}
	metrics.ObserveQueueMessage("enqueued")
	return nil
}

// Receive pulls messages until ctx finishes, invoking handler once per
// delivery. A nil handler error acks the message; a non-nil error nacks it
// and Pub/Sub redelivers.
func (q *PubSubQueue) Receive(ctx context.Context, handler func(ctx context.Context, url string) error) error {
	err := q.sub.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
		if err := handler(msgCtx, string(msg.Data)); err != nil {
			q.logger.Warn("nacking crawl task for redelivery",
				zap.String("url", string(msg.Data)),
				zap.Error(err),
			)
			msg.Nack()
			metrics.ObserveQueueMessage("nacked")
			return
		}
		msg.Ack()
		metrics.ObserveQueueMessage("acked")
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("pubsub receive: %w", err)
	}
	return nil
}

// Close stops the publisher and closes the underlying client connection.
func (q *PubSubQueue) Close() error {
	q.topic.Stop()
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}

func closeQuietly(client *pubsub.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("failed to close pubsub client", zap.Error(err))
	}
}
