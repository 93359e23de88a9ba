package postgres

import (
	"context"
	"fmt"

	"github.com/up2d8/pipeline/internal/pipeline"
)

// SubscriberStore reads user topic subscriptions. The pipeline never writes
// subscriber rows; the user-facing service owns them. Table schema:
//
//	CREATE TABLE subscribers (
//		id UUID PRIMARY KEY,
//		topics TEXT[] NOT NULL DEFAULT '{}'
//	);
type SubscriberStore struct {
	pool Pool
}

// NewSubscriberStore creates a SubscriberStore on an existing pool.
func NewSubscriberStore(pool Pool) (*SubscriberStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SubscriberStore{pool: pool}, nil
}

// ListSubscribers returns every subscriber with their topic list.
func (s *SubscriberStore) ListSubscribers(ctx context.Context) ([]pipeline.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, topics FROM subscribers`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []pipeline.Subscriber
	for rows.Next() {
		var sub pipeline.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Topics); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}
