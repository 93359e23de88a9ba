package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/up2d8/pipeline/internal/pipeline"
)

// AnalyticsStore writes pipeline outcome events into Postgres. Table schema:
//
//	CREATE TABLE analytics_events (
//		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//		event_type TEXT NOT NULL,
//		details JSONB NOT NULL DEFAULT '{}',
//		ts TIMESTAMPTZ NOT NULL
//	);
type AnalyticsStore struct {
	pool Pool
}

// NewAnalyticsStore creates an AnalyticsStore on an existing pool.
func NewAnalyticsStore(pool Pool) (*AnalyticsStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &AnalyticsStore{pool: pool}, nil
}

// RecordEvent appends one analytics event.
func (s *AnalyticsStore) RecordEvent(ctx context.Context, event pipeline.AnalyticsEvent) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	details := event.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal event details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analytics_events (event_type, details, ts) VALUES ($1, $2, $3)`,
		event.EventType, detailsJSON, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// DeleteEventsBefore removes events older than cutoff, regardless of type,
// and returns the number of rows removed.
func (s *AnalyticsStore) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analytics_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete analytics events: %w", err)
	}
	return tag.RowsAffected(), nil
}
