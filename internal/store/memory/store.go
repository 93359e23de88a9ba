// Package memory provides in-memory store implementations for development
// and testing. The link uniqueness invariant is enforced under a mutex the
// same way the Postgres unique constraint arbitrates concurrent inserts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/up2d8/pipeline/internal/pipeline"
)

// Store implements the article, analytics, and subscriber store interfaces.
type Store struct {
	mu          sync.RWMutex
	articles    map[string]pipeline.Article // keyed by link
	events      []pipeline.AnalyticsEvent
	subscribers []pipeline.Subscriber
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		articles: make(map[string]pipeline.Article),
	}
}

// InsertArticle writes a new article, or reports the existing one on a link
// collision.
func (s *Store) InsertArticle(_ context.Context, article pipeline.Article) (pipeline.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.articles[article.Link]; ok {
		return pipeline.InsertResult{ID: existing.ID, Outcome: pipeline.InsertAlreadyExists}, nil
	}
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	s.articles[article.Link] = article
	return pipeline.InsertResult{ID: article.ID, Outcome: pipeline.InsertCreated}, nil
}

// FilterNewLinks returns candidates whose links are not yet stored,
// preserving input order and collapsing duplicate candidates.
func (s *Store) FilterNewLinks(_ context.Context, links []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(links))
	var fresh []string
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		if _, exists := s.articles[link]; !exists {
			fresh = append(fresh, link)
		}
	}
	return fresh, nil
}

// DeleteProcessedBefore removes processed articles created before cutoff.
func (s *Store) DeleteProcessedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for link, a := range s.articles {
		if a.Processed && a.CreatedAt.Before(cutoff) {
			delete(s.articles, link)
			deleted++
		}
	}
	return deleted, nil
}

// RecordEvent appends one analytics event.
func (s *Store) RecordEvent(_ context.Context, event pipeline.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// DeleteEventsBefore removes events with timestamps before cutoff.
func (s *Store) DeleteEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// ListSubscribers returns all subscribers.
func (s *Store) ListSubscribers(_ context.Context) ([]pipeline.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.Subscriber, len(s.subscribers))
	copy(out, s.subscribers)
	return out, nil
}

// SeedSubscribers replaces the subscriber set (testing/dev helper).
func (s *Store) SeedSubscribers(subs []pipeline.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append([]pipeline.Subscriber(nil), subs...)
}

// ArticleCount reports how many articles are stored (testing helper).
func (s *Store) ArticleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Events returns a copy of the recorded analytics events (testing helper).
func (s *Store) Events() []pipeline.AnalyticsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.AnalyticsEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Article returns the stored article for a link (testing helper).
func (s *Store) Article(link string) (pipeline.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[link]
	return a, ok
}
