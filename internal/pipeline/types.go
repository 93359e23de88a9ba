// Package pipeline defines core types shared across subsystems.
package pipeline

import (
	"time"
)

// Source identifies where an article record originated.
type Source string

// Source values persisted in the article store.
const (
	SourceRSS     Source = "rss"
	SourceCrawler Source = "intelligent_crawler"
	SourceManual  Source = "manual"
)

// Article is the canonical content unit produced by the pipeline.
// Link is globally unique; the store arbitrates concurrent inserts.
type Article struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Source    Source    `json:"source"`
	Published time.Time `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	Processed bool      `json:"processed"`
}

// InsertOutcome distinguishes a fresh insert from a link collision.
type InsertOutcome string

// Insert outcomes returned by ArticleStore.InsertArticle.
const (
	InsertCreated       InsertOutcome = "created"
	InsertAlreadyExists InsertOutcome = "already_exists"
)

// InsertResult reports how an article insert resolved. A link collision is
// a normal outcome, not an error.
type InsertResult struct {
	ID      string
	Outcome InsertOutcome
}

// Created reports whether the insert produced a new record.
func (r InsertResult) Created() bool {
	return r.Outcome == InsertCreated
}

// Subscriber carries the topic subscriptions of one user. Subscriber records
// are written by the (external) user-facing service; the pipeline only reads
// their topic lists.
type Subscriber struct {
	ID     string   `json:"id"`
	Topics []string `json:"topics"`
}

// AnalyticsEvent is an append-only record of a pipeline outcome. Events are
// write-only from the pipeline's perspective and are removed only by the
// archival sweeper.
type AnalyticsEvent struct {
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// CrawlOutcome is the terminal state of processing one crawl task.
type CrawlOutcome string

// Crawl outcomes reported by the worker.
const (
	CrawlCreated     CrawlOutcome = "created"
	CrawlDuplicate   CrawlOutcome = "duplicate"
	CrawlNoContent   CrawlOutcome = "no_content"
	CrawlFetchFailed CrawlOutcome = "fetch_failed"
)

// Page is a rendered page snapshot returned by a Renderer.
type Page struct {
	URL      string
	HTML     string
	Duration time.Duration
}

// ArchiveReport summarizes one archival sweep.
type ArchiveReport struct {
	ArticlesDeleted int64     `json:"articles_deleted"`
	EventsDeleted   int64     `json:"events_deleted"`
	ArticleCutoff   time.Time `json:"article_cutoff"`
	EventCutoff     time.Time `json:"event_cutoff"`
}
