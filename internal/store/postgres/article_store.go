package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/up2d8/pipeline/internal/pipeline"
)

// ArticleStore persists articles in Postgres. It assumes a table schema like:
//
//	CREATE TABLE articles (
//		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//		title TEXT NOT NULL,
//		link TEXT NOT NULL UNIQUE,
//		summary TEXT NOT NULL DEFAULT '',
//		content TEXT NOT NULL DEFAULT '',
//		tags TEXT[] NOT NULL DEFAULT '{}',
//		source TEXT NOT NULL,
//		published TIMESTAMPTZ NOT NULL,
//		processed BOOLEAN NOT NULL DEFAULT FALSE,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The UNIQUE constraint on link is the authority for deduplication: when
// concurrent workers race on the same URL, exactly one insert wins.
type ArticleStore struct {
	pool Pool
}

// NewArticleStore creates an ArticleStore on an existing pool.
func NewArticleStore(pool Pool) (*ArticleStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &ArticleStore{pool: pool}, nil
}

const insertArticleSQL = `
INSERT INTO articles (title, link, summary, content, tags, source, published, processed, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (link) DO NOTHING
RETURNING id`

// InsertArticle writes a new article. A link collision is a normal outcome:
// it resolves to InsertAlreadyExists with the existing record's ID.
func (s *ArticleStore) InsertArticle(ctx context.Context, article pipeline.Article) (pipeline.InsertResult, error) {
	if article.Link == "" {
		return pipeline.InsertResult{}, fmt.Errorf("article link is required")
	}
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	var id string
	err := s.pool.QueryRow(ctx, insertArticleSQL,
		article.Title,
		article.Link,
		article.Summary,
		article.Content,
		tags,
		string(article.Source),
		article.Published,
		article.Processed,
		article.CreatedAt,
	).Scan(&id)
	if err == nil {
		return pipeline.InsertResult{ID: id, Outcome: pipeline.InsertCreated}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return pipeline.InsertResult{}, fmt.Errorf("insert article: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no row, so the link already exists.
	err = s.pool.QueryRow(ctx, `SELECT id FROM articles WHERE link = $1`, article.Link).Scan(&id)
	if err != nil {
		return pipeline.InsertResult{}, fmt.Errorf("look up existing article: %w", err)
	}
	return pipeline.InsertResult{ID: id, Outcome: pipeline.InsertAlreadyExists}, nil
}

// FilterNewLinks returns the subset of links not already stored, preserving
// input order. Existence is checked with one batched query.
func (s *ArticleStore) FilterNewLinks(ctx context.Context, links []string) ([]string, error) {
	if len(links) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT link FROM articles WHERE link = ANY($1)`, links)
	if err != nil {
		return nil, fmt.Errorf("query existing links: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan existing link: %w", err)
		}
		existing[link] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing links: %w", err)
	}

	seen := make(map[string]struct{}, len(links))
	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		if _, exists := existing[link]; !exists {
			fresh = append(fresh, link)
		}
	}
	return fresh, nil
}

// DeleteProcessedBefore removes processed articles created before cutoff and
// returns the number of rows removed. Unprocessed articles are never deleted
// regardless of age.
func (s *ArticleStore) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM articles WHERE processed = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete processed articles: %w", err)
	}
	return tag.RowsAffected(), nil
}
