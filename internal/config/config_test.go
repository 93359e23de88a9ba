package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "latest articles about %s", cfg.Discovery.QueryTemplate)
	assert.Equal(t, 5, cfg.Discovery.ResultsPerTopic)
	assert.Equal(t, 60*time.Second, cfg.Crawler.NavTimeout)
	assert.False(t, cfg.Crawler.RetryTransient)
	assert.Equal(t, 90, cfg.Retention.ArticleDays)
	assert.Equal(t, 180, cfg.Retention.AnalyticsDays)
	assert.Equal(t, "memory", cfg.Queue.Provider)
	assert.Equal(t, "noop", cfg.Search.Provider)
	assert.Equal(t, "noop", cfg.Snapshot.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "template without placeholder",
			mutate: func(c *Config) { c.Discovery.QueryTemplate = "no placeholder" },
			want:   "query_template",
		},
		{
			name:   "zero results per topic",
			mutate: func(c *Config) { c.Discovery.ResultsPerTopic = 0 },
			want:   "results_per_topic",
		},
		{
			name:   "zero nav timeout",
			mutate: func(c *Config) { c.Crawler.NavTimeout = 0 },
			want:   "nav_timeout",
		},
		{
			name:   "google search without key",
			mutate: func(c *Config) { c.Search.Provider = "google" },
			want:   "search.api_key",
		},
		{
			name:   "pubsub without topic",
			mutate: func(c *Config) { c.Queue.Provider = "pubsub" },
			want:   "queue.project_id",
		},
		{
			name:   "postgres without dsn",
			mutate: func(c *Config) { c.DB.Provider = "postgres" },
			want:   "db.dsn",
		},
		{
			name:   "auth enabled without key",
			mutate: func(c *Config) { c.Auth.Enabled = true },
			want:   "auth.api_key",
		},
		{
			name:   "negative retention",
			mutate: func(c *Config) { c.Retention.ArticleDays = -1 },
			want:   "article_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRetentionCutoffs(t *testing.T) {
	t.Parallel()

	cfg := Config{Retention: RetentionConfig{ArticleDays: 90, AnalyticsDays: 180}}
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -90), cfg.ArticleCutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -180), cfg.AnalyticsCutoff(now))
}
