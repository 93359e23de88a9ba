// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper. Each
// component receives the values it needs at construction; nothing reads the
// environment at call time.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Retention RetentionConfig `mapstructure:"retention"`
	Search    SearchConfig    `mapstructure:"search"`
	Queue     QueueConfig     `mapstructure:"queue"`
	DB        DBConfig        `mapstructure:"db"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP trigger surface.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles for the manual trigger
// endpoint. Disabled by default; enabling requires an API key.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DiscoveryConfig governs the topic-driven search pass.
type DiscoveryConfig struct {
	QueryTemplate   string `mapstructure:"query_template"`
	ResultsPerTopic int    `mapstructure:"results_per_topic"`
}

// CrawlerConfig governs the crawl worker pool.
type CrawlerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	NavTimeout        time.Duration `mapstructure:"nav_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	DomainQPS         float64       `mapstructure:"domain_qps"`
	RenderConcurrency int           `mapstructure:"render_concurrency"`

	// RetryTransient nacks queue messages on transient fetch failures so the
	// queue redelivers them. Off by default: a failed fetch is dropped after
	// logging.
	RetryTransient bool `mapstructure:"retry_transient"`
}

// RetentionConfig sets the archival cutoff windows.
type RetentionConfig struct {
	ArticleDays   int `mapstructure:"article_days"`
	AnalyticsDays int `mapstructure:"analytics_days"`
}

// SearchConfig selects and configures the web-search backend.
type SearchConfig struct {
	Provider string `mapstructure:"provider"` // "google" or "noop"
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
}

// QueueConfig selects and configures the crawl task queue.
type QueueConfig struct {
	Provider       string `mapstructure:"provider"` // "pubsub" or "memory"
	ProjectID      string `mapstructure:"project_id"`
	TopicID        string `mapstructure:"topic_id"`
	SubscriptionID string `mapstructure:"subscription_id"`
	Depth          int    `mapstructure:"depth"` // memory queue capacity
}

// DBConfig selects and configures persistence.
type DBConfig struct {
	Provider string `mapstructure:"provider"` // "postgres" or "memory"
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// SnapshotConfig controls raw-HTML snapshot persistence.
type SnapshotConfig struct {
	Provider string `mapstructure:"provider"` // "noop", "gcs", or "memory"
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. An empty path skips the config
// file and relies on defaults plus UP2D8_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("UP2D8")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("discovery.query_template", "latest articles about %s")
	v.SetDefault("discovery.results_per_topic", 5)
	v.SetDefault("crawler.concurrency", 4)
	v.SetDefault("crawler.nav_timeout", "60s")
	v.SetDefault("crawler.user_agent", "up2d8-crawler/1.0")
	v.SetDefault("crawler.domain_qps", 0)
	v.SetDefault("crawler.render_concurrency", 2)
	v.SetDefault("crawler.retry_transient", false)
	v.SetDefault("retention.article_days", 90)
	v.SetDefault("retention.analytics_days", 180)
	v.SetDefault("search.provider", "noop")
	v.SetDefault("queue.provider", "memory")
	v.SetDefault("queue.depth", 64)
	v.SetDefault("db.provider", "memory")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("snapshot.provider", "noop")
	v.SetDefault("snapshot.prefix", "pages")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if !strings.Contains(c.Discovery.QueryTemplate, "%s") {
		return fmt.Errorf("discovery.query_template must contain a %%s topic placeholder")
	}
	if c.Discovery.ResultsPerTopic <= 0 {
		return fmt.Errorf("discovery.results_per_topic must be > 0")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.NavTimeout <= 0 {
		return fmt.Errorf("crawler.nav_timeout must be > 0")
	}
	if c.Crawler.RenderConcurrency <= 0 {
		return fmt.Errorf("crawler.render_concurrency must be > 0")
	}
	if c.Retention.ArticleDays <= 0 {
		return fmt.Errorf("retention.article_days must be > 0")
	}
	if c.Retention.AnalyticsDays <= 0 {
		return fmt.Errorf("retention.analytics_days must be > 0")
	}
	switch c.Search.Provider {
	case "noop":
	case "google":
		if c.Search.APIKey == "" || c.Search.EngineID == "" {
			return fmt.Errorf("search.api_key and search.engine_id must be set for the google provider")
		}
	default:
		return fmt.Errorf("unknown search provider: %s", c.Search.Provider)
	}
	switch c.Queue.Provider {
	case "memory":
		if c.Queue.Depth <= 0 {
			return fmt.Errorf("queue.depth must be > 0 for the memory provider")
		}
	case "pubsub":
		if c.Queue.ProjectID == "" || c.Queue.TopicID == "" || c.Queue.SubscriptionID == "" {
			return fmt.Errorf("queue.project_id, queue.topic_id and queue.subscription_id must be set for pubsub")
		}
	default:
		return fmt.Errorf("unknown queue provider: %s", c.Queue.Provider)
	}
	switch c.DB.Provider {
	case "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set for the postgres provider")
		}
	default:
		return fmt.Errorf("unknown db provider: %s", c.DB.Provider)
	}
	switch c.Snapshot.Provider {
	case "noop", "memory":
	case "gcs":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("snapshot.bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("unknown snapshot provider: %s", c.Snapshot.Provider)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// ArticleCutoff returns the archival cutoff for article records relative to now.
func (c Config) ArticleCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.Retention.ArticleDays)
}

// AnalyticsCutoff returns the archival cutoff for analytics events relative to now.
func (c Config) AnalyticsCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.Retention.AnalyticsDays)
}
