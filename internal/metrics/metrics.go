// Package metrics exposes Prometheus collectors for the pipeline services.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	discoveryURLsTotal      *prometheus.CounterVec
	discoveryTopicsTotal    *prometheus.CounterVec
	crawlTasksTotal         *prometheus.CounterVec
	crawlDurationSeconds    *prometheus.HistogramVec
	archiveDeletionsTotal   *prometheus.CounterVec
	queueMessagesTotal      *prometheus.CounterVec
	crawlActiveWorkersGauge prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		discoveryURLsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_discovery_urls_total",
				Help: "URLs seen by discovery, labeled by stage (found, new, enqueued).",
			},
			[]string{"stage"},
		)

		discoveryTopicsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_discovery_topics_total",
				Help: "Topic searches performed, labeled by result (ok, failed, empty).",
			},
			[]string{"result"},
		)

		crawlTasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_crawl_tasks_total",
				Help: "Crawl tasks processed, labeled by outcome and site.",
			},
			[]string{"outcome", "site"},
		)

		crawlDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_crawl_duration_seconds",
				Help:    "Histogram of end-to-end crawl task durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		)

		archiveDeletionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_archive_deletions_total",
				Help: "Records removed by archival sweeps, labeled by kind (articles, events).",
			},
			[]string{"kind"},
		)

		queueMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_queue_messages_total",
				Help: "Queue messages, labeled by direction (enqueued, acked, nacked).",
			},
			[]string{"direction"},
		)

		crawlActiveWorkersGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_crawl_active_workers",
				Help: "Number of workers currently processing a crawl task.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDiscoveryURLs adds to the per-stage discovery URL counter.
func ObserveDiscoveryURLs(stage string, count int) {
	if count > 0 {
		discoveryURLsTotal.WithLabelValues(stage).Add(float64(count))
	}
}

// ObserveTopicSearch increments the per-result topic search counter.
func ObserveTopicSearch(result string) {
	discoveryTopicsTotal.WithLabelValues(result).Inc()
}

// ObserveCrawlTask records the outcome and duration of one crawl task.
func ObserveCrawlTask(outcome string, site string, duration time.Duration) {
	crawlTasksTotal.WithLabelValues(outcome, SanitizeSite(site)).Inc()
	crawlDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveArchiveDeletions adds to the per-kind archival deletion counter.
func ObserveArchiveDeletions(kind string, count int64) {
	if count > 0 {
		archiveDeletionsTotal.WithLabelValues(kind).Add(float64(count))
	}
}

// ObserveQueueMessage increments the queue message counter for the direction.
func ObserveQueueMessage(direction string) {
	queueMessagesTotal.WithLabelValues(direction).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	crawlActiveWorkersGauge.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	crawlActiveWorkersGauge.Dec()
}
