package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/config"
)

type fakeEnqueuer struct {
	urls []string
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, url string) error {
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, url)
	return nil
}

func newTestServer(queue *fakeEnqueuer, cfg config.Config) *Server {
	return NewServer(queue, cfg, zap.NewNop())
}

func TestServer_TriggerCrawl_Succeeds(t *testing.T) {
	t.Parallel()

	queue := &fakeEnqueuer{}
	server := newTestServer(queue, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/crawl",
		bytes.NewBufferString(`{"url":"https://example.com/story"}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, rec.Body.String(), "queued")
	require.Equal(t, []string{"https://example.com/story"}, queue.urls)
}

func TestServer_TriggerCrawl_InvalidJSON(t *testing.T) {
	t.Parallel()

	queue := &fakeEnqueuer{}
	server := newTestServer(queue, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/crawl", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, queue.urls)
}

func TestServer_TriggerCrawl_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{}`},
		{name: "relative", body: `{"url":"/story"}`},
		{name: "wrong scheme", body: `{"url":"ftp://example.com/story"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			queue := &fakeEnqueuer{}
			server := newTestServer(queue, config.Config{})

			req := httptest.NewRequest(http.MethodPost, "/v1/crawl", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			server.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Empty(t, queue.urls)
		})
	}
}

func TestServer_TriggerCrawl_EnqueueFailure(t *testing.T) {
	t.Parallel()

	queue := &fakeEnqueuer{err: errors.New("queue closed")}
	server := newTestServer(queue, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/crawl",
		bytes.NewBufferString(`{"url":"https://example.com/story"}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_APIKeyGuardsTriggerOnly(t *testing.T) {
	t.Parallel()

	queue := &fakeEnqueuer{}
	cfg := config.Config{Auth: config.AuthConfig{Enabled: true, APIKey: "secret"}}
	server := newTestServer(queue, cfg)

	// No key: forbidden.
	req := httptest.NewRequest(http.MethodPost, "/v1/crawl",
		bytes.NewBufferString(`{"url":"https://example.com/story"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, queue.urls)

	// Header key accepted.
	req = httptest.NewRequest(http.MethodPost, "/v1/crawl",
		bytes.NewBufferString(`{"url":"https://example.com/story"}`))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Health stays open.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeEnqueuer{}, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}
