package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	uri, err := store.PutSnapshot(context.Background(), "pages/abc.html", []byte("<html/>"))
	require.NoError(t, err)
	assert.Equal(t, "memory://pages/abc.html", uri)

	data, ok := store.Get("pages/abc.html")
	require.True(t, ok)
	assert.Equal(t, []byte("<html/>"), data)
}

func TestNoOpStore(t *testing.T) {
	t.Parallel()

	uri, err := NoOpStore{}.PutSnapshot(context.Background(), "pages/abc.html", nil)
	require.NoError(t, err)
	assert.Empty(t, uri)
}
