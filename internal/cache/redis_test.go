package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_AddressForms(t *testing.T) {
	c, err := Connect("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	assert.Equal(t, "secret", c.Options().Password)
	_ = c.Close()

	c, err = Connect("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)
	_ = c.Close()

	_, err = Connect("redis://host:notaport/x")
	assert.Error(t, err)
}

func TestPreviewKey(t *testing.T) {
	id := uuid.MustParse("6f1d2c3b-0000-4000-8000-000000000001")
	assert.Equal(t, "idebisnis:preview:6f1d2c3b-0000-4000-8000-000000000001", previewKey(id))
}

// Runs against a real server only when TEST_REDIS_URL is set.
func TestPreviewCache_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := Connect(url)
	require.NoError(t, err)
	c := NewPreviewCache(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	id := uuid.New()
	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, id, "Ringkasan singkat"))
	text, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ringkasan singkat", text)
}
