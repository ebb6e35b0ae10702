package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilience-labs/climatechat/schema"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "en:what is climate change?", Key("en", "  What is climate change?  "))
	assert.Equal(t, "fr:bonjour", Key("fr", "BONJOUR"))
	// Same text in different languages must not collide.
	assert.NotEqual(t, Key("en", "hello"), Key("fr", "hello"))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(4, time.Minute)
	defer s.Close()

	entry := &schema.CacheEntry{
		Answer:       "Climate change is the long-term shift in temperatures.",
		Faithfulness: 0.9,
	}
	s.Set(ctx, Key("en", "what is climate change?"), entry, 0)

	got, ok := s.Get(ctx, "en:what is climate change?")
	require.True(t, ok)
	assert.Equal(t, entry.Answer, got.Answer)
	assert.Equal(t, 0.9, got.Faithfulness)

	_, ok = s.Get(ctx, "fr:what is climate change?")
	assert.False(t, ok)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(4, time.Minute)
	defer s.Close()

	s.Set(ctx, "en:q", &schema.CacheEntry{Answer: "a"}, 10*time.Millisecond)
	_, ok := s.Get(ctx, "en:q")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = s.Get(ctx, "en:q")
	assert.False(t, ok)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, time.Minute)
	defer s.Close()

	s.Set(ctx, "en:a", &schema.CacheEntry{Answer: "a"}, 0)
	s.Set(ctx, "en:b", &schema.CacheEntry{Answer: "b"}, 0)
	// Touch "a" so "b" is the eviction candidate.
	_, _ = s.Get(ctx, "en:a")
	s.Set(ctx, "en:c", &schema.CacheEntry{Answer: "c"}, 0)

	_, ok := s.Get(ctx, "en:b")
	assert.False(t, ok)
	_, ok = s.Get(ctx, "en:a")
	assert.True(t, ok)
	_, ok = s.Get(ctx, "en:c")
	assert.True(t, ok)
}

func TestNopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	s.Set(ctx, "en:q", &schema.CacheEntry{Answer: "a"}, time.Minute)
	_, ok := s.Get(ctx, "en:q")
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}
