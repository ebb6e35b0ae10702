package climatechat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilience-labs/climatechat/schema"
)

func TestMemSessionStoreRoundTrip(t *testing.T) {
	store := NewMemSessionStore(time.Minute, 20)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	err = store.AppendTurn(ctx, sess.ID, schema.ConversationTurn{Query: "q1", Answer: "a1"})
	require.NoError(t, err)

	got, ok := store.Get(ctx, sess.ID)
	require.True(t, ok)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "q1", got.Turns[0].Query)
}

func TestMemSessionStoreTrimsWindow(t *testing.T) {
	store := NewMemSessionStore(time.Minute, 3)
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)

	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		require.NoError(t, store.AppendTurn(ctx, sess.ID, schema.ConversationTurn{Query: q}))
	}

	got, ok := store.Get(ctx, sess.ID)
	require.True(t, ok)
	require.Len(t, got.Turns, 3)
	assert.Equal(t, "q3", got.Turns[0].Query)
	assert.Equal(t, "q5", got.Turns[2].Query)
}

func TestMemSessionStoreExpiry(t *testing.T) {
	store := NewMemSessionStore(10*time.Millisecond, 20)
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, ok := store.Get(ctx, sess.ID)
	assert.False(t, ok)
}

func TestMemSessionStoreUnknownSession(t *testing.T) {
	store := NewMemSessionStore(time.Minute, 20)
	ctx := context.Background()

	_, ok := store.Get(ctx, "nope")
	assert.False(t, ok)
	assert.Error(t, store.AppendTurn(ctx, "nope", schema.ConversationTurn{}))
	assert.NoError(t, store.Delete(ctx, "nope"))
}

func TestMemSessionStoreGetReturnsCopy(t *testing.T) {
	store := NewMemSessionStore(time.Minute, 20)
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, sess.ID, schema.ConversationTurn{Query: "q1"}))

	got, _ := store.Get(ctx, sess.ID)
	got.Turns[0].Query = "mutated"

	again, _ := store.Get(ctx, sess.ID)
	assert.Equal(t, "q1", again.Turns[0].Query)
}
