package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptchat/internal/adapters/storage/memory"
	"scriptchat/internal/domain"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func TestCreateSessionAssignsUniqueIDs(t *testing.T) {
	store := memory.NewStore()

	a, err := store.CreateSession(context.Background(), "", "first")
	require.NoError(t, err)
	b, err := store.CreateSession(context.Background(), "", "second")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.Messages)
}

func TestSubscribeSessionsDeliversInitialEmptySnapshot(t *testing.T) {
	store := memory.NewStore()

	sub, err := store.SubscribeSessions(context.Background(), "")
	require.NoError(t, err)
	defer sub.Cancel()

	snap := recv(t, sub.Updates)
	assert.Empty(t, snap)
}

func TestSubscriptionsPushOnWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sessSub, err := store.SubscribeSessions(ctx, "")
	require.NoError(t, err)
	defer sessSub.Cancel()
	recv(t, sessSub.Updates) // initial empty

	sess, err := store.CreateSession(ctx, "", "t")
	require.NoError(t, err)

	snap := recv(t, sessSub.Updates)
	require.Len(t, snap, 1)
	assert.Equal(t, sess.ID, snap[0].ID)

	msgSub, err := store.SubscribeMessages(ctx, "", sess.ID)
	require.NoError(t, err)
	defer msgSub.Cancel()
	recv(t, msgSub.Updates) // initial empty

	msgs := []domain.Message{{Sender: domain.SenderUser, Text: "hi", CreatedAt: time.Now()}}
	require.NoError(t, store.PersistMessages(ctx, "", sess.ID, msgs, time.Now()))

	got := recv(t, msgSub.Updates)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Text)
}

func TestRecencyOrdering(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	a, _ := store.CreateSession(ctx, "", "a")
	b, _ := store.CreateSession(ctx, "", "b")

	// touching a makes it most recent again
	require.NoError(t, store.PersistMessages(ctx, "", a.ID, nil, time.Now().Add(time.Minute)))

	sub, err := store.SubscribeSessions(ctx, "")
	require.NoError(t, err)
	defer sub.Cancel()

	snap := recv(t, sub.Updates)
	require.Len(t, snap, 2)
	assert.Equal(t, a.ID, snap[0].ID)
	assert.Equal(t, b.ID, snap[1].ID)
}

func TestPersistUnknownSessionFails(t *testing.T) {
	store := memory.NewStore()
	err := store.PersistMessages(context.Background(), "", "nope", nil, time.Now())
	require.Error(t, err)
}
