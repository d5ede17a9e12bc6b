package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptchat/internal/adapters/storage/memory"
	"scriptchat/internal/app/session"
	"scriptchat/internal/domain"
	"scriptchat/internal/observability"
)

// countingStrategy feeds session snapshots from a test-owned channel and
// counts CreateSession calls.
type countingStrategy struct {
	mu      sync.Mutex
	creates int
	ch      chan []*domain.Session
}

func newCountingStrategy() *countingStrategy {
	return &countingStrategy{ch: make(chan []*domain.Session, 8)}
}

func (c *countingStrategy) Mode() domain.AppMode { return domain.ModePersistent }

func (c *countingStrategy) CreateSession(ctx context.Context, userID domain.UserID, title string) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates++
	now := time.Now()
	return &domain.Session{ID: "created", Title: title, Messages: []domain.Message{}, CreatedAt: now, UpdatedAt: now}, nil
}

func (c *countingStrategy) PersistMessages(ctx context.Context, userID domain.UserID, id domain.SessionID, msgs []domain.Message, updatedAt time.Time) error {
	return nil
}

func (c *countingStrategy) SubscribeSessions(ctx context.Context, userID domain.UserID) (*domain.SessionSubscription, error) {
	return &domain.SessionSubscription{Updates: c.ch, Cancel: func() {}}, nil
}

func (c *countingStrategy) SubscribeMessages(ctx context.Context, userID domain.UserID, id domain.SessionID) (*domain.MessageSubscription, error) {
	ch := make(chan []domain.Message, 1)
	return &domain.MessageSubscription{Updates: ch, Cancel: func() {}}, nil
}

func (c *countingStrategy) createCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

func TestBootstrapCreatesExactlyOneSession(t *testing.T) {
	strat := newCountingStrategy()
	store := session.NewStore(strat, domain.Identity{UserID: "u"}, observability.Logger())
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	// repeated empty snapshots must not re-trigger the auto-create
	strat.ch <- []*domain.Session{}
	strat.ch <- []*domain.Session{}
	strat.ch <- []*domain.Session{}

	require.Eventually(t, func() bool { return strat.createCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, strat.createCount())
	assert.Equal(t, domain.SessionID("created"), store.CurrentID())
}

func TestFirstSnapshotSelectsMostRecent(t *testing.T) {
	strat := newCountingStrategy()
	store := session.NewStore(strat, domain.Identity{UserID: "u"}, observability.Logger())

	var selected []domain.SessionID
	var mu sync.Mutex
	store.OnCurrentChanged(func(id domain.SessionID) {
		mu.Lock()
		selected = append(selected, id)
		mu.Unlock()
	})

	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	strat.ch <- []*domain.Session{{ID: "newest"}, {ID: "older"}}

	require.Eventually(t, func() bool { return store.CurrentID() == "newest" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, strat.createCount())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.SessionID{"newest"}, selected)
}

func TestCreateBecomesCurrentWithEmptyMessages(t *testing.T) {
	strat := memory.NewStore()
	store := session.NewStore(strat, domain.Identity{}, observability.Logger())
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	id, err := store.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, id, store.CurrentID())

	sess, ok := store.Session(id)
	require.True(t, ok)
	assert.Empty(t, sess.Messages)
}

func TestSelectSwitchesCurrent(t *testing.T) {
	strat := memory.NewStore()
	store := session.NewStore(strat, domain.Identity{}, observability.Logger())
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	a, err := store.Create(context.Background())
	require.NoError(t, err)
	b, err := store.Create(context.Background())
	require.NoError(t, err)
	require.Equal(t, b, store.CurrentID())

	require.NoError(t, store.Select(context.Background(), a))
	assert.Equal(t, a, store.CurrentID())

	require.Error(t, store.Select(context.Background(), "missing"))
}
