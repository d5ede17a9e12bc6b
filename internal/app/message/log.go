package message

import (
	"context"
	"log/slog"
	"sync"

	"scriptchat/internal/domain"
)

// Log is the displayed message list for the current session. It follows
// the strategy's per-session subscription: every snapshot fully replaces
// the local list, so an optimistic append is always superseded by the
// next snapshot.
type Log struct {
	strategy domain.Strategy
	logger   *slog.Logger

	mu        sync.Mutex
	identity  domain.Identity
	sessionID domain.SessionID
	messages  []domain.Message
	sub       *domain.MessageSubscription

	// gen invalidates snapshot deliveries from subscriptions that were
	// established for a previously current session
	gen int
}

func NewLog(strategy domain.Strategy, logger *slog.Logger) *Log {
	return &Log{
		strategy: strategy,
		logger:   logger,
	}
}

func (l *Log) SetIdentity(id domain.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.identity = id
}

// SetSession switches the log to a new session: the old subscription is
// torn down, the displayed list is cleared before the new source
// populates it, and a fresh subscription is established. An empty id
// just clears the log.
func (l *Log) SetSession(ctx context.Context, id domain.SessionID) {
	l.mu.Lock()

	if l.sub != nil {
		l.sub.Cancel()
		l.sub = nil
	}
	l.gen++
	l.sessionID = id
	l.messages = nil

	if id == "" {
		l.mu.Unlock()
		return
	}

	gen := l.gen
	userID := l.identity.UserID
	l.mu.Unlock()

	sub, err := l.strategy.SubscribeMessages(ctx, userID, id)
	if err != nil {
		// the view simply stops updating; not surfaced as a blocking error
		l.logger.Error("message subscription failed", "session_id", id, "error", err)
		return
	}

	l.mu.Lock()
	if l.gen != gen {
		// the session changed again while we were subscribing
		l.mu.Unlock()
		sub.Cancel()
		return
	}
	l.sub = sub
	l.mu.Unlock()

	go func() {
		for msgs := range sub.Updates {
			l.apply(gen, id, msgs)
		}
	}()
}

func (l *Log) apply(gen int, id domain.SessionID, msgs []domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// stale-subscription guard: a late snapshot for a previously
	// selected session must not overwrite the current display
	if l.gen != gen || l.sessionID != id {
		return
	}
	l.messages = msgs
}

// Append adds a message to the display, but only when the given session
// is still the one on screen. Returns whether the append was applied.
func (l *Log) Append(id domain.SessionID, msg domain.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id == "" || l.sessionID != id {
		return false
	}
	l.messages = append(l.messages, msg)
	return true
}

func (l *Log) SessionID() domain.SessionID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

func (l *Log) Messages() []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Message(nil), l.messages...)
}

func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		l.sub.Cancel()
		l.sub = nil
	}
	l.gen++
}
