package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scriptchat/internal/domain"
)

// Store owns the session set and the current-session id. In persistent
// mode the set mirrors the identity-scoped collection subscription; in
// demo mode the in-memory strategy feeds the same subscription surface.
type Store struct {
	strategy domain.Strategy
	identity domain.Identity
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	sessions     []*domain.Session
	currentID    domain.SessionID
	bootstrapped bool
	sub          *domain.SessionSubscription

	// onCurrent is fired outside the lock whenever the current session
	// changes; the app wires it to the message log
	onCurrent func(domain.SessionID)
}

func NewStore(strategy domain.Strategy, identity domain.Identity, logger *slog.Logger) *Store {
	return &Store{
		strategy: strategy,
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

// OnCurrentChanged registers the current-session listener. Must be set
// before Start.
func (s *Store) OnCurrentChanged(fn func(domain.SessionID)) {
	s.onCurrent = fn
}

// Start establishes the live session subscription and begins applying
// snapshots. The first snapshot triggers the bootstrap check: an empty
// session set auto-creates exactly one session.
func (s *Store) Start(ctx context.Context) error {
	sub, err := s.strategy.SubscribeSessions(ctx, s.identity.UserID)
	if err != nil {
		return fmt.Errorf("subscribing to sessions: %w", err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	go func() {
		for snap := range sub.Updates {
			s.apply(ctx, snap)
		}
	}()
	return nil
}

func (s *Store) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

func (s *Store) apply(ctx context.Context, snap []*domain.Session) {
	s.mu.Lock()
	s.sessions = snap

	firstSnapshot := !s.bootstrapped
	s.bootstrapped = true

	needCreate := firstSnapshot && len(snap) == 0

	// selection invariant: with sessions present and none current, the
	// most recently updated one becomes current
	var newCurrent domain.SessionID
	if !needCreate && s.currentID == "" && len(snap) > 0 {
		newCurrent = snap[0].ID
		s.currentID = newCurrent
	}
	s.mu.Unlock()

	if needCreate {
		if _, err := s.Create(ctx); err != nil {
			s.logger.Error("bootstrap session create failed", "error", err)
		}
		return
	}

	if newCurrent != "" {
		s.fireCurrent(newCurrent)
	}
}

// Create makes a new empty session, sets it as current, and clears the
// displayed message list (via the current-session listener).
func (s *Store) Create(ctx context.Context) (domain.SessionID, error) {
	title := domain.DefaultTitle(s.now())

	sess, err := s.strategy.CreateSession(ctx, s.identity.UserID, title)
	if err != nil {
		s.logger.Error("create session failed", "error", err)
		return "", err
	}

	s.mu.Lock()
	// the subscription snapshot will also include the session; showing
	// it immediately keeps the list from flickering in the meantime
	s.sessions = append([]*domain.Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", sess.ID, "title", title)
	s.fireCurrent(sess.ID)
	return sess.ID, nil
}

// Select makes the given session current.
func (s *Store) Select(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	found := false
	for _, sess := range s.sessions {
		if sess.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("session not found: %s", id)
	}
	changed := s.currentID != id
	s.currentID = id
	s.mu.Unlock()

	if changed {
		s.fireCurrent(id)
	}
	return nil
}

func (s *Store) fireCurrent(id domain.SessionID) {
	if s.onCurrent != nil {
		s.onCurrent(id)
	}
}

func (s *Store) CurrentID() domain.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Sessions returns the current view, most recently updated first.
func (s *Store) Sessions() []*domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// Session returns one session from the current view.
func (s *Store) Session(id domain.SessionID) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess.Clone(), true
		}
	}
	return nil, false
}
