package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scriptchat/internal/domain"
)

// Store is the demo-mode strategy: all state lives in process memory and
// is lost on restart. It exposes the same subscription surface as the
// Firestore strategy, pushing a fresh snapshot on every write, so the
// session store and message log run one code path in both modes.
type Store struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.Session

	nextSubID   int
	sessionSubs map[int]chan []*domain.Session
	messageSubs map[int]messageSub
}

type messageSub struct {
	sessionID domain.SessionID
	ch        chan []domain.Message
}

func NewStore() *Store {
	return &Store{
		sessions:    make(map[domain.SessionID]*domain.Session),
		sessionSubs: make(map[int]chan []*domain.Session),
		messageSubs: make(map[int]messageSub),
	}
}

func (s *Store) Mode() domain.AppMode {
	return domain.ModeDemo
}

func (s *Store) CreateSession(ctx context.Context, userID domain.UserID, title string) (*domain.Session, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		Title:     title,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.broadcastLocked(sess.ID)
	s.mu.Unlock()

	return sess.Clone(), nil
}

func (s *Store) PersistMessages(ctx context.Context, userID domain.UserID, id domain.SessionID, msgs []domain.Message, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return &notFoundError{id: id}
	}

	sess.Messages = append([]domain.Message(nil), msgs...)
	sess.UpdatedAt = updatedAt
	s.broadcastLocked(id)
	return nil
}

func (s *Store) SubscribeSessions(ctx context.Context, userID domain.UserID) (*domain.SessionSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan []*domain.Session, 8)
	id := s.nextSubID
	s.nextSubID++
	s.sessionSubs[id] = ch

	// first snapshot delivered immediately, even when empty, so the
	// bootstrap auto-create check always runs
	push(ch, s.snapshotLocked())

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.sessionSubs[id]; ok {
			delete(s.sessionSubs, id)
			close(c)
		}
	}
	return &domain.SessionSubscription{Updates: ch, Cancel: cancel}, nil
}

func (s *Store) SubscribeMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*domain.MessageSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan []domain.Message, 8)
	id := s.nextSubID
	s.nextSubID++
	s.messageSubs[id] = messageSub{sessionID: sessionID, ch: ch}

	push(ch, s.messagesLocked(sessionID))

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.messageSubs[id]; ok {
			delete(s.messageSubs, id)
			close(sub.ch)
		}
	}
	return &domain.MessageSubscription{Updates: ch, Cancel: cancel}, nil
}

// Session returns a copy of the stored record, for direct reads and tests.
func (s *Store) Session(id domain.SessionID) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

func (s *Store) snapshotLocked() []*domain.Session {
	out := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *Store) messagesLocked(id domain.SessionID) []domain.Message {
	sess, ok := s.sessions[id]
	if !ok {
		return []domain.Message{}
	}
	return append([]domain.Message(nil), sess.Messages...)
}

func (s *Store) broadcastLocked(changed domain.SessionID) {
	snap := s.snapshotLocked()
	for _, ch := range s.sessionSubs {
		push(ch, snap)
	}
	for _, sub := range s.messageSubs {
		if sub.sessionID == changed {
			push(sub.ch, s.messagesLocked(changed))
		}
	}
}

// push delivers a snapshot without ever blocking the writer. When the
// subscriber lags, the oldest buffered snapshot is discarded: snapshots
// are full replacements, only the latest matters.
func push[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

type notFoundError struct {
	id domain.SessionID
}

func (e *notFoundError) Error() string {
	return "session not found: " + string(e.id)
}
