package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"scriptchat/internal/domain"
)

// Store is the persistent-mode strategy, backed by Firestore. Sessions
// are documents under namespaces/{ns}/users/{uid}/sessions with the
// message list denormalized into the session document.
type Store struct {
	client    *firestore.Client
	namespace string
	log       *slog.Logger
}

// NewStore creates a Firestore store scoped to the deployment namespace.
func NewStore(ctx context.Context, projectID, namespace string, credentialsJSON []byte, log *slog.Logger) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, namespace: namespace, log: log}, nil
}

func (s *Store) Mode() domain.AppMode {
	return domain.ModePersistent
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.client.Collection("namespaces").Doc(s.namespace).
		Collection("users").Doc(string(userID)).
		Collection("sessions")
}

func (s *Store) sessionDocRef(userID domain.UserID, id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol(userID).Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	Title     string       `firestore:"title"`
	Messages  []messageDoc `firestore:"messages"`
	CreatedAt time.Time    `firestore:"createdAt"`
	UpdatedAt time.Time    `firestore:"updatedAt"`
}

type messageDoc struct {
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func toMessageDocs(msgs []domain.Message) []messageDoc {
	out := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDoc{
			Sender:    string(m.Sender),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func fromMessageDocs(docs []messageDoc) []domain.Message {
	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Message{
			Sender:    domain.Sender(d.Sender),
			Text:      d.Text,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

func (d sessionDoc) toSession(id domain.SessionID) *domain.Session {
	return &domain.Session{
		ID:        id,
		Title:     d.Title,
		Messages:  fromMessageDocs(d.Messages),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ─────────────────────────────────────────
// Strategy implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, userID domain.UserID, title string) (*domain.Session, error) {
	now := time.Now()
	ref := s.sessionsCol(userID).NewDoc()

	doc := sessionDoc{
		Title:     title,
		Messages:  []messageDoc{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("firestore CreateSession: %w", err)
	}

	return doc.toSession(domain.SessionID(ref.ID)), nil
}

func (s *Store) PersistMessages(ctx context.Context, userID domain.UserID, id domain.SessionID, msgs []domain.Message, updatedAt time.Time) error {
	patch := map[string]interface{}{
		"messages":  toMessageDocs(msgs),
		"updatedAt": updatedAt,
	}

	_, err := s.sessionDocRef(userID, id).Set(ctx, patch, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("session not found: %s", id)
		}
		return fmt.Errorf("firestore PersistMessages: %w", err)
	}
	return nil
}

func (s *Store) SubscribeSessions(ctx context.Context, userID domain.UserID) (*domain.SessionSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []*domain.Session, 8)

	q := s.sessionsCol(userID).OrderBy("updatedAt", firestore.Desc)
	snaps := q.Snapshots(subCtx)

	go func() {
		defer close(ch)
		defer snaps.Stop()
		for {
			qsnap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Error("session subscription ended", "user_id", userID, "error", err)
				}
				return
			}

			sessions, err := collectSessions(qsnap)
			if err != nil {
				s.log.Error("decoding session snapshot", "user_id", userID, "error", err)
				continue
			}

			select {
			case ch <- sessions:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &domain.SessionSubscription{Updates: ch, Cancel: cancel}, nil
}

func collectSessions(qsnap *firestore.QuerySnapshot) ([]*domain.Session, error) {
	out := []*domain.Session{}
	iter := qsnap.Documents
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		out = append(out, doc.toSession(domain.SessionID(snap.Ref.ID)))
	}
	return out, nil
}

func (s *Store) SubscribeMessages(ctx context.Context, userID domain.UserID, id domain.SessionID) (*domain.MessageSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []domain.Message, 8)

	snaps := s.sessionDocRef(userID, id).Snapshots(subCtx)

	go func() {
		defer close(ch)
		defer snaps.Stop()
		for {
			dsnap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Error("message subscription ended", "session_id", id, "error", err)
				}
				return
			}

			// a missing or malformed document yields an empty list,
			// never a crash or a non-sequence value
			msgs := []domain.Message{}
			if dsnap.Exists() {
				var doc sessionDoc
				if err := dsnap.DataTo(&doc); err != nil {
					s.log.Error("decoding message snapshot", "session_id", id, "error", err)
				} else {
					msgs = fromMessageDocs(doc.Messages)
				}
			}

			select {
			case ch <- msgs:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &domain.MessageSubscription{Updates: ch, Cancel: cancel}, nil
}
