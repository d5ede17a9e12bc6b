package domain

import (
	"context"
	"time"
)

// Authenticator resolves the identity persistent-mode storage is scoped to.
type Authenticator interface {
	SignInAnonymously(ctx context.Context) (Identity, error)
	SignInWithToken(ctx context.Context, token string) (Identity, error)
}

// SessionSubscription delivers whole snapshots of the identity's session
// set, most recently updated first. Each received slice fully replaces the
// previous view. Cancel must be called when the subscription's key
// dependency (identity) changes or the owner shuts down; Updates is closed
// afterwards.
type SessionSubscription struct {
	Updates <-chan []*Session
	Cancel  func()
}

// MessageSubscription delivers whole snapshots of one session's message
// list. Same replacement and cancellation semantics as SessionSubscription.
type MessageSubscription struct {
	Updates <-chan []Message
	Cancel  func()
}

// Strategy is the storage surface behind all session and message
// mutations. The mode controller selects one implementation at startup
// (Firestore-backed or in-memory) and every component uses it for the
// rest of the run.
type Strategy interface {
	Mode() AppMode

	// CreateSession writes a session with an empty message list and
	// returns it with its assigned id.
	CreateSession(ctx context.Context, userID UserID, title string) (*Session, error)

	// PersistMessages replaces the session's message list and refreshes
	// its updatedAt.
	PersistMessages(ctx context.Context, userID UserID, id SessionID, msgs []Message, updatedAt time.Time) error

	SubscribeSessions(ctx context.Context, userID UserID) (*SessionSubscription, error)
	SubscribeMessages(ctx context.Context, userID UserID, id SessionID) (*MessageSubscription, error)
}

// TurnRole is a role in the model-facing conversation payload.
type TurnRole string

const (
	RoleUser  TurnRole = "user"
	RoleModel TurnRole = "model"
)

// Turn is one entry of the payload sent to the generation endpoint.
type Turn struct {
	Role TurnRole
	Text string
}

// Generator is the remote text-generation endpoint. Complete returns the
// first candidate's text; failures are *HTTPError (non-2xx) or
// *ContentError (response shape unusable).
type Generator interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// DocLoader fetches static reference text (API documentation, example
// scripts). Callers substitute a placeholder string on error rather than
// propagating it.
type DocLoader interface {
	FetchText(ctx context.Context, resource string) (string, error)
}
