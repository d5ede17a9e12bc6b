package domain

import "time"

// Message is one entry in a session's timeline. Messages are append-only
// and strictly ordered by creation time; there are no edits.
type Message struct {
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

// Session is a conversation thread. Messages live inside the session
// record itself (one document in persistent mode), so persisting a turn
// rewrites the whole messages field.
type Session struct {
	ID        SessionID
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	return &out
}

// DefaultTitle derives the display title for a new session from its
// creation time.
func DefaultTitle(t time.Time) string {
	return "Chat " + t.Format("Jan 2, 2006 15:04")
}
