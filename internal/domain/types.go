package domain

type SessionID string
type UserID string

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// AppMode is chosen exactly once per process lifetime.
type AppMode string

const (
	ModePersistent AppMode = "persistent"
	ModeDemo       AppMode = "demo"
)

// Identity is the authenticated principal. The zero value means
// "no identity" (demo mode).
type Identity struct {
	UserID    UserID
	Anonymous bool
}

func (i Identity) Resolved() bool {
	return i.UserID != ""
}
