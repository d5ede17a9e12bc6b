package turn

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scriptchat/internal/app/assemble"
	"scriptchat/internal/app/message"
	"scriptchat/internal/app/session"
	"scriptchat/internal/domain"
)

// Orchestrator runs the end-to-end "send message" operation and is the
// only mutator of the loading flag.
type Orchestrator struct {
	sessions  *session.Store
	log       *message.Log
	strategy  domain.Strategy
	assembler *assemble.Assembler
	identity  domain.Identity
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	loading bool
}

func NewOrchestrator(
	sessions *session.Store,
	log *message.Log,
	strategy domain.Strategy,
	assembler *assemble.Assembler,
	identity domain.Identity,
	timeout time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		log:       log,
		strategy:  strategy,
		assembler: assembler,
		identity:  identity,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// SendResult reports the turn's outcome. Accepted is false for the
// silent no-op rejections (blank input, turn in flight, no session).
type SendResult struct {
	Accepted    bool
	UserMessage *domain.Message
	AIMessage   *domain.Message
}

// Send runs one turn: validate, optimistic user append, best-effort
// persist, generate, AI append, best-effort persist. The persistence
// target is the session id captured here at turn start; switching
// sessions mid-generation does not redirect the in-flight turn.
func (o *Orchestrator) Send(ctx context.Context, text string) SendResult {
	text = strings.TrimSpace(text)

	o.mu.Lock()
	sessionID := o.sessions.CurrentID()
	if text == "" || o.loading || sessionID == "" {
		o.mu.Unlock()
		return SendResult{}
	}
	o.loading = true
	o.mu.Unlock()

	// the flag must clear on every exit path, or the input stays
	// disabled forever
	defer func() {
		o.mu.Lock()
		o.loading = false
		o.mu.Unlock()
	}()

	logger := o.logger.With("session_id", sessionID)

	userMsg := domain.Message{
		Sender:    domain.SenderUser,
		Text:      text,
		CreatedAt: o.now(),
	}

	// history is turn-local and bound to the captured session; the
	// displayed log may move on without affecting it
	history := append(o.log.Messages(), userMsg)
	o.log.Append(sessionID, userMsg)
	o.persist(ctx, logger, sessionID, history)

	genCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	replyText := o.assembler.Reply(genCtx, history)

	aiMsg := domain.Message{
		Sender:    domain.SenderAI,
		Text:      replyText,
		CreatedAt: o.now(),
	}
	history = append(history, aiMsg)
	o.log.Append(sessionID, aiMsg)
	o.persist(ctx, logger, sessionID, history)

	logger.Info("turn completed", "history_len", len(history))
	return SendResult{
		Accepted:    true,
		UserMessage: &userMsg,
		AIMessage:   &aiMsg,
	}
}

// persist is best-effort: a failure is logged, the optimistic append is
// kept, and the turn continues. The durability gap is accepted.
func (o *Orchestrator) persist(ctx context.Context, logger *slog.Logger, id domain.SessionID, msgs []domain.Message) {
	if err := o.strategy.PersistMessages(ctx, o.identity.UserID, id, msgs, o.now()); err != nil {
		logger.Error("persisting messages failed", "error", err)
	}
}

func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}
