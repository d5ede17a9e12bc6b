package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"scriptchat/internal/domain"
)

// Reference is the static documentation text injected into every payload.
type Reference struct {
	API      string
	Examples string
}

// LoadReference fetches the API documentation and example scripts once at
// startup. A failed fetch degrades to a visible placeholder for that
// document; it never aborts initialization.
func LoadReference(ctx context.Context, loader domain.DocLoader, apiResource string, exampleResources []string, logger *slog.Logger) Reference {
	var ref Reference

	if apiResource == "" {
		ref.API = fmt.Sprintf(placeholderFormat, "the API reference")
	} else if text, err := loader.FetchText(ctx, apiResource); err != nil {
		logger.Warn("api reference fetch failed", "resource", apiResource, "error", err)
		ref.API = fmt.Sprintf(placeholderFormat, "the API reference")
	} else {
		ref.API = text
	}

	var parts []string
	for _, res := range exampleResources {
		name := path.Base(res)
		parts = append(parts, fmt.Sprintf(exampleSeparator, name))
		if text, err := loader.FetchText(ctx, res); err != nil {
			logger.Warn("example fetch failed", "resource", res, "error", err)
			parts = append(parts, fmt.Sprintf(placeholderFormat, name))
		} else {
			parts = append(parts, text)
		}
	}
	ref.Examples = strings.Join(parts, "\n")

	return ref
}

// Assembler builds the model-facing payload for each turn and interprets
// the response. Reply never fails: every generation failure maps to a
// fixed substitute string so the turn always completes.
type Assembler struct {
	gen    domain.Generator
	ref    Reference
	logger *slog.Logger
}

func New(gen domain.Generator, ref Reference, logger *slog.Logger) *Assembler {
	return &Assembler{
		gen:    gen,
		ref:    ref,
		logger: logger,
	}
}

// BuildTurns constructs the payload: a leading synthetic exchange
// (full context as a user entry, fixed acknowledgement as a model entry)
// followed by the entire history. The context is re-sent on every turn,
// so model behavior does not depend on conversation length.
func (a *Assembler) BuildTurns(history []domain.Message) []domain.Turn {
	var ctxText strings.Builder
	ctxText.WriteString(strings.TrimSpace(systemInstruction))
	ctxText.WriteString("\n\nAPI reference:\n")
	ctxText.WriteString(a.ref.API)
	if a.ref.Examples != "" {
		ctxText.WriteString("\n\nExample scripts:\n")
		ctxText.WriteString(a.ref.Examples)
	}

	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: ctxText.String()},
		{Role: domain.RoleModel, Text: contextAck},
	}

	for _, m := range history {
		role := domain.RoleUser
		if m.Sender == domain.SenderAI {
			role = domain.RoleModel
		}
		turns = append(turns, domain.Turn{Role: role, Text: m.Text})
	}
	return turns
}

// Reply runs one generation call for the given history and returns the
// AI message text, substituting fixed failure strings as needed.
func (a *Assembler) Reply(ctx context.Context, history []domain.Message) string {
	text, err := a.gen.Complete(ctx, a.BuildTurns(history))
	if err == nil {
		return text
	}

	var httpErr *domain.HTTPError
	var contentErr *domain.ContentError
	switch {
	case errors.As(err, &contentErr):
		a.logger.Error("generation returned unusable content", "reason", contentErr.Reason)
		return apologyReply
	case errors.As(err, &httpErr):
		a.logger.Error("generation call failed", "status", httpErr.Status, "body", httpErr.Body)
		return connectivityReply
	default:
		// timeouts and transport-level failures land here
		a.logger.Error("generation call failed", "error", err)
		return connectivityReply
	}
}
