package assemble_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptchat/internal/app/assemble"
	"scriptchat/internal/domain"
	"scriptchat/internal/observability"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	s.calls++
	return s.reply, s.err
}

type stubLoader struct {
	texts map[string]string
}

func (s *stubLoader) FetchText(ctx context.Context, resource string) (string, error) {
	if text, ok := s.texts[resource]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no such resource: %s", resource)
}

func newAssembler(gen domain.Generator) *assemble.Assembler {
	return assemble.New(gen, assemble.Reference{API: "gg.toast(text)"}, observability.Logger())
}

func TestBuildTurnsPayloadShape(t *testing.T) {
	a := newAssembler(&stubGenerator{})

	history := []domain.Message{
		{Sender: domain.SenderUser, Text: "m1"},
		{Sender: domain.SenderAI, Text: "m2"},
	}

	turns := a.BuildTurns(history)
	require.Len(t, turns, 4)

	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Contains(t, turns[0].Text, "GameGuardian")
	assert.Contains(t, turns[0].Text, "gg.toast(text)", "reference text must ride in the leading user entry")

	assert.Equal(t, domain.RoleModel, turns[1].Role)

	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Text: "m1"}, turns[2])
	assert.Equal(t, domain.Turn{Role: domain.RoleModel, Text: "m2"}, turns[3])
}

func TestBuildTurnsEmptyHistory(t *testing.T) {
	a := newAssembler(&stubGenerator{})

	turns := a.BuildTurns(nil)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleModel, turns[1].Role)
}

func TestContextIsResentEveryTurn(t *testing.T) {
	a := newAssembler(&stubGenerator{})

	long := make([]domain.Message, 10)
	for i := range long {
		long[i] = domain.Message{Sender: domain.SenderUser, Text: "x"}
	}

	turns := a.BuildTurns(long)
	assert.Contains(t, turns[0].Text, "gg.toast(text)")
	assert.Len(t, turns, 12)
}

func TestReplySuccess(t *testing.T) {
	gen := &stubGenerator{reply: "use gg.toast"}
	got := newAssembler(gen).Reply(context.Background(), nil)
	assert.Equal(t, "use gg.toast", got)
}

func TestReplyHTTPFailureYieldsConnectivityMessage(t *testing.T) {
	gen := &stubGenerator{err: &domain.HTTPError{Status: 500, Body: "oops"}}
	got := newAssembler(gen).Reply(context.Background(), nil)
	assert.Contains(t, got, "couldn't reach")
}

func TestReplyContentFailureYieldsApology(t *testing.T) {
	gen := &stubGenerator{err: &domain.ContentError{Reason: "missing candidates"}}
	got := newAssembler(gen).Reply(context.Background(), nil)
	assert.Contains(t, got, "rephrase")
}

func TestReplyUnknownFailureYieldsConnectivityMessage(t *testing.T) {
	gen := &stubGenerator{err: errors.New("context deadline exceeded")}
	got := newAssembler(gen).Reply(context.Background(), nil)
	assert.Contains(t, got, "couldn't reach")
}

func TestLoadReferencePlaceholderOnFailure(t *testing.T) {
	loader := &stubLoader{texts: map[string]string{
		"docs/api.txt": "the api",
		"docs/a.lua":   "print('a')",
	}}

	ref := assemble.LoadReference(context.Background(), loader, "docs/api.txt",
		[]string{"docs/a.lua", "docs/missing.lua"}, observability.Logger())

	assert.Equal(t, "the api", ref.API)
	assert.Contains(t, ref.Examples, "-- ========== example: a.lua")
	assert.Contains(t, ref.Examples, "print('a')")
	assert.Contains(t, ref.Examples, "[missing.lua is currently unavailable]")
}

func TestLoadReferenceAPIFetchFailure(t *testing.T) {
	ref := assemble.LoadReference(context.Background(), &stubLoader{}, "docs/api.txt", nil, observability.Logger())
	assert.Contains(t, ref.API, "unavailable")
}
