package llm

import (
	"context"
	"fmt"

	"scriptchat/internal/domain"
)

type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	last := ""
	if len(turns) > 0 {
		last = turns[len(turns)-1].Text
	}
	return fmt.Sprintf(
		"Here is a toast for %q:\n```lua\ngg.toast('mock reply')\n```",
		last,
	), nil
}
