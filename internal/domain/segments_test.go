package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptchat/internal/domain"
)

func TestSplitSegmentsPlainCodePlain(t *testing.T) {
	text := "Here is the script:\n```lua\ngg.toast('hi')\n```\nRun it from the menu."

	segs := domain.SplitSegments(text)
	require.Len(t, segs, 3)

	assert.Equal(t, domain.SegmentPlain, segs[0].Kind)
	assert.Equal(t, "Here is the script:", segs[0].Content)

	assert.Equal(t, domain.SegmentCode, segs[1].Kind)
	assert.Equal(t, "lua", segs[1].Lang)
	assert.Equal(t, "gg.toast('hi')", segs[1].Content)

	assert.Equal(t, domain.SegmentPlain, segs[2].Kind)
	assert.Equal(t, "Run it from the menu.", segs[2].Content)
}

func TestSplitSegmentsNoFences(t *testing.T) {
	segs := domain.SplitSegments("just prose\nacross two lines")
	require.Len(t, segs, 1)
	assert.Equal(t, domain.SegmentPlain, segs[0].Kind)
}

func TestSplitSegmentsUnterminatedFence(t *testing.T) {
	segs := domain.SplitSegments("intro\n```lua\nlocal x = 1")
	require.Len(t, segs, 2)
	assert.Equal(t, domain.SegmentCode, segs[1].Kind)
	assert.Equal(t, "local x = 1", segs[1].Content)
}

func TestSplitSegmentsDropsEmpty(t *testing.T) {
	segs := domain.SplitSegments("```lua\nprint(1)\n```")
	require.Len(t, segs, 1)
	assert.Equal(t, domain.SegmentCode, segs[0].Kind)
}
