package domain

import "strings"

type SegmentKind string

const (
	SegmentPlain SegmentKind = "plain"
	SegmentCode  SegmentKind = "code"
)

// Segment is a renderer-facing slice of a message: either prose or the
// body of one fenced code block (fence markers excluded).
type Segment struct {
	Kind    SegmentKind
	Lang    string
	Content string
}

// SplitSegments splits message text on ``` fences into alternating plain
// and code segments. The opening fence's info string becomes the code
// segment's Lang. An unterminated fence runs to the end of the text.
// Empty segments are dropped.
func SplitSegments(text string) []Segment {
	var (
		out     []Segment
		buf     []string
		inCode  bool
		curLang string
	)

	flush := func() {
		content := strings.Join(buf, "\n")
		buf = buf[:0]
		if strings.TrimSpace(content) == "" {
			return
		}
		if inCode {
			out = append(out, Segment{Kind: SegmentCode, Lang: curLang, Content: content})
		} else {
			out = append(out, Segment{Kind: SegmentPlain, Content: content})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			flush()
			if !inCode {
				curLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			}
			inCode = !inCode
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return out
}
