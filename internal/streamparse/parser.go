// Package streamparse reconstructs normalized text from the raw streaming
// bodies the providers emit. Each publisher gets its own parser; both
// tolerate malformed lines and truncated tails, because cancellation can
// cut a stream anywhere and a bad line must never abort the parse.
package streamparse

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vexhq/vex/provider"
)

// Citation is one web-grounding source attached to an answer.
type Citation struct {
	Title string
	URI   string
}

// Result accumulates everything a parser recovered from the stream:
// answer text, separated thinking text, deduplicated citations in
// first-seen order, and a count of tool invocations that were observed and
// discarded.
type Result struct {
	Answer    string
	Thinking  string
	Citations []Citation
	ToolUses  int
}

// Empty reports whether structured parsing recovered nothing, which makes
// the caller fall back to the raw body.
func (r Result) Empty() bool {
	return r.Answer == "" && r.Thinking == "" && len(r.Citations) == 0
}

// Render assembles the visible text. With neither thinking text (or the
// caller opted out of thoughts) nor citations, the answer is returned bare
// with no section headers at all. Otherwise the optional sections come
// first, in fixed order, each under its own header.
func (r Result) Render(includeThoughts bool) string {
	showThinking := includeThoughts && r.Thinking != ""
	if !showThinking && len(r.Citations) == 0 {
		return r.Answer
	}

	var sb strings.Builder
	if showThinking {
		sb.WriteString("## Thinking Process\n\n")
		sb.WriteString(strings.TrimSpace(r.Thinking))
		sb.WriteString("\n\n")
	}
	if len(r.Citations) > 0 {
		sb.WriteString("## Search Sources\n\n")
		for i, c := range r.Citations {
			fmt.Fprintf(&sb, "[%d] %s\n    %s\n", i+1, c.Title, c.URI)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("## Answer\n\n")
	sb.WriteString(r.Answer)
	return sb.String()
}

// Parse runs the publisher's parser over whatever text has accumulated so
// far. Generic publishers have no structured stream format; they always
// yield an empty Result and the caller's raw fallback applies.
func Parse(pub provider.Publisher, raw string) Result {
	switch pub {
	case provider.PublisherAnthropic:
		return parseAnthropic(raw)
	case provider.PublisherGoogle:
		return parseGoogle(raw)
	default:
		return Result{}
	}
}

// citationSet keeps citations unique by URI while preserving first-seen
// order.
type citationSet struct {
	m *orderedmap.OrderedMap[string, Citation]
}

func newCitationSet() citationSet {
	return citationSet{m: orderedmap.New[string, Citation]()}
}

func (s citationSet) add(c Citation) {
	if c.URI == "" {
		return
	}
	if _, seen := s.m.Get(c.URI); seen {
		return
	}
	s.m.Set(c.URI, c)
}

func (s citationSet) list() []Citation {
	if s.m.Len() == 0 {
		return nil
	}
	out := make([]Citation, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
