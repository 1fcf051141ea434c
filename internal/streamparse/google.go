package streamparse

import (
	"strings"

	"github.com/tidwall/gjson"
)

// parseGoogle consumes the streamGenerateContent output, which arrives
// either as one JSON array of response objects or as newline-delimited
// objects with stray array punctuation between them. Thought parts
// accumulate separately from answer parts; grounding chunks collect into a
// citation set deduplicated by URI. Truncated or malformed pieces are
// skipped so a cancelled stream still parses.
func parseGoogle(raw string) Result {
	var answer, thinking strings.Builder
	citations := newCitationSet()

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") && gjson.Valid(trimmed) {
		gjson.Parse(trimmed).ForEach(func(_, chunk gjson.Result) bool {
			collectGoogleChunk(chunk, &answer, &thinking, citations)
			return true
		})
		return Result{Answer: answer.String(), Thinking: thinking.String(), Citations: citations.list()}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		// Naive array splitting leaves brackets and separator commas on
		// their own lines, and objects keep a trailing comma.
		if line == "" || line == "," || line == "[" || line == "]" {
			continue
		}
		line = strings.TrimSuffix(line, ",")
		if !gjson.Valid(line) {
			continue
		}
		collectGoogleChunk(gjson.Parse(line), &answer, &thinking, citations)
	}

	return Result{Answer: answer.String(), Thinking: thinking.String(), Citations: citations.list()}
}

func collectGoogleChunk(chunk gjson.Result, answer, thinking *strings.Builder, citations citationSet) {
	candidate := chunk.Get("candidates.0")
	if !candidate.Exists() {
		return
	}

	candidate.Get("content.parts").ForEach(func(_, part gjson.Result) bool {
		text := part.Get("text")
		if !text.Exists() {
			return true
		}
		if part.Get("thought").Bool() {
			thinking.WriteString(text.String())
		} else {
			answer.WriteString(text.String())
		}
		return true
	})

	candidate.Get("groundingMetadata.groundingChunks").ForEach(func(_, gc gjson.Result) bool {
		web := gc.Get("web")
		if web.Exists() {
			citations.add(Citation{
				Title: web.Get("title").String(),
				URI:   web.Get("uri").String(),
			})
		}
		return true
	})
}
