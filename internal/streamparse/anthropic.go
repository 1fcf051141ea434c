package streamparse

import (
	"strings"

	"github.com/tidwall/gjson"
)

// parseAnthropic consumes the messages API's SSE stream. Only data: lines
// matter; event: lines are ignored because every data object repeats its
// type. Text blocks and text deltas accumulate in arrival order; tool_use
// blocks and their input_json_delta argument stream are counted and
// discarded, never surfaced as answer text. A line that is not valid JSON
// is skipped without aborting the parse.
func parseAnthropic(raw string) Result {
	var sb strings.Builder
	toolUses := 0

	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		if !gjson.Valid(data) {
			continue
		}

		event := gjson.Parse(data)
		switch event.Get("type").String() {
		case "content_block_start":
			block := event.Get("content_block")
			switch block.Get("type").String() {
			case "text":
				sb.WriteString(block.Get("text").String())
			case "tool_use":
				toolUses++
			}
		case "content_block_delta":
			delta := event.Get("delta")
			if delta.Get("type").String() == "text_delta" {
				sb.WriteString(delta.Get("text").String())
			}
		}
	}

	return Result{Answer: sb.String(), ToolUses: toolUses}
}
