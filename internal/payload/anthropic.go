package payload

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/vexhq/vex/provider"
	"github.com/vexhq/vex/tool"
)

// vertexAnthropicVersion is the API revision pinned for managed-mode calls.
const vertexAnthropicVersion = "vertex-2023-10-16"

type anthropicRequest struct {
	// AnthropicVersion replaces the model field in managed mode; the model
	// is addressed through the URL there.
	AnthropicVersion string `json:"anthropic_version,omitempty"`
	Model            string `json:"model,omitempty"`

	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
	Stream    bool               `json:"stream"`
	Tools     []tool.Descriptor  `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role string `json:"role"`
	// Content is either a plain string (history turns, prompt-only turns)
	// or an ordered []anthropicBlock when an attachment is present.
	Content any `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func buildAnthropic(spec provider.RequestSpec) ([]byte, error) {
	messages := make([]anthropicMessage, 0, len(spec.History)+1)
	for _, turn := range spec.History {
		messages = append(messages, anthropicMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: anthropicUserContent(spec)})

	req := anthropicRequest{
		Messages:  messages,
		MaxTokens: outputTokenBudget(spec),
		Stream:    true,
	}
	switch spec.Mode {
	case provider.AccessManaged:
		req.AnthropicVersion = vertexAnthropicVersion
	default:
		req.Model = spec.Config.DirectModelID
	}

	if spec.MemoryTool && spec.Config.SupportsMemoryTool {
		req.Tools = append(req.Tools, tool.Memory())
	}
	req.Tools = append(req.Tools, spec.Tools...)

	return json.Marshal(req)
}

// anthropicUserContent shapes the current turn. Without an attachment the
// content stays a plain string; with one it becomes an ordered block list,
// attachment first, prompt text last.
func anthropicUserContent(spec provider.RequestSpec) any {
	if spec.Attachment == nil {
		return spec.Prompt
	}
	return []anthropicBlock{
		anthropicAttachmentBlock(*spec.Attachment),
		{Type: "text", Text: spec.Prompt},
	}
}

// anthropicAttachmentBlock never fails: images and PDFs embed as base64,
// decodable text inlines as a fenced block, and anything else falls back
// to a base64 document. An attachment that is neither valid UTF-8 nor a
// recognized binary type still produces a usable block.
func anthropicAttachmentBlock(att provider.Attachment) anthropicBlock {
	switch {
	case att.IsImage():
		return anthropicBlock{Type: "image", Source: &anthropicSource{
			Type:      "base64",
			MediaType: att.MediaType,
			Data:      base64.StdEncoding.EncodeToString(att.Data),
		}}
	case att.IsPDF():
		return anthropicBlock{Type: "document", Source: &anthropicSource{
			Type:      "base64",
			MediaType: att.MediaType,
			Data:      base64.StdEncoding.EncodeToString(att.Data),
		}}
	case utf8.Valid(att.Data):
		return anthropicBlock{
			Type: "text",
			Text: fmt.Sprintf("Attached file %s:\n```\n%s\n```", att.Name(), att.Data),
		}
	default:
		return anthropicBlock{Type: "document", Source: &anthropicSource{
			Type:      "base64",
			MediaType: "application/octet-stream",
			Data:      base64.StdEncoding.EncodeToString(att.Data),
		}}
	}
}
