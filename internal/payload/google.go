package payload

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/vexhq/vex/provider"
)

type googleRequest struct {
	Contents         []googleContent `json:"contents"`
	GenerationConfig googleGenConfig `json:"generationConfig"`
	Tools            []googleTool    `json:"tools,omitempty"`
}

type googleContent struct {
	Role  string       `json:"role"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *googleInlineData `json:"inlineData,omitempty"`
}

type googleInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type googleGenConfig struct {
	MaxOutputTokens int                   `json:"maxOutputTokens"`
	ThinkingConfig  *googleThinkingConfig `json:"thinkingConfig,omitempty"`
}

type googleThinkingConfig struct {
	ThinkingLevel   string `json:"thinkingLevel"`
	IncludeThoughts bool   `json:"includeThoughts"`
}

// googleTool is a single-key tool descriptor. The web-search key differs
// between the two access modes; see searchToolKey.
type googleTool map[string]struct{}

func buildGoogle(spec provider.RequestSpec) ([]byte, error) {
	contents := make([]googleContent, 0, len(spec.History)+1)
	for _, turn := range spec.History {
		contents = append(contents, googleContent{
			Role:  googleRole(turn.Role),
			Parts: []googlePart{{Text: turn.Content}},
		})
	}
	contents = append(contents, googleContent{Role: "user", Parts: googleUserParts(spec)})

	req := googleRequest{
		Contents: contents,
		GenerationConfig: googleGenConfig{
			MaxOutputTokens: spec.Config.MaxOutputTokens,
		},
	}

	level := spec.ThinkingLevel
	if level == provider.ThinkingOff {
		level = spec.Config.DefaultThinkingLevel
	}
	if spec.Config.SupportsDeepThinking && level != provider.ThinkingOff {
		req.GenerationConfig.ThinkingConfig = &googleThinkingConfig{
			ThinkingLevel:   string(level),
			IncludeThoughts: spec.IncludeThoughts,
		}
	}

	if spec.Grounding && spec.Config.SupportsGrounding {
		req.Tools = append(req.Tools, googleTool{searchToolKey(spec.Mode): {}})
	}

	return json.Marshal(req)
}

// searchToolKey returns the web-search tool key for the access mode. The
// two Google APIs genuinely diverge here: the managed surface expects
// camelCase, the public API snake_case. Keyed by mode, not publisher.
func searchToolKey(mode provider.AccessMode) string {
	if mode == provider.AccessDirect {
		return "google_search"
	}
	return "googleSearch"
}

// googleRole remaps assistant turns to the "model" role the contents API
// expects; user turns pass through.
func googleRole(role provider.Role) string {
	if role == provider.RoleAssistant {
		return "model"
	}
	return string(role)
}

// googleUserParts orders the current turn: attachment part first when
// present, prompt text last.
func googleUserParts(spec provider.RequestSpec) []googlePart {
	if spec.Attachment == nil {
		return []googlePart{{Text: spec.Prompt}}
	}
	return []googlePart{
		googleAttachmentPart(*spec.Attachment),
		{Text: spec.Prompt},
	}
}

// googleAttachmentPart mirrors the anthropic fallback ladder: images embed
// inline, decodable text inlines as a fenced block, everything else embeds
// as inline binary. It cannot fail.
func googleAttachmentPart(att provider.Attachment) googlePart {
	switch {
	case att.IsImage():
		return googlePart{InlineData: &googleInlineData{
			MimeType: att.MediaType,
			Data:     base64.StdEncoding.EncodeToString(att.Data),
		}}
	case utf8.Valid(att.Data):
		return googlePart{Text: fmt.Sprintf("Attached file %s:\n```\n%s\n```", att.Name(), att.Data)}
	default:
		mimeType := att.MediaType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		return googlePart{InlineData: &googleInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(att.Data),
		}}
	}
}
