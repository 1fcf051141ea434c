package payload

import (
	json "github.com/goccy/go-json"

	"github.com/vexhq/vex/provider"
)

// compatRequest is the minimal OpenAI-style body user-supplied endpoints
// receive: a flat message list, streaming on, and a token ceiling. No
// attachments, tools, or publisher-specific extras.
type compatRequest struct {
	Model     string          `json:"model"`
	Messages  []compatMessage `json:"messages"`
	Stream    bool            `json:"stream"`
	MaxTokens int             `json:"max_tokens"`
}

type compatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildCompat(spec provider.RequestSpec) ([]byte, error) {
	messages := make([]compatMessage, 0, len(spec.History)+1)
	for _, turn := range spec.History {
		messages = append(messages, compatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, compatMessage{Role: "user", Content: spec.Prompt})

	model := spec.Config.DirectModelID
	if model == "" {
		model = spec.Config.Key
	}

	return json.Marshal(compatRequest{
		Model:     model,
		Messages:  messages,
		Stream:    true,
		MaxTokens: outputTokenBudget(spec),
	})
}
