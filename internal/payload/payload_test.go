package payload

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vexhq/vex/provider"
)

func anthropicConfig() provider.Config {
	return provider.Config{
		Key:                     "claude-sonnet-4-5",
		Publisher:               provider.PublisherAnthropic,
		ModelID:                 "claude-sonnet-4-5@20250929:streamRawPredict",
		DirectModelID:           "claude-sonnet-4-5-20250929",
		MaxInputTokens:          200000,
		MaxOutputTokens:         64000,
		MaxInputTokensExtended:  1000000,
		SupportsExtendedContext: true,
		SupportsMemoryTool:      true,
		AccessModes:             []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	}
}

func googleConfig() provider.Config {
	return provider.Config{
		Key:                  "gemini-3-pro",
		Publisher:            provider.PublisherGoogle,
		ModelID:              "gemini-3.0-pro-001@default:streamGenerateContent",
		DirectModelID:        "gemini-3.0-pro-001",
		MaxInputTokens:       2097152,
		MaxOutputTokens:      65536,
		SupportsGrounding:    true,
		SupportsDeepThinking: true,
		DefaultThinkingLevel: provider.ThinkingLow,
		AccessModes:          []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	}
}

func TestBuildAnthropicManaged(t *testing.T) {
	spec := provider.RequestSpec{
		Config: anthropicConfig(),
		Mode:   provider.AccessManaged,
		Prompt: "hello there",
		History: provider.History{
			{Role: provider.RoleUser, Content: "first question"},
			{Role: provider.RoleAssistant, Content: "first answer"},
		},
	}

	body, err := Build(spec)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(body))

	result := gjson.ParseBytes(body)
	assert.Equal(t, "vertex-2023-10-16", result.Get("anthropic_version").String())
	assert.False(t, result.Get("model").Exists(), "managed bodies address the model through the URL")
	assert.True(t, result.Get("stream").Bool())
	assert.Equal(t, int64(64000), result.Get("max_tokens").Int())

	messages := result.Get("messages").Array()
	require.Len(t, messages, 3)
	assert.Equal(t, "user", messages[0].Get("role").String())
	assert.Equal(t, "first question", messages[0].Get("content").String())
	assert.Equal(t, "assistant", messages[1].Get("role").String())
	assert.Equal(t, "first answer", messages[1].Get("content").String())
	assert.Equal(t, "user", messages[2].Get("role").String())
	assert.Equal(t, "hello there", messages[2].Get("content").String())
}

func TestBuildAnthropicDirect(t *testing.T) {
	spec := provider.RequestSpec{
		Config: anthropicConfig(),
		Mode:   provider.AccessDirect,
		Prompt: "hello there",
		APIKey: "sk-test",
	}

	body, err := Build(spec)
	require.NoError(t, err)

	result := gjson.ParseBytes(body)
	assert.Equal(t, "claude-sonnet-4-5-20250929", result.Get("model").String())
	assert.False(t, result.Get("anthropic_version").Exists())
}

func TestBuildAnthropicMemoryTool(t *testing.T) {
	spec := provider.RequestSpec{
		Config:     anthropicConfig(),
		Mode:       provider.AccessManaged,
		Prompt:     "remember this",
		MemoryTool: true,
	}

	body, err := Build(spec)
	require.NoError(t, err)

	tools := gjson.GetBytes(body, "tools").Array()
	require.Len(t, tools, 1)
	assert.Equal(t, "memory_20250818", tools[0].Get("type").String())
	assert.Equal(t, "memory", tools[0].Get("name").String())
}

func TestBuildAnthropicMemoryToolUnsupported(t *testing.T) {
	config := anthropicConfig()
	config.SupportsMemoryTool = false
	spec := provider.RequestSpec{
		Config:     config,
		Mode:       provider.AccessManaged,
		Prompt:     "remember this",
		MemoryTool: true,
	}

	body, err := Build(spec)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(body, "tools").Exists())
}

func TestBuildAnthropicAttachments(t *testing.T) {
	pngData := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	binData := []byte{0x00, 0xff, 0xfe, 0x00}

	tests := []struct {
		name       string
		attachment provider.Attachment
		blockType  string
		check      func(t *testing.T, block gjson.Result)
	}{
		{
			name:       "image embeds as base64",
			attachment: provider.NewAttachment("chart.png", pngData),
			blockType:  "image",
			check: func(t *testing.T, block gjson.Result) {
				assert.Equal(t, "base64", block.Get("source.type").String())
				assert.Equal(t, "image/png", block.Get("source.media_type").String())
				assert.Equal(t, base64.StdEncoding.EncodeToString(pngData), block.Get("source.data").String())
			},
		},
		{
			name:       "pdf embeds as document",
			attachment: provider.NewAttachment("report.pdf", []byte("%PDF-1.4")),
			blockType:  "document",
			check: func(t *testing.T, block gjson.Result) {
				assert.Equal(t, "application/pdf", block.Get("source.media_type").String())
			},
		},
		{
			name:       "text inlines as fenced block",
			attachment: provider.NewAttachment("notes.txt", []byte("line one\nline two")),
			blockType:  "text",
			check: func(t *testing.T, block gjson.Result) {
				text := block.Get("text").String()
				assert.Contains(t, text, "Attached file notes.txt:")
				assert.Contains(t, text, "line one\nline two")
				assert.Contains(t, text, "```")
			},
		},
		{
			name:       "undecodable bytes fall back to a document",
			attachment: provider.NewAttachment("blob.bin", binData),
			blockType:  "document",
			check: func(t *testing.T, block gjson.Result) {
				assert.Equal(t, "application/octet-stream", block.Get("source.media_type").String())
				assert.Equal(t, base64.StdEncoding.EncodeToString(binData), block.Get("source.data").String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := provider.RequestSpec{
				Config:     anthropicConfig(),
				Mode:       provider.AccessManaged,
				Prompt:     "describe this",
				Attachment: &tt.attachment,
			}

			body, err := Build(spec)
			require.NoError(t, err)

			blocks := gjson.GetBytes(body, "messages.0.content").Array()
			require.Len(t, blocks, 2, "attachment block first, prompt text last")
			assert.Equal(t, tt.blockType, blocks[0].Get("type").String())
			tt.check(t, blocks[0])
			assert.Equal(t, "text", blocks[1].Get("type").String())
			assert.Equal(t, "describe this", blocks[1].Get("text").String())
		})
	}
}

func TestOutputTokenBudget(t *testing.T) {
	config := anthropicConfig()

	tests := []struct {
		name     string
		prompt   string
		extended bool
		want     int
	}{
		{
			name:   "standard window uses the model ceiling",
			prompt: "short prompt",
			want:   64000,
		},
		{
			name:     "extended window leaves room for the prompt",
			prompt:   strings.Repeat("x", 3960000),
			extended: true,
			// 1000000 - 3960000/4 = 10000
			want: 10000,
		},
		{
			name:     "budget never drops below the floor",
			prompt:   strings.Repeat("x", 4000000),
			extended: true,
			want:     1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := provider.RequestSpec{
				Config:          config,
				Mode:            provider.AccessManaged,
				Prompt:          tt.prompt,
				ExtendedContext: tt.extended,
			}
			assert.Equal(t, tt.want, outputTokenBudget(spec))
		})
	}
}

func TestBuildGoogle(t *testing.T) {
	spec := provider.RequestSpec{
		Config: googleConfig(),
		Mode:   provider.AccessManaged,
		Prompt: "what is new",
		History: provider.History{
			{Role: provider.RoleUser, Content: "earlier question"},
			{Role: provider.RoleAssistant, Content: "earlier answer"},
		},
	}

	body, err := Build(spec)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(body))

	result := gjson.ParseBytes(body)
	contents := result.Get("contents").Array()
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Get("role").String())
	assert.Equal(t, "model", contents[1].Get("role").String(), "assistant turns remap to the model role")
	assert.Equal(t, "earlier answer", contents[1].Get("parts.0.text").String())
	assert.Equal(t, "what is new", contents[2].Get("parts.0.text").String())

	assert.Equal(t, int64(65536), result.Get("generationConfig.maxOutputTokens").Int())
}

func TestBuildGoogleThinkingConfig(t *testing.T) {
	tests := []struct {
		name            string
		config          provider.Config
		level           provider.ThinkingLevel
		includeThoughts bool
		wantLevel       string
	}{
		{
			name:      "explicit level wins",
			config:    googleConfig(),
			level:     provider.ThinkingHigh,
			wantLevel: "high",
		},
		{
			name:            "empty level falls back to the model default",
			config:          googleConfig(),
			includeThoughts: true,
			wantLevel:       "low",
		},
		{
			name: "unsupported model gets no thinking config",
			config: func() provider.Config {
				c := googleConfig()
				c.SupportsDeepThinking = false
				c.DefaultThinkingLevel = provider.ThinkingOff
				return c
			}(),
			level: provider.ThinkingHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := provider.RequestSpec{
				Config:          tt.config,
				Mode:            provider.AccessManaged,
				Prompt:          "think hard",
				ThinkingLevel:   tt.level,
				IncludeThoughts: tt.includeThoughts,
			}

			body, err := Build(spec)
			require.NoError(t, err)

			tc := gjson.GetBytes(body, "generationConfig.thinkingConfig")
			if tt.wantLevel == "" {
				assert.False(t, tc.Exists())
				return
			}
			assert.Equal(t, tt.wantLevel, tc.Get("thinkingLevel").String())
			assert.Equal(t, tt.includeThoughts, tc.Get("includeThoughts").Bool())
		})
	}
}

func TestBuildGoogleGroundingToolKey(t *testing.T) {
	tests := []struct {
		mode provider.AccessMode
		key  string
	}{
		{mode: provider.AccessManaged, key: "googleSearch"},
		{mode: provider.AccessDirect, key: "google_search"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			spec := provider.RequestSpec{
				Config:    googleConfig(),
				Mode:      tt.mode,
				Prompt:    "search for it",
				APIKey:    "key",
				Grounding: true,
			}

			body, err := Build(spec)
			require.NoError(t, err)

			tools := gjson.GetBytes(body, "tools").Array()
			require.Len(t, tools, 1)
			assert.True(t, tools[0].Get(tt.key).Exists())
		})
	}
}

func TestBuildGoogleGroundingUnsupported(t *testing.T) {
	config := googleConfig()
	config.SupportsGrounding = false
	spec := provider.RequestSpec{
		Config:    config,
		Mode:      provider.AccessManaged,
		Prompt:    "search for it",
		Grounding: true,
	}

	body, err := Build(spec)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(body, "tools").Exists())
}

func TestBuildCustomAlwaysCompat(t *testing.T) {
	// Custom mode ignores the publisher and speaks the OpenAI-style shape.
	for _, config := range []provider.Config{anthropicConfig(), googleConfig()} {
		spec := provider.RequestSpec{
			Config:   config,
			Mode:     provider.AccessCustom,
			Endpoint: "http://localhost:8080/v1/chat/completions",
			Prompt:   "hello",
			History: provider.History{
				{Role: provider.RoleAssistant, Content: "prior"},
			},
		}

		body, err := Build(spec)
		require.NoError(t, err)

		result := gjson.ParseBytes(body)
		assert.Equal(t, config.DirectModelID, result.Get("model").String())
		assert.True(t, result.Get("stream").Bool())

		messages := result.Get("messages").Array()
		require.Len(t, messages, 2)
		assert.Equal(t, "assistant", messages[0].Get("role").String())
		assert.Equal(t, "hello", messages[1].Get("content").String())
	}
}

func TestBuildUnknownPublisher(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:         "mystery",
			Publisher:   provider.Publisher("mystery"),
			ModelID:     "mystery-1",
			AccessModes: []provider.AccessMode{provider.AccessManaged},
		},
		Mode:   provider.AccessManaged,
		Prompt: "hello",
	}

	_, err := Build(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown publisher")
}
