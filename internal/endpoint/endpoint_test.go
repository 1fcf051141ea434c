package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexhq/vex/provider"
)

func TestResolveManaged(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:         "claude-sonnet-4-5",
			Publisher:   provider.PublisherAnthropic,
			ModelID:     "claude-sonnet-4-5@20250929:streamRawPredict",
			AccessModes: []provider.AccessMode{provider.AccessManaged},
		},
		Mode:      provider.AccessManaged,
		Prompt:    "hi",
		ProjectID: "my-project",
		Location:  "us-east5",
	}

	url, headers, err := Resolve(spec, "tok-123")
	require.NoError(t, err)

	assert.Equal(t,
		"https://aiplatform.googleapis.com/v1/projects/my-project/locations/us-east5/publishers/anthropic/models/claude-sonnet-4-5@20250929:streamRawPredict",
		url)
	assert.Equal(t, "Bearer tok-123", headers["Authorization"])
	assert.Equal(t, "application/json; charset=utf-8", headers["Content-Type"])
	assert.Empty(t, headers["anthropic-beta"])
}

func TestResolveManagedDefaultMethod(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:         "some-model",
			Publisher:   provider.PublisherGoogle,
			ModelID:     "some-model@001",
			AccessModes: []provider.AccessMode{provider.AccessManaged},
		},
		Mode:      provider.AccessManaged,
		ProjectID: "p",
		Location:  "l",
	}

	url, _, err := Resolve(spec, "tok")
	require.NoError(t, err)
	assert.Contains(t, url, "models/some-model@001:predict", "a model id without a method suffix falls back to predict")
}

func TestResolveDirectAnthropic(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:           "claude-sonnet-4-5",
			Publisher:     provider.PublisherAnthropic,
			DirectModelID: "claude-sonnet-4-5-20250929",
			AccessModes:   []provider.AccessMode{provider.AccessDirect},
		},
		Mode:   provider.AccessDirect,
		APIKey: "sk-live",
	}

	url, headers, err := Resolve(spec, "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.anthropic.com/v1/messages", url)
	assert.Equal(t, "sk-live", headers["x-api-key"])
	assert.Equal(t, "2023-06-01", headers["anthropic-version"])
	assert.Empty(t, headers["Authorization"])
}

func TestResolveDirectGoogle(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:           "gemini-2-5-pro",
			Publisher:     provider.PublisherGoogle,
			DirectModelID: "gemini-2.5-pro",
			AccessModes:   []provider.AccessMode{provider.AccessDirect},
		},
		Mode:   provider.AccessDirect,
		APIKey: "goog-key",
	}

	url, headers, err := Resolve(spec, "")
	require.NoError(t, err)

	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro:streamGenerateContent", url)
	assert.Equal(t, "goog-key", headers["x-goog-api-key"])
}

func TestResolveBetaHeaders(t *testing.T) {
	config := provider.Config{
		Key:                     "claude-sonnet-4-5",
		Publisher:               provider.PublisherAnthropic,
		ModelID:                 "claude-sonnet-4-5@20250929:streamRawPredict",
		SupportsExtendedContext: true,
		SupportsMemoryTool:      true,
		AccessModes:             []provider.AccessMode{provider.AccessManaged},
	}

	tests := []struct {
		name     string
		extended bool
		memory   bool
		want     string
	}{
		{name: "extended only", extended: true, want: "context-1m-2025-08-07"},
		{name: "memory only", memory: true, want: "context-management-2025-06-27"},
		{name: "both markers comma-join", extended: true, memory: true, want: "context-1m-2025-08-07,context-management-2025-06-27"},
		{name: "neither omits the header", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := provider.RequestSpec{
				Config:          config,
				Mode:            provider.AccessManaged,
				ProjectID:       "p",
				Location:        "l",
				ExtendedContext: tt.extended,
				MemoryTool:      tt.memory,
			}

			_, headers, err := Resolve(spec, "tok")
			require.NoError(t, err)

			if tt.want == "" {
				_, present := headers["anthropic-beta"]
				assert.False(t, present)
				return
			}
			assert.Equal(t, tt.want, headers["anthropic-beta"])
		})
	}
}

func TestResolveBetaHeadersRequireSupport(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:         "claude-haiku-4-5",
			Publisher:   provider.PublisherAnthropic,
			ModelID:     "claude-haiku-4-5@20251001:streamRawPredict",
			AccessModes: []provider.AccessMode{provider.AccessManaged},
		},
		Mode:            provider.AccessManaged,
		ProjectID:       "p",
		Location:        "l",
		ExtendedContext: true,
		MemoryTool:      true,
	}

	_, headers, err := Resolve(spec, "tok")
	require.NoError(t, err)
	_, present := headers["anthropic-beta"]
	assert.False(t, present, "toggles without model support emit no beta markers")
}

func TestResolveCustom(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{
			Key:         "anything",
			Publisher:   provider.PublisherGeneric,
			ModelID:     "anything",
			AccessModes: []provider.AccessMode{provider.AccessCustom},
		},
		Mode:     provider.AccessCustom,
		Endpoint: "http://localhost:11434/v1/chat/completions",
	}

	url, headers, err := Resolve(spec, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1/chat/completions", url)
	_, present := headers["Authorization"]
	assert.False(t, present)

	spec.APIKey = "local-secret"
	_, headers, err = Resolve(spec, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer local-secret", headers["Authorization"])
}

func TestResolveUnknownMode(t *testing.T) {
	spec := provider.RequestSpec{
		Config: provider.Config{Key: "m", Publisher: provider.PublisherAnthropic, ModelID: "m"},
		Mode:   provider.AccessMode("tunnel"),
	}

	_, _, err := Resolve(spec, "")
	require.Error(t, err)
}
