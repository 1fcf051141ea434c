package provider

import (
	"fmt"

	"github.com/go-openapi/swag"
)

// Publisher identifies the upstream model family a request is shaped for.
type Publisher string

const (
	PublisherAnthropic Publisher = "anthropic"
	PublisherGoogle    Publisher = "google"
	PublisherGeneric   Publisher = "generic"
)

// AccessMode selects the network path used to reach a model.
type AccessMode string

const (
	// AccessManaged routes through a cloud-hosted endpoint with an OAuth
	// bearer token obtained from a credentials.Source.
	AccessManaged AccessMode = "managed"
	// AccessDirect hits the provider's public API with an API key header.
	AccessDirect AccessMode = "direct"
	// AccessCustom posts an OpenAI-compatible body to a caller-supplied URL.
	AccessCustom AccessMode = "custom"
)

// ThinkingLevel controls how much intermediate reasoning a deep-thinking
// model is asked to perform. Empty means the model default.
type ThinkingLevel string

const (
	ThinkingOff  ThinkingLevel = ""
	ThinkingLow  ThinkingLevel = "low"
	ThinkingHigh ThinkingLevel = "high"
)

// Config describes a single hosted model: who publishes it, how it is
// addressed in each access mode, its token limits, and which optional
// features it supports. Configs are loaded once into the models registry at
// startup and never mutated afterwards.
type Config struct {
	// Key is the registry lookup key, e.g. "claude-sonnet-4-5".
	Key string

	Publisher   Publisher
	DisplayName string

	// ModelID is the managed-mode identifier in "<model-path>:<method>"
	// form. The method suffix selects the RPC ("streamRawPredict",
	// "streamGenerateContent"); when absent the resolver falls back to
	// "predict".
	ModelID string

	// DirectModelID is the identifier used against the publisher's public
	// API. It often differs from the managed path, e.g.
	// "claude-sonnet-4-5@20250929" vs "claude-sonnet-4-5-20250929".
	DirectModelID string

	MaxInputTokens  int
	MaxOutputTokens int
	// MaxInputTokensExtended is the combined input+output ceiling available
	// when the extended-context beta is active. Zero when unsupported.
	MaxInputTokensExtended int

	SupportsExtendedContext bool
	SupportsMemoryTool      bool
	SupportsGrounding       bool
	SupportsDeepThinking    bool

	DefaultThinkingLevel ThinkingLevel

	// AccessModes lists the modes this model can be reached through.
	AccessModes []AccessMode
}

// SupportsAccessMode reports whether the model can be reached through mode.
func (c Config) SupportsAccessMode(mode AccessMode) bool {
	modes := make([]string, len(c.AccessModes))
	for i, m := range c.AccessModes {
		modes[i] = string(m)
	}
	return swag.ContainsStrings(modes, string(mode))
}

// ModelPath splits ModelID into its path and RPC method parts.
func (c Config) ModelPath() (path, method string) {
	for i := range c.ModelID {
		if c.ModelID[i] == ':' {
			return c.ModelID[:i], c.ModelID[i+1:]
		}
	}
	return c.ModelID, "predict"
}

// Validate reports programmer errors in a hand-built config.
func (c Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("model config requires a key")
	}
	switch c.Publisher {
	case PublisherAnthropic, PublisherGoogle, PublisherGeneric:
	default:
		return fmt.Errorf("model %s: unknown publisher %q", c.Key, c.Publisher)
	}
	if c.ModelID == "" && c.DirectModelID == "" {
		return fmt.Errorf("model %s: requires a model identifier", c.Key)
	}
	if len(c.AccessModes) == 0 {
		return fmt.Errorf("model %s: requires at least one access mode", c.Key)
	}
	return nil
}
