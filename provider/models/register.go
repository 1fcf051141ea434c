// Package models holds the static model registry. Configs are registered
// once at init and treated as read-only for the lifetime of the process;
// callers look them up by key and copy them into a RequestSpec.
package models

import (
	"sort"

	"github.com/vexhq/vex/internal/registry"
	"github.com/vexhq/vex/provider"
)

var Global = registry.New[provider.Config]()

func Add(config provider.Config) {
	Global.Add(config.Key, config)
}

func Get(key string) (provider.Config, bool) {
	return Global.Get(key)
}

// Keys returns all registered model keys in sorted order.
func Keys() []string {
	keys := Global.Keys()
	sort.Strings(keys)
	return keys
}

func init() {
	for _, config := range builtin {
		Add(config)
	}
}

// builtin mirrors the hosted catalog the desktop front-end exposes. Token
// limits and managed model identifiers come from the upstream publishers;
// direct identifiers are the publishers' public API names for the same
// snapshots.
var builtin = []provider.Config{
	{
		Key:             "claude-haiku-4-5",
		Publisher:       provider.PublisherAnthropic,
		DisplayName:     "Claude 4.5 Haiku",
		ModelID:         "claude-haiku-4-5@20251001:streamRawPredict",
		DirectModelID:   "claude-haiku-4-5-20251001",
		MaxInputTokens:  200000,
		MaxOutputTokens: 8192,
		AccessModes:     []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:             "claude-3-7-sonnet",
		Publisher:       provider.PublisherAnthropic,
		DisplayName:     "Claude 3.7 Sonnet",
		ModelID:         "claude-3-7-sonnet@20250219:streamRawPredict",
		DirectModelID:   "claude-3-7-sonnet-20250219",
		MaxInputTokens:  200000,
		MaxOutputTokens: 64000,
		AccessModes:     []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:                     "claude-sonnet-4-5",
		Publisher:               provider.PublisherAnthropic,
		DisplayName:             "Claude 4.5 Sonnet",
		ModelID:                 "claude-sonnet-4-5@20250929:streamRawPredict",
		DirectModelID:           "claude-sonnet-4-5-20250929",
		MaxInputTokens:          200000,
		MaxOutputTokens:         64000,
		MaxInputTokensExtended:  1000000,
		SupportsExtendedContext: true,
		SupportsMemoryTool:      true,
		AccessModes:             []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:             "claude-opus-4-1",
		Publisher:       provider.PublisherAnthropic,
		DisplayName:     "Claude 4.1 Opus",
		ModelID:         "claude-opus-4-1@20250805:streamRawPredict",
		DirectModelID:   "claude-opus-4-1-20250805",
		MaxInputTokens:  200000,
		MaxOutputTokens: 32000,
		AccessModes:     []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:               "gemini-2-5-pro",
		Publisher:         provider.PublisherGoogle,
		DisplayName:       "Gemini 2.5 Pro",
		ModelID:           "gemini-2.5-pro@default:streamGenerateContent",
		DirectModelID:     "gemini-2.5-pro",
		MaxInputTokens:    1048576,
		MaxOutputTokens:   65536,
		SupportsGrounding: true,
		AccessModes:       []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:               "gemini-2-5-flash",
		Publisher:         provider.PublisherGoogle,
		DisplayName:       "Gemini 2.5 Flash",
		ModelID:           "gemini-2.5-flash@default:streamGenerateContent",
		DirectModelID:     "gemini-2.5-flash",
		MaxInputTokens:    1048576,
		MaxOutputTokens:   65535,
		SupportsGrounding: true,
		AccessModes:       []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
	{
		Key:                     "gemini-3-pro",
		Publisher:               provider.PublisherGoogle,
		DisplayName:             "Gemini 3 Pro",
		ModelID:                 "gemini-3.0-pro-001@default:streamGenerateContent",
		DirectModelID:           "gemini-3.0-pro-001",
		MaxInputTokens:          2097152,
		MaxOutputTokens:         65536,
		MaxInputTokensExtended:  2097152,
		SupportsExtendedContext: true,
		SupportsGrounding:       true,
		SupportsDeepThinking:    true,
		DefaultThinkingLevel:    provider.ThinkingLow,
		AccessModes:             []provider.AccessMode{provider.AccessManaged, provider.AccessDirect},
	},
}
