// Package credentials defines how the adapter obtains bearer tokens for
// managed-mode calls. Real OAuth acquisition lives outside the core; the
// adapter only consumes a Source, which may block on network I/O and fail.
package credentials

import (
	"context"
	"fmt"
	"os"
)

// Source supplies a fresh bearer token for managed-mode calls.
type Source interface {
	BearerToken(ctx context.Context) (string, error)
}

// Static is a fixed token, useful for tests and for tokens minted out of
// band (e.g. `gcloud auth print-access-token`).
type Static string

func (s Static) BearerToken(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no bearer token configured")
	}
	return string(s), nil
}

// FromEnv reads the token from an environment variable on every call, so a
// token refreshed by an external process is picked up without restarting.
type FromEnv string

func (e FromEnv) BearerToken(context.Context) (string, error) {
	token := os.Getenv(string(e))
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty", string(e))
	}
	return token, nil
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) BearerToken(ctx context.Context) (string, error) {
	return f(ctx)
}
