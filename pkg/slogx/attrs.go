// Package slogx holds slog attribute helpers shared across the module.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr with key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stage returns an attribute for the pipeline stage a log line refers to.
func Stage[T ~string](stage T) slog.Attr {
	return slog.String("stage", string(stage))
}

// Model returns an attribute for the model key in play.
func Model(key string) slog.Attr {
	return slog.String("model", key)
}

// Stringer creates a slog.Attr from any fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
