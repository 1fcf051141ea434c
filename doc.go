// Package vex is the adapter core behind a multi-provider model explorer
// front-end. One call takes a frozen RequestSpec, builds the
// publisher-correct body, resolves the endpoint for the chosen access
// mode, streams the response with cooperative cancellation, and parses the
// provider's incremental format into a single normalized result.
//
// Every call runs on its own worker goroutine and produces exactly one
// terminal value: a ParsedResult or a CallError. Progress events flow to
// an optional Hook and, when configured, through a broker to any number of
// subscribers. Calls share nothing but the read-only model registry, so
// cancelling one never affects another.
package vex
