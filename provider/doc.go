// Package provider defines the data model shared by the adapter pipeline:
// model configs and access modes, the frozen per-call RequestSpec, the
// terminal ParsedResult/CallError pair, and the progress event stream.
//
// Everything here is either immutable after construction (Config,
// RequestSpec) or produced exactly once per call (ParsedResult, CallError).
// The invariant the rest of the system leans on: one call yields exactly
// one terminal value, and a cancellation observed before completion always
// yields a CallError matching ErrCancelled, never a partial result.
package provider
