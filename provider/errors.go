package provider

import (
	"errors"
	"fmt"
)

// Stage names the orchestrator state in which a call failed.
type Stage string

const (
	StageAuthenticating  Stage = "authenticating"
	StageBuildingRequest Stage = "building_request"
	StageSending         Stage = "sending"
	StageStreaming       Stage = "streaming"
	StageParsing         Stage = "parsing"
)

// Sentinel error kinds. Callers match these with errors.Is to decide how to
// present a failure; ErrCancelled in particular is the user's own abort and
// should not be rendered as an alarming error.
var (
	ErrCapabilityMismatch = errors.New("capability mismatch")
	ErrAuth               = errors.New("authentication failed")
	ErrTransport          = errors.New("transport failed")
	ErrCancelled          = errors.New("cancelled")
	ErrParse              = errors.New("unparseable response")
)

// CallError is the single terminal error shape for a call. It records the
// stage the call was in, the kind sentinel it matches, and an optional
// wrapped cause. Exactly one of CallError or ParsedResult is produced per
// invocation.
type CallError struct {
	Stage   Stage
	Kind    error
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *CallError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is makes errors.Is(err, ErrCancelled) and friends work on the kind
// sentinel even when a cause is wrapped.
func (e *CallError) Is(target error) bool {
	return target == e.Kind
}

// NewCallError builds a CallError for the given stage and kind.
func NewCallError(stage Stage, kind error, message string, cause error) *CallError {
	return &CallError{Stage: stage, Kind: kind, Message: message, Err: cause}
}

// Cancelled is the distinguished error produced when the caller aborts a
// call before its terminal emission.
func Cancelled(stage Stage) *CallError {
	return &CallError{Stage: stage, Kind: ErrCancelled, Message: "query cancelled by user"}
}
