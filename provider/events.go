package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	progressJSON = []byte(`{"type":"progress"}`)
	resultJSON   = []byte(`{"type":"result"}`)
	failureJSON  = []byte(`{"type":"failure"}`)
)

// Event is the sealed set of notifications a call emits: progress updates
// while the state machine advances, then exactly one Completed or Failed.
type Event interface {
	event()
}

// Progress reports a human-readable stage transition for UI consumption.
// It carries no control meaning; dropping progress events never affects the
// call outcome.
type Progress struct {
	CallID    uuid.UUID       `json:"call_id"`
	Stage     Stage           `json:"stage"`
	Message   string          `json:"message"`
	Percent   int             `json:"percent"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Progress) event() {}

// Completed carries the terminal ParsedResult of a successful call.
type Completed struct {
	CallID    uuid.UUID       `json:"call_id"`
	Result    ParsedResult    `json:"result"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Completed) event() {}

// Failed carries the terminal CallError of an unsuccessful call.
type Failed struct {
	CallID    uuid.UUID       `json:"call_id"`
	Err       *CallError      `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Failed) event() {}

// Hook receives call notifications. Implementations must be safe for use
// from the call's worker goroutine; all methods may be no-ops.
type Hook interface {
	OnProgress(context.Context, Progress)
	OnResult(context.Context, Completed)
	OnError(context.Context, Failed)
}

// NoopHook discards all notifications.
type NoopHook struct{}

func (NoopHook) OnProgress(context.Context, Progress) {}
func (NoopHook) OnResult(context.Context, Completed)  {}
func (NoopHook) OnError(context.Context, Failed)      {}

// MarshalJSON implements custom JSON marshaling for Progress.
func (p Progress) MarshalJSON() ([]byte, error) {
	result := progressJSON

	var err error
	result, err = sjson.SetBytes(result, "call_id", p.CallID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "stage", string(p.Stage))
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "message", p.Message)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "percent", p.Percent)
	if err != nil {
		return nil, err
	}

	if !p.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", p.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Progress.
func (p *Progress) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "progress" {
		return fmt.Errorf("missing or invalid type, expected 'progress'")
	}

	callID := gjson.GetBytes(data, "call_id")
	if !callID.Exists() {
		return fmt.Errorf("missing required field 'call_id'")
	}
	if err := p.CallID.UnmarshalText([]byte(callID.String())); err != nil {
		return fmt.Errorf("invalid call_id: %w", err)
	}

	p.Stage = Stage(gjson.GetBytes(data, "stage").String())
	p.Message = gjson.GetBytes(data, "message").String()
	p.Percent = int(gjson.GetBytes(data, "percent").Int())

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := p.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Completed.
func (c Completed) MarshalJSON() ([]byte, error) {
	result := resultJSON

	var err error
	result, err = sjson.SetBytes(result, "call_id", c.CallID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "result.visible_text", c.Result.VisibleText)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "result.raw_text", c.Result.RawText)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "result.input_tokens", c.Result.InputTokenEstimate)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "result.output_tokens", c.Result.OutputTokenEstimate)
	if err != nil {
		return nil, err
	}

	if !c.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", c.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Completed.
func (c *Completed) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "result" {
		return fmt.Errorf("missing or invalid type, expected 'result'")
	}

	callID := gjson.GetBytes(data, "call_id")
	if !callID.Exists() {
		return fmt.Errorf("missing required field 'call_id'")
	}
	if err := c.CallID.UnmarshalText([]byte(callID.String())); err != nil {
		return fmt.Errorf("invalid call_id: %w", err)
	}

	res := gjson.GetBytes(data, "result")
	if !res.Exists() {
		return fmt.Errorf("missing required field 'result'")
	}
	c.Result = ParsedResult{
		VisibleText:         res.Get("visible_text").String(),
		RawText:             res.Get("raw_text").String(),
		InputTokenEstimate:  int(res.Get("input_tokens").Int()),
		OutputTokenEstimate: int(res.Get("output_tokens").Int()),
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := c.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Failed.
func (f Failed) MarshalJSON() ([]byte, error) {
	result := failureJSON

	var err error
	result, err = sjson.SetBytes(result, "call_id", f.CallID.String())
	if err != nil {
		return nil, err
	}

	if f.Err != nil {
		result, err = sjson.SetBytes(result, "error.stage", string(f.Err.Stage))
		if err != nil {
			return nil, err
		}
		result, err = sjson.SetBytes(result, "error.kind", kindString(f.Err.Kind))
		if err != nil {
			return nil, err
		}
		result, err = sjson.SetBytes(result, "error.message", f.Err.Error())
		if err != nil {
			return nil, err
		}
	}

	if !f.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", f.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Failed.
func (f *Failed) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "failure" {
		return fmt.Errorf("missing or invalid type, expected 'failure'")
	}

	callID := gjson.GetBytes(data, "call_id")
	if !callID.Exists() {
		return fmt.Errorf("missing required field 'call_id'")
	}
	if err := f.CallID.UnmarshalText([]byte(callID.String())); err != nil {
		return fmt.Errorf("invalid call_id: %w", err)
	}

	errObj := gjson.GetBytes(data, "error")
	if !errObj.Exists() {
		return errors.New("missing required field 'error'")
	}
	f.Err = &CallError{
		Stage:   Stage(errObj.Get("stage").String()),
		Kind:    kindFromString(errObj.Get("kind").String()),
		Message: errObj.Get("message").String(),
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := f.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

func kindString(kind error) string {
	switch kind {
	case ErrCapabilityMismatch:
		return "capability_mismatch"
	case ErrAuth:
		return "auth"
	case ErrTransport:
		return "transport"
	case ErrCancelled:
		return "cancelled"
	case ErrParse:
		return "parse"
	default:
		return "unknown"
	}
}

func kindFromString(kind string) error {
	switch kind {
	case "capability_mismatch":
		return ErrCapabilityMismatch
	case "auth":
		return ErrAuth
	case "transport":
		return ErrTransport
	case "cancelled":
		return ErrCancelled
	case "parse":
		return ErrParse
	default:
		return ErrTransport
	}
}

// ToJSON serializes an event for transport across a broker.
func ToJSON(event Event) ([]byte, error) {
	switch ev := event.(type) {
	case Progress:
		return ev.MarshalJSON()
	case Completed:
		return ev.MarshalJSON()
	case Failed:
		return ev.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown event type %T", event)
	}
}

// FromJSON restores an event serialized with ToJSON.
func FromJSON(data []byte) (Event, error) {
	switch gjson.GetBytes(data, "type").String() {
	case "progress":
		var ev Progress
		if err := ev.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return ev, nil
	case "result":
		var ev Completed
		if err := ev.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return ev, nil
	case "failure":
		var ev Failed
		if err := ev.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event payload: %s", data)
	}
}
