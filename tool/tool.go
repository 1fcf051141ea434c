// Package tool describes the tools a request can advertise to a model.
// The adapter never executes tools; descriptors only shape the request
// body, and tool invocations in the response stream are discarded by the
// parsers.
package tool

import (
	"github.com/invopop/jsonschema"
)

// memoryToolType is the beta type tag for the hosted memory tool.
const memoryToolType = "memory_20250818"

// Descriptor is one tool entry in a request payload. Builtin tools carry a
// provider-defined type tag and no schema; function tools carry an input
// schema derived from a Go parameter struct.
type Descriptor struct {
	// Type is set for provider-builtin tools, e.g. the memory tool.
	Type string `json:"type,omitempty"`

	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
}

// Builtin reports whether this descriptor names a provider-hosted tool.
func (d Descriptor) Builtin() bool {
	return d.Type != ""
}

// Memory returns the descriptor for the hosted memory tool. The endpoint
// resolver adds the matching beta header when the model supports it.
func Memory() Descriptor {
	return Descriptor{Type: memoryToolType, Name: "memory"}
}

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// Function builds a descriptor for a caller-defined tool whose input schema
// is reflected from params, a struct value whose fields describe the tool
// arguments.
func Function(name, description string, params any) Descriptor {
	return Descriptor{
		Name:        name,
		Description: description,
		InputSchema: reflector.Reflect(params),
	}
}
