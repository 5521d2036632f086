// Package schema defines the typed input schemas attached to tool
// descriptors and the coercion table that turns raw argument values into the
// declared parameter types. Both the server-side dispatcher and the
// interactive client coerce through the same table so a value accepted on one
// side is accepted on the other.
package schema

// Declared parameter types. This is a closed set; Coerce rejects anything
// outside it.
const (
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Property describes a single named parameter.
type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Items       *Property   `json:"items,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
}

// InputSchema describes a tool's parameters. Required lists parameter names
// in declaration order; the interactive client prompts in that order.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Object builds an input schema of type "object".
func Object(properties map[string]Property, required ...string) InputSchema {
	return InputSchema{Type: "object", Properties: properties, Required: required}
}
