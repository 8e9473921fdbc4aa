package port

import "context"

// ParamSpec describes one string parameter of a tool's input schema.
type ParamSpec struct {
	Name        string
	Description string
	Required    bool
}

// ToolSpec describes one tool exposed to the calling agent. The description
// is a prompt contract: it documents the schema and query conventions for
// the model generating the SQL, not an enforced constraint.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// ToolProvider is the dispatch capability registered with the transport
// adapter. CallTool never returns a Go error: every outcome, including an
// unrecognized tool name, is a JSON-marshalable payload so that nothing
// propagates past the protocol boundary as a fault.
type ToolProvider interface {
	ListTools() []ToolSpec
	CallTool(ctx context.Context, name string, args map[string]any) any
}
