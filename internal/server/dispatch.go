package server

import (
	"errors"
	"fmt"

	"github.com/screengrab/snapshot-mcp/internal/schema"
)

// Dispatch faults: input problems detected before the handler runs.
var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrMissingParameter = errors.New("missing required parameter")
)

// ErrToolExecution wraps any handler-level failure. Tool failures are data,
// not transport faults; dispatch itself never fails the session.
var ErrToolExecution = errors.New("tool execution failed")

// Dispatch validates and coerces rawArgs against the named tool's input
// schema, then invokes its handler.
//
// Validation order: unknown name, then missing required parameters, then
// per-type coercion of every present value. All faults are reported before
// any side effect occurs. Handler errors come back wrapped in
// ErrToolExecution.
func (r *Registry) Dispatch(name string, rawArgs map[string]interface{}) (interface{}, error) {
	tool, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	for _, param := range tool.InputSchema.Required {
		if _, present := rawArgs[param]; !present {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, param)
		}
	}

	args := make(map[string]interface{}, len(rawArgs))
	for param, raw := range rawArgs {
		prop, declared := tool.InputSchema.Properties[param]
		if !declared {
			// Undeclared extras are dropped rather than rejected.
			continue
		}
		coerced, err := schema.Coerce(prop, raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", param, err)
		}
		args[param] = coerced
	}

	result, err := tool.Handler(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolExecution, name, err)
	}
	return result, nil
}
