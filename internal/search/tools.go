package search

import (
	"context"
	"fmt"

	"github.com/courseware-labs/ragtutor/internal/course"
)

// ToolDefinition describes a tool in the shape the model API expects.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Tool is a capability the model can invoke during an answer turn.
// Execute returns the text fed back to the model plus any sources that
// backed it.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, args map[string]any) (string, []course.Source, error)
}

// Registry holds the tools for a single answer turn and accumulates the
// sources their executions produced. It is not safe for concurrent use;
// each turn gets its own registry.
type Registry struct {
	tools   map[string]Tool
	order   []string
	sources []course.Source
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Definition().Name
		if _, dup := r.tools[name]; dup {
			continue
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r
}

// Definitions returns tool definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute runs the named tool and records its sources. An unknown tool
// name yields an explanatory result rather than an error so the model can
// recover within the turn.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}

	result, sources, err := tool.Execute(ctx, args)
	if err != nil {
		return "", err
	}
	r.sources = append(r.sources, sources...)
	return result, nil
}

// Sources returns all sources accumulated across this turn's executions,
// in execution order.
func (r *Registry) Sources() []course.Source {
	return r.sources
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg extracts an optional integer argument. JSON numbers decode as
// float64, so both forms are accepted. Returns -1 when absent.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return -1
}
