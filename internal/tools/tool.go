package tools

import (
	"context"
	"fmt"

	"songbird/internal/llm"

	"github.com/pkg/errors"
)

// ErrUnknownTool is returned by Lookup for names that were never registered.
var ErrUnknownTool = errors.New("unknown tool")

type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry is built once at startup and is read-only afterwards, so it is
// safe to share between concurrent requests.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Definition().Name
		if name == "" {
			return nil, errors.New("tool with empty name")
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("tool registered twice: %s", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Definitions returns tool definitions in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTool, "%q", name)
	}
	return t, nil
}
