package tool

import (
	"context"
	"fmt"

	"github.com/astepien/roam/kernel/model"
)

// Tool is an executable capability the model may invoke during a turn.
// Run receives the call arguments as decoded JSON and returns a result
// map that is fed back to the model verbatim.
type Tool interface {
	// Name is the identifier the model uses to address the tool.
	Name() string
	Description() string
	// Declaration describes the tool to the model provider, including
	// its JSON-schema parameters.
	Declaration() model.ToolDefinition
	Run(context.Context, map[string]any) (map[string]any, error)
}

// BuildMap indexes tools by name for dispatch. Nil entries are skipped;
// an empty or duplicate name fails the whole registry, so callers catch
// misconfigured toolsets before the first model call.
func BuildMap(tools []Tool) (map[string]Tool, error) {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		switch name := t.Name(); {
		case name == "":
			return nil, fmt.Errorf("tool: tool with empty name")
		case byName[name] != nil:
			return nil, fmt.Errorf("tool: %q registered twice", name)
		default:
			byName[name] = t
		}
	}
	return byName, nil
}

// Declarations collects the model-visible definitions of tools,
// skipping nil entries.
func Declarations(tools []Tool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t != nil {
			defs = append(defs, t.Declaration())
		}
	}
	return defs
}
