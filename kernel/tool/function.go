package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/astepien/roam/kernel/model"
)

// Handler implements a tool as a plain typed function.
type Handler[TArgs, TResult any] func(context.Context, TArgs) (TResult, error)

// NewFunction wraps a typed handler as a Tool. The parameter schema is
// reflected from TArgs: field names and optionality follow the json
// struct tags, and a desc tag becomes the field's description shown to
// the model. Results that marshal to a JSON object are returned as-is;
// anything else is wrapped under a "result" key.
func NewFunction[TArgs, TResult any](name, description string, handler Handler[TArgs, TResult]) (Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool: function tool needs a name")
	}
	if handler == nil {
		return nil, fmt.Errorf("tool: %q has no handler", name)
	}
	return &funcTool[TArgs, TResult]{name: name, description: description, fn: handler}, nil
}

type funcTool[TArgs, TResult any] struct {
	name        string
	description string
	fn          Handler[TArgs, TResult]
}

func (t *funcTool[TArgs, TResult]) Name() string        { return t.name }
func (t *funcTool[TArgs, TResult]) Description() string { return t.description }

func (t *funcTool[TArgs, TResult]) Declaration() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        t.name,
		Description: t.description,
		Parameters:  schemaForType[TArgs](),
	}
}

func (t *funcTool[TArgs, TResult]) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	var in TArgs
	if err := reencode(args, &in); err != nil {
		return nil, fmt.Errorf("tool: decode args for %q: %w", t.name, err)
	}
	out, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	asMap := map[string]any{}
	if reencode(out, &asMap) != nil {
		// Scalar and array results don't fit a map; keep them addressable.
		return map[string]any{"result": out}, nil
	}
	return asMap, nil
}

// reencode moves a value across types through its JSON form.
func reencode(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
