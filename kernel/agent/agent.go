package agent

import (
	"context"
	"iter"
	"time"

	"github.com/astepien/roam/kernel/model"
	"github.com/astepien/roam/kernel/tool"
)

// Event is one observable step of an agent run: a partial text fragment,
// a full assistant message, or a tool response.
type Event struct {
	ID      string
	Time    time.Time
	Message model.Message
	Partial bool
}

// Agent is the runtime execution unit.
type Agent interface {
	Name() string
	Run(InvocationContext) iter.Seq2[*Event, error]
}

// InvocationContext carries everything one agent run needs.
type InvocationContext interface {
	context.Context
	Input() string
	Model() model.LLM
	Tools() []tool.Tool
	Tool(string) (tool.Tool, bool)
}

// Invocation is the default InvocationContext implementation.
type Invocation struct {
	context.Context

	input   string
	llm     model.LLM
	tools   []tool.Tool
	toolMap map[string]tool.Tool
}

// NewInvocation builds an invocation context, validating the tool set.
func NewInvocation(ctx context.Context, input string, llm model.LLM, tools []tool.Tool) (*Invocation, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	toolMap, err := tool.BuildMap(tools)
	if err != nil {
		return nil, err
	}
	return &Invocation{
		Context: ctx,
		input:   input,
		llm:     llm,
		tools:   tools,
		toolMap: toolMap,
	}, nil
}

func (inv *Invocation) Input() string      { return inv.input }
func (inv *Invocation) Model() model.LLM   { return inv.llm }
func (inv *Invocation) Tools() []tool.Tool { return inv.tools }

func (inv *Invocation) Tool(name string) (tool.Tool, bool) {
	t, ok := inv.toolMap[name]
	return t, ok
}
