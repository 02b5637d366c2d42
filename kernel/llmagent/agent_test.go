package llmagent

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/astepien/roam/kernel/agent"
	"github.com/astepien/roam/kernel/model"
	"github.com/astepien/roam/kernel/tool"
)

type testLLM struct {
	name string
	fn   func(req *model.Request) (*model.Response, error)
}

func newTestLLM(name string, fn func(req *model.Request) (*model.Response, error)) *testLLM {
	return &testLLM{name: name, fn: fn}
}

func (m *testLLM) Name() string { return m.name }

func (m *testLLM) Generate(_ context.Context, req *model.Request) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		resp, err := m.fn(req)
		if err != nil {
			yield(nil, err)
			return
		}
		resp.TurnComplete = true
		yield(resp, nil)
	}
}

type streamLLM struct {
	name   string
	chunks []string
	final  func(req *model.Request) *model.Response
}

func (m *streamLLM) Name() string { return m.name }

func (m *streamLLM) Generate(_ context.Context, req *model.Request) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		for _, chunk := range m.chunks {
			partial := &model.Response{
				Message: model.Message{Role: model.RoleAssistant, Text: chunk},
				Partial: true,
			}
			if !yield(partial, nil) {
				return
			}
		}
		resp := m.final(req)
		resp.TurnComplete = true
		yield(resp, nil)
	}
}

type namedTool struct {
	name string
	run  func(context.Context, map[string]any) (map[string]any, error)
}

func (t namedTool) Name() string        { return t.name }
func (t namedTool) Description() string { return t.name }
func (t namedTool) Declaration() model.ToolDefinition {
	return model.ToolDefinition{Name: t.name, Description: t.name, Parameters: map[string]any{"type": "object"}}
}
func (t namedTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	if t.run == nil {
		return map[string]any{}, nil
	}
	return t.run(ctx, args)
}

func newInvocation(t *testing.T, input string, llm model.LLM, tools []tool.Tool) *agent.Invocation {
	t.Helper()
	inv, err := agent.NewInvocation(context.Background(), input, llm, tools)
	if err != nil {
		t.Fatal(err)
	}
	return inv
}

func runAll(t *testing.T, ag *Agent, inv agent.InvocationContext) []*agent.Event {
	t.Helper()
	var out []*agent.Event
	for ev, err := range ag.Run(inv) {
		if err != nil {
			t.Fatalf("run error: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func TestToolLoop(t *testing.T) {
	var calls int
	lookup := namedTool{name: "lookup", run: func(_ context.Context, args map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"value": "42"}, nil
	}}

	llm := newTestLLM("fake", func(req *model.Request) (*model.Response, error) {
		last := req.Messages[len(req.Messages)-1]
		switch last.Role {
		case model.RoleUser:
			return &model.Response{Message: model.Message{
				Role:      model.RoleAssistant,
				ToolCalls: []model.ToolCall{{ID: "c1", Name: "lookup", Args: map[string]any{"q": "answer"}}},
			}}, nil
		case model.RoleTool:
			if last.ToolResponse == nil || last.ToolResponse.Result["value"] != "42" {
				return nil, fmt.Errorf("tool result not fed back: %+v", last)
			}
			return &model.Response{Message: model.Message{Role: model.RoleAssistant, Text: "the answer is 42"}}, nil
		}
		return nil, fmt.Errorf("unexpected last role %q", last.Role)
	})

	ag, err := New(Config{Name: "test", SystemPrompt: "be terse", MaxSteps: 5})
	if err != nil {
		t.Fatal(err)
	}
	events := runAll(t, ag, newInvocation(t, "what is the answer", llm, []tool.Tool{lookup}))
	if calls != 1 {
		t.Fatalf("tool calls = %d, want 1", calls)
	}
	final := events[len(events)-1]
	if final.Message.Text != "the answer is 42" {
		t.Fatalf("final answer = %q", final.Message.Text)
	}
}

func TestMaxStepsEndsCleanly(t *testing.T) {
	loop := namedTool{name: "loop"}
	step := 0
	llm := newTestLLM("fake", func(req *model.Request) (*model.Response, error) {
		step++
		return &model.Response{Message: model.Message{
			Role:      model.RoleAssistant,
			Text:      fmt.Sprintf("still looking, step %d", step),
			ToolCalls: []model.ToolCall{{ID: fmt.Sprintf("c%d", step), Name: "loop", Args: map[string]any{"n": step}}},
		}}, nil
	})

	ag, err := New(Config{Name: "test", MaxSteps: 3})
	if err != nil {
		t.Fatal(err)
	}
	// The bound is a normal completion, not an error.
	events := runAll(t, ag, newInvocation(t, "never stop", llm, []tool.Tool{loop}))
	if step != 3 {
		t.Fatalf("model steps = %d, want 3", step)
	}
	// The model's last text must survive the bound so callers have an
	// answer to show; tool-response events interleave after each step.
	var lastText string
	for _, ev := range events {
		if ev.Message.Role == model.RoleAssistant && ev.Message.Text != "" {
			lastText = ev.Message.Text
		}
	}
	if lastText != "still looking, step 3" {
		t.Fatalf("last assistant text = %q, want the final step's message", lastText)
	}
}

func TestUnknownToolBecomesErrorResult(t *testing.T) {
	first := true
	llm := newTestLLM("fake", func(req *model.Request) (*model.Response, error) {
		if first {
			first = false
			return &model.Response{Message: model.Message{
				Role:      model.RoleAssistant,
				ToolCalls: []model.ToolCall{{ID: "c1", Name: "missing", Args: map[string]any{}}},
			}}, nil
		}
		last := req.Messages[len(req.Messages)-1]
		errText, _ := last.ToolResponse.Result["error"].(string)
		if !strings.Contains(errText, "not available") {
			return nil, fmt.Errorf("missing tool error not fed back: %v", last.ToolResponse.Result)
		}
		return &model.Response{Message: model.Message{Role: model.RoleAssistant, Text: "recovered"}}, nil
	})

	ag, err := New(Config{Name: "test", MaxSteps: 5})
	if err != nil {
		t.Fatal(err)
	}
	events := runAll(t, ag, newInvocation(t, "hi", llm, nil))
	if events[len(events)-1].Message.Text != "recovered" {
		t.Fatalf("final = %q", events[len(events)-1].Message.Text)
	}
}

func TestDuplicateToolCallGuard(t *testing.T) {
	runs := 0
	echo := namedTool{name: "echo", run: func(context.Context, map[string]any) (map[string]any, error) {
		runs++
		return map[string]any{"ok": true}, nil
	}}

	step := 0
	var lastResult map[string]any
	llm := newTestLLM("fake", func(req *model.Request) (*model.Response, error) {
		last := req.Messages[len(req.Messages)-1]
		if last.Role == model.RoleTool {
			lastResult = last.ToolResponse.Result
		}
		step++
		if step <= 4 {
			return &model.Response{Message: model.Message{
				Role:      model.RoleAssistant,
				ToolCalls: []model.ToolCall{{ID: fmt.Sprintf("c%d", step), Name: "echo", Args: map[string]any{"a": 1}}},
			}}, nil
		}
		return &model.Response{Message: model.Message{Role: model.RoleAssistant, Text: "done"}}, nil
	})

	ag, err := New(Config{Name: "test", MaxSteps: 10})
	if err != nil {
		t.Fatal(err)
	}
	runAll(t, ag, newInvocation(t, "go", llm, []tool.Tool{echo}))
	if runs != 2 {
		t.Fatalf("tool executions = %d, want 2 (identical calls beyond the second are blocked)", runs)
	}
	errText, _ := lastResult["error"].(string)
	if !strings.Contains(errText, "duplicate tool call") {
		t.Fatalf("last tool result = %v, want duplicate call error", lastResult)
	}
}

func TestPartialEventsForwarded(t *testing.T) {
	llm := &streamLLM{
		name:   "stream",
		chunks: []string{"Hel", "lo"},
		final: func(req *model.Request) *model.Response {
			return &model.Response{Message: model.Message{Role: model.RoleAssistant, Text: "Hello"}}
		},
	}
	ag, err := New(Config{Name: "test", MaxSteps: 2, StreamModel: true, EmitPartialEvents: true})
	if err != nil {
		t.Fatal(err)
	}
	events := runAll(t, ag, newInvocation(t, "hi", llm, nil))

	var partials []string
	var finalText string
	for _, ev := range events {
		if ev.Partial {
			partials = append(partials, ev.Message.Text)
			continue
		}
		finalText = ev.Message.Text
	}
	if strings.Join(partials, "") != "Hello" {
		t.Fatalf("partials = %v", partials)
	}
	if finalText != "Hello" {
		t.Fatalf("final = %q", finalText)
	}
}

func TestRetryDelayCaps(t *testing.T) {
	if d := retryDelayForAttempt(0); d != 250*time.Millisecond {
		t.Fatalf("delay(0) = %v", d)
	}
	if d := retryDelayForAttempt(10); d != modelRetryMaxDelay {
		t.Fatalf("delay(10) = %v, want cap %v", d, modelRetryMaxDelay)
	}
}
