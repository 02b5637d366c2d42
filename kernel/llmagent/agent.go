// Package llmagent implements a minimal model-tool loop agent. One run
// sends the invocation input to the model and keeps dispatching requested
// tool calls, feeding results back, until the model produces a plain
// answer or the step bound is reached.
package llmagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/astepien/roam/kernel/agent"
	"github.com/astepien/roam/kernel/model"
	"github.com/astepien/roam/kernel/tool"
)

// Config controls behavior of Agent.
type Config struct {
	Name         string
	SystemPrompt string
	// MaxSteps bounds model round trips in one run. Reaching the bound is
	// a normal completion carrying whatever answer the model last
	// produced, not an error. <=0 means no bound.
	MaxSteps int
	// StreamModel asks providers for streamed responses.
	StreamModel bool
	// EmitPartialEvents forwards streamed text fragments as Partial events.
	EmitPartialEvents bool
}

// Agent is a minimal model-tool loop agent.
type Agent struct {
	cfg Config
}

func New(cfg Config) (*Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("llmagent: name is required")
	}
	return &Agent{cfg: cfg}, nil
}

func (a *Agent) Name() string {
	return a.cfg.Name
}

func (a *Agent) Run(ctx agent.InvocationContext) iter.Seq2[*agent.Event, error] {
	return func(yield func(*agent.Event, error) bool) {
		if ctx == nil {
			yield(nil, fmt.Errorf("llmagent: invocation context is nil"))
			return
		}
		if ctx.Model() == nil {
			yield(nil, fmt.Errorf("llmagent: model is nil"))
			return
		}

		messages := make([]model.Message, 0, 2)
		if a.cfg.SystemPrompt != "" {
			messages = append(messages, model.Message{Role: model.RoleSystem, Text: a.cfg.SystemPrompt})
		}
		messages = append(messages, model.Message{Role: model.RoleUser, Text: ctx.Input()})

		dupCount := map[string]int{}
		toolDecls := tool.Declarations(ctx.Tools())

		for step := 0; ; step++ {
			if a.cfg.MaxSteps > 0 && step >= a.cfg.MaxSteps {
				// Bound reached: end the run with the answer accumulated so
				// far. Callers treat this as a normal completion.
				return
			}

			req := &model.Request{
				Messages: messages,
				Tools:    toolDecls,
				Stream:   a.cfg.StreamModel,
			}
			resp, err := a.generateWithRetry(ctx, req, func(partial *model.Response) error {
				if partial == nil || !a.cfg.EmitPartialEvents || !partial.Partial {
					return nil
				}
				if partial.Message.Text == "" {
					return nil
				}
				ev := &agent.Event{
					ID:      newEventID(),
					Time:    time.Now(),
					Message: model.Message{Role: model.RoleAssistant, Text: partial.Message.Text},
					Partial: true,
				}
				if !yield(ev, nil) {
					return errYieldStopped
				}
				return nil
			})
			if errors.Is(err, errYieldStopped) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if resp == nil {
				yield(nil, fmt.Errorf("llmagent: empty model response"))
				return
			}

			assistantMsg := resp.Message
			if assistantMsg.Role == "" {
				assistantMsg.Role = model.RoleAssistant
			}
			if !yield(&agent.Event{ID: newEventID(), Time: time.Now(), Message: assistantMsg}, nil) {
				return
			}

			messages = append(messages, assistantMsg)
			if len(assistantMsg.ToolCalls) == 0 {
				return
			}

			for _, call := range assistantMsg.ToolCalls {
				result := a.dispatch(ctx, call, dupCount)
				toolMsg := model.Message{
					Role: model.RoleTool,
					ToolResponse: &model.ToolResponse{
						ID:     call.ID,
						Name:   call.Name,
						Result: result,
					},
				}
				if !yield(&agent.Event{ID: newEventID(), Time: time.Now(), Message: toolMsg}, nil) {
					return
				}
				messages = append(messages, toolMsg)
			}
		}
	}
}

// dispatch resolves and executes one tool call. Unresolvable names and
// execution failures become error results fed back to the model so the
// run itself never fails on a tool.
func (a *Agent) dispatch(ctx agent.InvocationContext, call model.ToolCall, dupCount map[string]int) map[string]any {
	sig, err := toolCallSignature(call)
	if err == nil {
		dupCount[sig]++
		if dupCount[sig] > 2 {
			return map[string]any{"error": "duplicate tool call detected"}
		}
	}

	t, ok := ctx.Tool(call.Name)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("tool %q is not available", call.Name)}
	}
	result, runErr := t.Run(ctx, call.Args)
	if runErr != nil {
		return map[string]any{"error": runErr.Error()}
	}
	if result == nil {
		result = map[string]any{"ok": true}
	}
	return result
}

var errYieldStopped = errors.New("llmagent: downstream yield stopped")

var (
	modelRequestMaxRetries = 3
	modelRetryBaseDelay    = 250 * time.Millisecond
	modelRetryMaxDelay     = 4 * time.Second
)

func collectLast(ctx context.Context, seq iter.Seq2[*model.Response, error], onPartial func(*model.Response) error) (*model.Response, error) {
	var last *model.Response
	for res, err := range seq {
		if err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if res != nil {
			if res.Partial && onPartial != nil {
				if err := onPartial(res); err != nil {
					return nil, err
				}
			}
			last = res
		}
	}
	return last, nil
}

func (a *Agent) generateWithRetry(
	ctx agent.InvocationContext,
	req *model.Request,
	onPartial func(*model.Response) error,
) (*model.Response, error) {
	retries := 0
	for {
		emittedPartial := false
		resp, err := collectLast(ctx, ctx.Model().Generate(ctx, req), func(partial *model.Response) error {
			if partial != nil && partial.Partial {
				emittedPartial = true
			}
			if onPartial == nil {
				return nil
			}
			return onPartial(partial)
		})
		if err == nil {
			return resp, nil
		}
		// Once fragments reached the caller a retry would replay text.
		if emittedPartial {
			return nil, err
		}
		if errors.Is(err, errYieldStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if retries >= modelRequestMaxRetries {
			return nil, fmt.Errorf("llmagent: model request failed after %d retries: %w", modelRequestMaxRetries, err)
		}
		delay := retryDelayForAttempt(retries)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		retries++
	}
}

func retryDelayForAttempt(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	delay := modelRetryBaseDelay
	for i := 0; i < retry; i++ {
		delay *= 2
		if delay >= modelRetryMaxDelay {
			return modelRetryMaxDelay
		}
	}
	if delay > modelRetryMaxDelay {
		return modelRetryMaxDelay
	}
	return delay
}

func toolCallSignature(call model.ToolCall) (string, error) {
	norm := normalize(call.Args)
	raw, err := json.Marshal(norm)
	if err != nil {
		return "", err
	}
	return call.Name + ":" + string(raw), nil
}

func normalize(input map[string]any) any {
	if input == nil {
		return nil
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, input[k])
	}
	return out
}

func newEventID() string {
	return "ev_" + uuid.NewString()
}
