// Package assistant wires the chat assistants together: it composes
// tool registries, builds system prompts, runs the agent loop, and
// translates agent output into bus events.
package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/tools"
	"github.com/astepien/roam/kernel/agent"
	"github.com/astepien/roam/kernel/llmagent"
	"github.com/astepien/roam/kernel/model"
	"github.com/astepien/roam/kernel/tool"
	"github.com/astepien/roam/kernel/tool/mcptoolset"
)

// Kind selects which assistant handles a chat turn.
type Kind int

const (
	Weather Kind = iota
	TripPlan
)

// HistoryMessage is a prior chat message fed back as context.
type HistoryMessage struct {
	Content  string
	FromUser bool
}

const (
	historyWindow     = 10
	weatherMaxSteps   = 10
	tripPlanMaxSteps  = 50
	fallbackErrorText = "Failed to get response from agent"
)

type remoteState int

const (
	remoteUnconnected remoteState = iota
	remoteConnected
	remoteFailed
)

// Assistant runs chat turns for both assistants over a shared event
// bus, marker state, and an optional remote tool provider.
type Assistant struct {
	bus  *events.Bus
	llm  model.LLM
	deps tools.Deps

	weatherTools []tool.Tool
	tripTools    []tool.Tool

	// Remote discovery is attempted once per Assistant. A failed
	// attempt degrades to local tools for the lifetime of the instance;
	// reconnect means constructing a new Assistant.
	mcp         *mcptoolset.Manager
	remoteMu    sync.Mutex
	remote      remoteState
	remoteTools []tool.Tool
	remoteErr   error
}

// RemoteErr reports the discovery error after a failed remote
// connection attempt, or nil when unattempted or connected.
func (a *Assistant) RemoteErr() error {
	a.remoteMu.Lock()
	defer a.remoteMu.Unlock()
	return a.remoteErr
}

// New builds an Assistant. mcp may be nil, in which case the trip
// planner runs on local tools only.
func New(llm model.LLM, deps tools.Deps, mcp *mcptoolset.Manager) (*Assistant, error) {
	if llm == nil {
		return nil, fmt.Errorf("assistant: model is nil")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("assistant: event bus is nil")
	}
	weatherTools, err := tools.Weather(deps)
	if err != nil {
		return nil, fmt.Errorf("assistant: build weather tools: %w", err)
	}
	tripTools, err := tools.TripPlanner(deps)
	if err != nil {
		return nil, fmt.Errorf("assistant: build trip tools: %w", err)
	}
	return &Assistant{
		bus:          deps.Bus,
		llm:          llm,
		deps:         deps,
		weatherTools: weatherTools,
		tripTools:    tripTools,
		mcp:          mcp,
	}, nil
}

// remoteToolset attempts remote tool discovery on first use. Both
// outcomes are sticky: once connected the cached tools are reused, and
// once failed no reconnect is attempted.
func (a *Assistant) remoteToolset(ctx context.Context) []tool.Tool {
	if a.mcp == nil {
		return nil
	}
	a.remoteMu.Lock()
	defer a.remoteMu.Unlock()
	switch a.remote {
	case remoteConnected:
		return a.remoteTools
	case remoteFailed:
		return nil
	}
	discovered, err := a.mcp.Tools(ctx)
	if err != nil {
		a.remote = remoteFailed
		a.remoteErr = err
		return nil
	}
	a.remote = remoteConnected
	a.remoteTools = discovered
	return discovered
}

// Chat runs one turn against the selected assistant. Streaming chunks
// and side effects go out on the event bus keyed by messageID; the
// returned string is the final complete response. Session faults are
// converted into an apology string plus an Error event, never a
// propagated error, so the chat surface always has something to show.
func (a *Assistant) Chat(ctx context.Context, message string, kind Kind, messageID string, history []HistoryMessage) string {
	a.bus.TryPublish(events.Processing{Active: true})
	defer a.bus.TryPublish(events.Processing{Active: false})

	answer, err := a.run(ctx, message, kind, messageID, history)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackErrorText
		}
		a.bus.TryPublish(events.Error{Message: msg})
		return fmt.Sprintf("Sorry, I encountered an error: %s", msg)
	}
	return answer
}

func (a *Assistant) run(ctx context.Context, message string, kind Kind, messageID string, history []HistoryMessage) (string, error) {
	var (
		registry []tool.Tool
		prompt   string
		maxSteps int
	)
	switch kind {
	case Weather:
		registry = a.weatherTools
		prompt = weatherSystemPrompt
		maxSteps = weatherMaxSteps
	case TripPlan:
		registry = append(registry, a.tripTools...)
		remote := a.remoteToolset(ctx)
		registry = append(registry, remote...)
		toolDocs := formatToolsForPrompt(registry)
		if len(remote) > 0 {
			prompt = fmt.Sprintf(tripPlanPromptWithMaps, toolDocs)
		} else {
			prompt = fmt.Sprintf(tripPlanPromptLocal, toolDocs)
		}
		maxSteps = tripPlanMaxSteps
	default:
		return "", fmt.Errorf("assistant: unknown assistant kind %d", kind)
	}

	ag, err := llmagent.New(llmagent.Config{
		Name:              "roam",
		SystemPrompt:      prompt,
		MaxSteps:          maxSteps,
		StreamModel:       true,
		EmitPartialEvents: true,
	})
	if err != nil {
		return "", err
	}

	input := message
	if len(history) > 0 {
		input = formatHistory(history) + "User: " + message
	}

	inv, err := agent.NewInvocation(ctx, input, a.llm, registry)
	if err != nil {
		return "", err
	}

	var answer string
	for ev, err := range ag.Run(inv) {
		if err != nil {
			return "", err
		}
		if ev == nil {
			continue
		}
		if ev.Partial {
			a.bus.TryPublish(events.StreamingChunk{MessageID: messageID, Text: ev.Message.Text})
			continue
		}
		// Tool responses also arrive as non-partial events; only
		// assistant text survives as the answer, so an exhausted step
		// bound still resolves with the last thing the model said.
		if ev.Message.Role == model.RoleAssistant && ev.Message.Text != "" {
			answer = ev.Message.Text
		}
	}
	// Completion is part of the guaranteed delivery sequence; unlike
	// chunks it is awaited, not dropped under backpressure. A canceled
	// context still resolves the turn with the aggregated answer.
	_ = a.bus.Publish(ctx, events.StreamingComplete{MessageID: messageID})
	return answer, nil
}
