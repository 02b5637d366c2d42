package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/astepien/roam/assistant"
	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/markers"
	"github.com/astepien/roam/chat"
)

var consoleCommands = []string{"weather", "trip", "markers", "route", "history", "clear", "help", "quit"}

type consoleConfig struct {
	Assistant *assistant.Assistant
	Store     *chat.Store
	Markers   *markers.Store
	Bus       *events.Bus
	Screen    chat.Screen
	Kind      assistant.Kind
}

type console struct {
	asst    *assistant.Assistant
	store   *chat.Store
	markers *markers.Store
	bus     *events.Bus

	rl       *readline.Instance
	renderer *glamour.TermRenderer

	screen chat.Screen
	kind   assistant.Kind

	// Turn state shared with the event consumer goroutine. Turns are
	// single-flight, so one streaming message is live at a time.
	mu          sync.Mutex
	streamingID string
	turnDone    chan struct{}

	cancelSub func()
	subStop   chan struct{}
	subWG     sync.WaitGroup

	remoteWarned bool

	notify struct {
		info *color.Color
		ok   *color.Color
		warn *color.Color
		fail *color.Color
	}
}

func newConsole(cfg consoleConfig) (*console, error) {
	completerItems := make([]readline.PrefixCompleterInterface, 0, len(consoleCommands))
	for _, cmd := range consoleCommands {
		completerItems = append(completerItems, readline.PcItem("/"+cmd))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		AutoComplete:      readline.NewPrefixCompleter(completerItems...),
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("console: init readline: %w", err)
	}

	// Markdown rendering is best effort; plain text when unavailable.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		renderer = nil
	}

	c := &console{
		asst:     cfg.Assistant,
		store:    cfg.Store,
		markers:  cfg.Markers,
		bus:      cfg.Bus,
		rl:       rl,
		renderer: renderer,
		screen:   cfg.Screen,
		kind:     cfg.Kind,
	}
	c.notify.info = color.New(color.FgCyan)
	c.notify.ok = color.New(color.FgGreen)
	c.notify.warn = color.New(color.FgYellow)
	c.notify.fail = color.New(color.FgRed)

	ch, cancel := c.bus.Subscribe()
	c.cancelSub = cancel
	c.subStop = make(chan struct{})
	c.subWG.Add(1)
	go c.consumeEvents(ch)
	return c, nil
}

func (c *console) Close() {
	if c.cancelSub != nil {
		c.cancelSub()
	}
	close(c.subStop)
	c.subWG.Wait()
	_ = c.rl.Close()
}

// consumeEvents applies streaming chunks to the chat store and prints
// side-effect notifications. It exits when the subscription is
// canceled.
func (c *console) consumeEvents(ch <-chan events.AgentEvent) {
	defer c.subWG.Done()
	out := os.Stderr
	for {
		var ev events.AgentEvent
		select {
		case ev = <-ch:
		case <-c.subStop:
			return
		}
		switch e := ev.(type) {
		case events.StreamingChunk:
			c.applyChunk(e.MessageID, e.Text)
		case events.StreamingComplete:
			c.finishStreaming(e.MessageID)
		case events.Processing:
			if e.Active {
				c.notify.warn.Fprintln(out, "· working...")
			}
		case events.WeatherReceived:
			if e.Forecast != nil {
				c.notify.info.Fprintf(out, "· weather: %s, %g°C, %s\n", e.Forecast.Location, e.Forecast.Temperature, e.Forecast.Condition)
			}
		case events.PlacesFound:
			c.notify.info.Fprintf(out, "· found %d places\n", len(e.Places))
		case events.MarkerAdded:
			c.notify.ok.Fprintf(out, "· marker added: %s (%g, %g)\n", e.Marker.Place.Name, e.Marker.Place.Latitude, e.Marker.Place.Longitude)
		case events.RouteCreated:
			c.notify.ok.Fprintf(out, "· route created with %d stops\n", len(e.Route.Markers))
		case events.Error:
			c.notify.fail.Fprintf(out, "· error: %s\n", e.Message)
		}
	}
}

func (c *console) applyChunk(messageID, text string) {
	c.mu.Lock()
	live := c.streamingID == messageID
	c.mu.Unlock()
	if !live {
		return
	}
	if err := c.store.ApplyChunk(context.Background(), c.screen, messageID, text); err != nil {
		c.notify.warn.Fprintf(os.Stderr, "warn: persist chunk failed: %v\n", err)
	}
}

func (c *console) finishStreaming(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamingID == messageID && c.turnDone != nil {
		close(c.turnDone)
		c.turnDone = nil
	}
}

func (c *console) beginTurn(messageID string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streamingID = messageID
	c.turnDone = make(chan struct{})
	return c.turnDone
}

func (c *console) endTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streamingID = ""
	if c.turnDone != nil {
		close(c.turnDone)
		c.turnDone = nil
	}
}

// RunOnce executes a single chat turn and prints the final answer.
func (c *console) RunOnce(ctx context.Context, input string) error {
	answer, err := c.turn(ctx, input)
	if err != nil {
		return err
	}
	fmt.Println(c.renderMarkdown(answer))
	return nil
}

// RunLoop is the interactive REPL.
func (c *console) RunLoop(ctx context.Context) error {
	fmt.Printf("roam console. Assistant: %s. Type /help for commands.\n", c.screen)
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, cmdErr := c.handleCommand(ctx, line)
			if cmdErr != nil {
				c.notify.fail.Fprintf(os.Stderr, "error: %v\n", cmdErr)
			}
			if quit {
				return nil
			}
			continue
		}

		answer, err := c.turn(ctx, line)
		if err != nil {
			c.notify.fail.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(c.renderMarkdown(answer))
	}
}

func (c *console) handleCommand(ctx context.Context, line string) (quit bool, err error) {
	cmd := strings.TrimPrefix(strings.Fields(line)[0], "/")
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "weather":
		c.screen, c.kind = chat.ScreenWeather, assistant.Weather
		fmt.Println("switched to weather assistant")
	case "trip":
		c.screen, c.kind = chat.ScreenTripPlan, assistant.TripPlan
		fmt.Println("switched to trip planning assistant")
	case "markers":
		c.printMarkers()
	case "route":
		c.printRoute()
	case "history":
		return false, c.printHistory(ctx)
	case "clear":
		if err := c.store.Clear(ctx, c.screen); err != nil {
			return false, err
		}
		fmt.Println("chat history cleared")
	case "help":
		fmt.Println("commands: /weather /trip /markers /route /history /clear /quit")
	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
	return false, nil
}

func (c *console) turn(ctx context.Context, input string) (string, error) {
	history, err := c.store.Messages(ctx, c.screen)
	if err != nil {
		return "", fmt.Errorf("console: load history: %w", err)
	}
	if _, err := c.store.Add(ctx, c.screen, input, true); err != nil {
		return "", fmt.Errorf("console: persist user message: %w", err)
	}
	streaming, err := c.store.AddStreaming(ctx, c.screen)
	if err != nil {
		return "", fmt.Errorf("console: create streaming message: %w", err)
	}

	done := c.beginTurn(streaming.ID)
	answer := c.asst.Chat(ctx, input, c.kind, streaming.ID, toHistory(history))

	// Chunk persistence rides the event bus; wait for the completion
	// marker so the final write happens after the last chunk. Faulted
	// turns never send the marker, hence the timeout.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
	}
	c.endTurn()

	if err := c.store.Complete(ctx, c.screen, streaming.ID, answer); err != nil {
		c.notify.warn.Fprintf(os.Stderr, "warn: persist answer failed: %v\n", err)
	}

	if !c.remoteWarned && c.kind == assistant.TripPlan {
		if remoteErr := c.asst.RemoteErr(); remoteErr != nil {
			c.remoteWarned = true
			c.notify.warn.Fprintf(os.Stderr, "warn: remote map tools unavailable, using local tools: %v\n", remoteErr)
		}
	}
	return answer, nil
}

func (c *console) printMarkers() {
	snapshot := c.markers.Snapshot()
	if len(snapshot) == 0 {
		fmt.Println("no markers placed")
		return
	}
	for _, m := range snapshot {
		selected := ""
		if m.Selected {
			selected = " [selected]"
		}
		fmt.Printf("%s  %s (%s) at (%g, %g)%s\n", m.ID, m.Place.Name, m.Place.Category, m.Place.Latitude, m.Place.Longitude, selected)
	}
}

func (c *console) printRoute() {
	route := c.markers.Route()
	if route == nil {
		fmt.Println("no active route")
		return
	}
	for i, m := range route.Markers {
		fmt.Printf("%d. %s\n", i+1, m.Place.Name)
	}
}

func (c *console) printHistory(ctx context.Context) error {
	history, err := c.store.Messages(ctx, c.screen)
	if err != nil {
		return err
	}
	for _, msg := range history {
		role := "assistant"
		if msg.FromUser {
			role = "user"
		}
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04"), role, msg.Content)
	}
	return nil
}

func (c *console) renderMarkdown(content string) string {
	if c.renderer == nil {
		return content
	}
	rendered, err := c.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func toHistory(messages []chat.Message) []assistant.HistoryMessage {
	out := make([]assistant.HistoryMessage, 0, len(messages))
	for _, m := range messages {
		if m.Streaming {
			continue
		}
		out = append(out, assistant.HistoryMessage{Content: m.Content, FromUser: m.FromUser})
	}
	return out
}
