// Package events defines the agent event set and the broadcast bus that
// carries tool and session side effects to UI observers.
package events

import (
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/assistant/weather"
)

// AgentEvent is the closed set of side-effect notifications. Concrete
// variants implement the unexported marker method so the set cannot grow
// outside this package.
type AgentEvent interface {
	agentEvent()
}

// WeatherReceived reports a successful weather lookup.
type WeatherReceived struct {
	Forecast *weather.Forecast
}

// PlacesFound reports places discovered by the find_places tool.
type PlacesFound struct {
	Places []place.Place
}

// MarkerAdded reports a marker placed on the map.
type MarkerAdded struct {
	Marker place.MapMarker
}

// RouteCreated reports a newly computed trip route. Routes replace each
// other wholesale.
type RouteCreated struct {
	Route place.TripRoute
}

// Processing toggles the UI loading indicator around a chat turn.
type Processing struct {
	Active bool
}

// Error carries a human-readable session fault for banner display.
type Error struct {
	Message string
}

// StreamingChunk is one text fragment of a streamed assistant message.
type StreamingChunk struct {
	MessageID string
	Text      string
}

// StreamingComplete marks the end of streaming for a message.
type StreamingComplete struct {
	MessageID string
}

func (WeatherReceived) agentEvent()   {}
func (PlacesFound) agentEvent()       {}
func (MarkerAdded) agentEvent()       {}
func (RouteCreated) agentEvent()      {}
func (Processing) agentEvent()        {}
func (Error) agentEvent()             {}
func (StreamingChunk) agentEvent()    {}
func (StreamingComplete) agentEvent() {}
