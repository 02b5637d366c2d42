// Package tools implements the assistant's built-in tool set: weather
// lookup, user location, place discovery, marker placement, and route
// creation. Each tool converts domain failures into descriptive result
// text so the model can react instead of the turn aborting.
package tools

import (
	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/location"
	"github.com/astepien/roam/assistant/markers"
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/assistant/weather"
	"github.com/astepien/roam/kernel/tool"
)

// Deps are the services the built-in tools run against.
type Deps struct {
	Bus      *events.Bus
	Weather  weather.Service
	Location location.Service
	Catalog  *place.Catalog
	Markers  *markers.Store
}

// Weather returns the tool set for the weather assistant.
func Weather(d Deps) ([]tool.Tool, error) {
	w, err := NewWeatherTool(d.Bus, d.Weather)
	if err != nil {
		return nil, err
	}
	return []tool.Tool{w}, nil
}

// TripPlanner returns the local tool set for the trip-planning
// assistant. Remotely discovered tools are appended by the caller.
func TripPlanner(d Deps) ([]tool.Tool, error) {
	w, err := NewWeatherTool(d.Bus, d.Weather)
	if err != nil {
		return nil, err
	}
	loc, err := NewLocationTool(d.Location)
	if err != nil {
		return nil, err
	}
	find, err := NewFindPlacesTool(d.Bus, d.Catalog)
	if err != nil {
		return nil, err
	}
	add, err := NewAddMarkerTool(d.Bus, d.Markers)
	if err != nil {
		return nil, err
	}
	route, err := NewCreateRouteTool(d.Bus, d.Markers)
	if err != nil {
		return nil, err
	}
	return []tool.Tool{w, loc, find, add, route}, nil
}
