package tools

import (
	"context"
	"fmt"

	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/markers"
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/kernel/tool"
	"github.com/google/uuid"
)

type addMarkerArgs struct {
	Name        string  `json:"name" desc:"Name of the place"`
	Description string  `json:"description" desc:"Description of the place"`
	Latitude    float64 `json:"latitude" desc:"Latitude coordinate"`
	Longitude   float64 `json:"longitude" desc:"Longitude coordinate"`
	Category    string  `json:"category,omitempty" desc:"Category: RESTAURANT, MUSEUM, PARK, LANDMARK, ENTERTAINMENT, OTHER"`
}

// NewAddMarkerTool returns the add_marker tool. The marker is written
// to the shared store before MarkerAdded goes out, so a route creation
// ordered after this call always sees it.
func NewAddMarkerTool(bus *events.Bus, store *markers.Store) (tool.Tool, error) {
	return tool.NewFunction(
		"add_marker",
		"Add a marker to the map for a place. Use this after finding places to show them on the map.",
		func(ctx context.Context, args addMarkerArgs) (string, error) {
			p := place.Place{
				ID:          uuid.NewString(),
				Name:        args.Name,
				Description: args.Description,
				Latitude:    args.Latitude,
				Longitude:   args.Longitude,
				Category:    place.ParseCategory(args.Category),
			}
			marker := place.MapMarker{ID: p.ID, Place: p}
			store.Add(marker)

			if err := bus.Publish(ctx, events.MarkerAdded{Marker: marker}); err != nil {
				return "", fmt.Errorf("tools: publish marker: %w", err)
			}
			return fmt.Sprintf("Added marker for '%s' at coordinates (%g, %g)", args.Name, args.Latitude, args.Longitude), nil
		},
	)
}
