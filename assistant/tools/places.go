package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/geo"
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/kernel/tool"
)

type findPlacesArgs struct {
	Latitude  float64 `json:"latitude" desc:"Latitude of the center point to search from"`
	Longitude float64 `json:"longitude" desc:"Longitude of the center point to search from"`
	Radius    int     `json:"radius,omitempty" desc:"Search radius in meters (default 1000)"`
	Category  string  `json:"category,omitempty" desc:"Optional category filter: RESTAURANT, MUSEUM, PARK, LANDMARK, ENTERTAINMENT, OTHER"`
}

// NewFindPlacesTool returns the find_places tool. The catalog applies
// its own fixed search radius; the radius argument only exists so the
// model has somewhere to put one.
func NewFindPlacesTool(bus *events.Bus, catalog *place.Catalog) (tool.Tool, error) {
	return tool.NewFunction(
		"find_places",
		"Find interesting places near a location. Returns a list of places with their details.",
		func(ctx context.Context, args findPlacesArgs) (string, error) {
			found := catalog.FindNearby(geo.LatLng{Lat: args.Latitude, Lng: args.Longitude}, args.Category)

			if err := bus.Publish(ctx, events.PlacesFound{Places: found}); err != nil {
				return "", fmt.Errorf("tools: publish places: %w", err)
			}

			if len(found) == 0 {
				return "No places found matching your criteria.", nil
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Found %d places:\n", len(found))
			for _, p := range found {
				fmt.Fprintf(&b, "- %s (%s): %s\n", p.Name, p.Category, p.Description)
				fmt.Fprintf(&b, "  Location: %g, %g\n", p.Latitude, p.Longitude)
			}
			return b.String(), nil
		},
	)
}
