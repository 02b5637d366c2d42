package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/geo"
	"github.com/astepien/roam/assistant/markers"
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/kernel/tool"
)

type createRouteArgs struct {
	MarkerIDs []string `json:"markerIds" desc:"List of marker IDs to include in the route, in visiting order"`
}

// NewCreateRouteTool returns the create_route tool. Marker ids resolve
// against a live store snapshot; unresolvable ids are dropped and
// reported, and the route proceeds with whatever resolved.
func NewCreateRouteTool(bus *events.Bus, store *markers.Store) (tool.Tool, error) {
	return tool.NewFunction(
		"create_route",
		"Create a route between markers on the map. Provide marker IDs in the order you want to visit them.",
		func(ctx context.Context, args createRouteArgs) (string, error) {
			if len(args.MarkerIDs) == 0 {
				return "Please provide at least one marker ID to create a route.", nil
			}

			all := store.Snapshot()
			byID := make(map[string]place.MapMarker, len(all))
			for _, m := range all {
				byID[m.ID] = m
			}

			var resolved []place.MapMarker
			var missing []string
			for _, id := range args.MarkerIDs {
				if m, ok := byID[id]; ok {
					resolved = append(resolved, m)
				} else {
					missing = append(missing, id)
				}
			}

			if len(resolved) == 0 {
				ids := make([]string, len(all))
				for i, m := range all {
					ids[i] = m.ID
				}
				return "No valid markers found. Available marker IDs: " + strings.Join(ids, ", "), nil
			}

			polyline := make([]geo.LatLng, len(resolved))
			for i, m := range resolved {
				polyline[i] = m.Place.Location()
			}
			route := place.TripRoute{Markers: resolved, Polyline: polyline}
			store.SetRoute(route)

			if err := bus.Publish(ctx, events.RouteCreated{Route: route}); err != nil {
				return "", fmt.Errorf("tools: publish route: %w", err)
			}

			var total float64
			for i := 0; i+1 < len(polyline); i++ {
				total += geo.Distance(polyline[i], polyline[i+1])
			}
			minutes := geo.WalkingTime(total)

			var b strings.Builder
			if len(missing) > 0 {
				fmt.Fprintf(&b, "Some markers not found: [%s]. Creating route with available markers.\n", strings.Join(missing, ", "))
			}
			fmt.Fprintf(&b, "Route created with %d stops:\n", len(resolved))
			for i, m := range resolved {
				fmt.Fprintf(&b, "%d. %s\n", i+1, m.Place.Name)
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "Estimated walking distance: %s\n", geo.FormatDistance(total))
			fmt.Fprintf(&b, "Estimated walking time: %s\n", geo.FormatWalkingTime(minutes))
			return b.String(), nil
		},
	)
}
