// Package place defines points of interest, map markers, and trip
// routes, plus the in-memory place corpus the discovery tool searches.
package place

import (
	"strings"

	"github.com/astepien/roam/assistant/geo"
)

// Category classifies a place.
type Category string

const (
	Restaurant    Category = "RESTAURANT"
	Museum        Category = "MUSEUM"
	Park          Category = "PARK"
	Landmark      Category = "LANDMARK"
	Entertainment Category = "ENTERTAINMENT"
	Other         Category = "OTHER"
)

// ParseCategory matches s case-insensitively against the known
// categories. Unrecognized values map to Other rather than erroring, so
// free-text model output never fails marker placement.
func ParseCategory(s string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case Restaurant:
		return Restaurant
	case Museum:
		return Museum
	case Park:
		return Park
	case Landmark:
		return Landmark
	case Entertainment:
		return Entertainment
	default:
		return Other
	}
}

// LookupCategory is like ParseCategory but reports whether s named a
// known category. The discovery tool uses it to skip filtering on
// unrecognized input instead of collapsing everything to Other.
func LookupCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case Restaurant, Museum, Park, Landmark, Entertainment, Other:
		return c, true
	}
	return Other, false
}

// Place is a point of interest. Immutable after creation.
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    Category `json:"category"`
}

// Location returns the place's coordinates.
func (p Place) Location() geo.LatLng {
	return geo.LatLng{Lat: p.Latitude, Lng: p.Longitude}
}

// MapMarker is a place pinned to the map. The marker id equals the
// place id. Selection is a transient UI mutation.
type MapMarker struct {
	ID       string `json:"id"`
	Place    Place  `json:"place"`
	Selected bool   `json:"isSelected"`
}

// TripRoute is an ordered walk through a set of markers. One route is
// active at a time; a new route replaces the old one wholesale.
type TripRoute struct {
	Markers  []MapMarker  `json:"markers"`
	Polyline []geo.LatLng `json:"polyline"`
}
