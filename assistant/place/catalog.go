package place

import (
	"github.com/astepien/roam/assistant/geo"
	"github.com/google/uuid"
)

// Discovery never reaches past this regardless of the requested radius,
// and never returns more than maxResults places.
const (
	maxSearchRadiusMeters = 5000.0
	maxResults            = 5
)

// Catalog is a searchable place corpus.
type Catalog struct {
	places []Place
}

// NewCatalog builds a catalog over the given places.
func NewCatalog(places []Place) *Catalog {
	return &Catalog{places: places}
}

// WarsawCatalog returns the built-in corpus of central Warsaw sights.
// Each call mints fresh place ids.
func WarsawCatalog() *Catalog {
	mk := func(name, desc string, lat, lng float64, cat Category) Place {
		return Place{
			ID:          uuid.NewString(),
			Name:        name,
			Description: desc,
			Latitude:    lat,
			Longitude:   lng,
			Category:    cat,
		}
	}
	return NewCatalog([]Place{
		mk("Palace of Culture and Science", "Iconic Stalin-era skyscraper, the tallest building in Poland", 52.2319, 21.0067, Landmark),
		mk("Old Town Market Square", "Historic heart of Warsaw, UNESCO World Heritage Site", 52.2496, 21.0122, Landmark),
		mk("Łazienki Park", "Beautiful royal park with the Palace on the Isle", 52.2152, 21.0355, Park),
		mk("Warsaw Uprising Museum", "Museum dedicated to the Warsaw Uprising of 1944", 52.2324, 20.9810, Museum),
		mk("POLIN Museum", "Museum of the History of Polish Jews", 52.2496, 20.9932, Museum),
		mk("Copernicus Science Centre", "Interactive science museum with planetarium", 52.2418, 21.0285, Entertainment),
		mk("Złote Tarasy", "Modern shopping and entertainment complex", 52.2298, 21.0023, Entertainment),
		mk("Zapiecek", "Traditional Polish restaurant famous for pierogi", 52.2501, 21.0118, Restaurant),
		mk("U Fukiera", "Historic restaurant in Old Town, Polish cuisine", 52.2494, 21.0124, Restaurant),
		mk("Saxon Garden", "Beautiful baroque garden in central Warsaw", 52.2406, 21.0119, Park),
	})
}

// FindNearby returns up to maxResults places within the fixed search
// radius of center, optionally filtered by category. An empty or
// unrecognized categoryFilter leaves all categories in.
func (c *Catalog) FindNearby(center geo.LatLng, categoryFilter string) []Place {
	var filter Category
	filtered := false
	if categoryFilter != "" {
		if cat, ok := LookupCategory(categoryFilter); ok {
			filter, filtered = cat, true
		}
	}

	var out []Place
	for _, p := range c.places {
		if filtered && p.Category != filter {
			continue
		}
		if geo.Distance(center, p.Location()) > maxSearchRadiusMeters {
			continue
		}
		out = append(out, p)
		if len(out) == maxResults {
			break
		}
	}
	return out
}
