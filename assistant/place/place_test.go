package place

import (
	"testing"

	"github.com/astepien/roam/assistant/geo"
)

var cityCenter = geo.LatLng{Lat: 52.2319, Lng: 21.0067}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"restaurant", Restaurant},
		{"RESTAURANT", Restaurant},
		{"  Museum ", Museum},
		{"park", Park},
		{"landmark", Landmark},
		{"entertainment", Entertainment},
		{"other", Other},
		{"nightclub", Other},
		{"", Other},
	}
	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	if cat, ok := LookupCategory("museum"); !ok || cat != Museum {
		t.Fatalf("LookupCategory(museum) = %v, %v", cat, ok)
	}
	if _, ok := LookupCategory("nightclub"); ok {
		t.Fatal("nightclub should not be a known category")
	}
}

func TestFindNearbyCapsResults(t *testing.T) {
	catalog := WarsawCatalog()
	found := catalog.FindNearby(cityCenter, "")
	if len(found) != 5 {
		t.Fatalf("result count = %d, want cap of 5", len(found))
	}
}

func TestFindNearbyCategoryFilter(t *testing.T) {
	catalog := WarsawCatalog()
	found := catalog.FindNearby(cityCenter, "museum")
	if len(found) == 0 {
		t.Fatal("expected museums near the city center")
	}
	for _, p := range found {
		if p.Category != Museum {
			t.Fatalf("category filter leaked %v (%s)", p.Category, p.Name)
		}
	}
}

func TestFindNearbyUnknownFilterKeepsAll(t *testing.T) {
	catalog := WarsawCatalog()
	unfiltered := catalog.FindNearby(cityCenter, "")
	unknown := catalog.FindNearby(cityCenter, "nightclub")
	if len(unknown) != len(unfiltered) {
		t.Fatalf("unknown filter returned %d, unfiltered %d", len(unknown), len(unfiltered))
	}
}

func TestFindNearbyFixedCutoff(t *testing.T) {
	catalog := WarsawCatalog()
	// Kraków is far outside the 5 km search radius around the corpus.
	krakow := geo.LatLng{Lat: 50.0647, Lng: 19.945}
	if found := catalog.FindNearby(krakow, ""); len(found) != 0 {
		t.Fatalf("found %d places 250 km away", len(found))
	}
}

func TestFindNearbyDistanceBound(t *testing.T) {
	catalog := WarsawCatalog()
	for _, p := range catalog.FindNearby(cityCenter, "") {
		if d := geo.Distance(cityCenter, p.Location()); d > 5000 {
			t.Fatalf("%s is %v m away, beyond the cutoff", p.Name, d)
		}
	}
}

func TestWarsawCatalogUniqueIDs(t *testing.T) {
	catalog := WarsawCatalog()
	seen := map[string]bool{}
	for _, p := range catalog.places {
		if p.ID == "" {
			t.Fatalf("place %s has empty id", p.Name)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate place id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if len(seen) != 10 {
		t.Fatalf("corpus size = %d, want 10", len(seen))
	}
}
