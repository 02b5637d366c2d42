// Package markers holds the shared map-marker state: the marker list
// both tools and the UI read and write, plus the single active route.
package markers

import (
	"sync"

	"github.com/astepien/roam/assistant/place"
)

// Saver persists the full marker list after each mutation. Errors are
// the saver's problem; the in-memory state is authoritative.
type Saver interface {
	SaveMarkers(markers []place.MapMarker)
}

// Store is the shared marker list. It tolerates concurrent readers and
// serializes writers; a snapshot taken after a completed write always
// includes that write.
type Store struct {
	mu      sync.RWMutex
	markers []place.MapMarker
	route   *place.TripRoute
	saver   Saver
}

// NewStore returns an empty store. saver may be nil.
func NewStore(saver Saver) *Store {
	return &Store{saver: saver}
}

// Add appends m unless a marker with the same id already exists, in
// which case the existing marker wins. It reports whether m was added.
func (s *Store) Add(m place.MapMarker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.markers {
		if existing.ID == m.ID {
			return false
		}
	}
	s.markers = append(s.markers, m)
	s.persistLocked()
	return true
}

// Remove deletes the marker with the given id, if present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.markers {
		if m.ID == id {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current marker list.
func (s *Store) Snapshot() []place.MapMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]place.MapMarker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Select marks the marker with the given id as selected and clears
// selection on all others.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.markers {
		s.markers[i].Selected = s.markers[i].ID == id
	}
}

// ClearSelection clears selection on every marker.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.markers {
		s.markers[i].Selected = false
	}
}

// SetRoute replaces the active route wholesale.
func (s *Store) SetRoute(r place.TripRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = &r
}

// Route returns the active route, or nil when none is set.
func (s *Store) Route() *place.TripRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.route == nil {
		return nil
	}
	r := *s.route
	return &r
}

// ClearRoute drops the active route.
func (s *Store) ClearRoute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = nil
}

// Clear drops all markers and the route.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
	s.route = nil
	s.persistLocked()
}

// Restore replaces the marker list, keeping only the first marker for
// each id. Used when loading persisted markers at startup; the saver is
// not invoked.
func (s *Store) Restore(markers []place.MapMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(markers))
	s.markers = s.markers[:0]
	for _, m := range markers {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		s.markers = append(s.markers, m)
	}
}

func (s *Store) persistLocked() {
	if s.saver == nil {
		return
	}
	out := make([]place.MapMarker, len(s.markers))
	copy(out, s.markers)
	s.saver.SaveMarkers(out)
}
