// Package chat persists chat transcripts and map markers in a local
// sqlite database, one history per screen.
package chat

import "time"

// Screen identifies which chat surface a message belongs to.
type Screen string

const (
	ScreenWeather  Screen = "weather"
	ScreenTripPlan Screen = "trip_plan"
)

// Message is one chat transcript entry. Streaming assistant messages
// start empty with Streaming set and fill in as chunks arrive.
type Message struct {
	ID        string
	Content   string
	FromUser  bool
	Timestamp time.Time
	Streaming bool
}
