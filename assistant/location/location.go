// Package location abstracts "where is the user" behind a small
// service interface so the location tool stays testable.
package location

import "context"

// Status classifies the outcome of a location request.
type Status int

const (
	StatusOK Status = iota
	StatusUnsupported
	StatusNotFound
	StatusPermissionDenied
	StatusFailed
)

// Result is a resolved position or the reason one is unavailable.
// Accuracy is in meters; a negative value means unknown.
type Result struct {
	Status    Status
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Message   string
}

// Service produces the user's current position.
type Service interface {
	CurrentLocation(ctx context.Context) (Result, error)
}

// Static always reports the same fixed position. It stands in for a
// real positioning backend in console builds and tests.
type Static struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// CurrentLocation returns the configured position.
func (s Static) CurrentLocation(_ context.Context) (Result, error) {
	return Result{
		Status:    StatusOK,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Accuracy:  s.Accuracy,
	}, nil
}

// Unavailable is a Service that always fails with the given status and
// message.
type Unavailable struct {
	FailStatus Status
	Message    string
}

// CurrentLocation reports the configured failure.
func (u Unavailable) CurrentLocation(_ context.Context) (Result, error) {
	return Result{Status: u.FailStatus, Message: u.Message, Accuracy: -1}, nil
}
