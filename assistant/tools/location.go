package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/astepien/roam/assistant/location"
	"github.com/astepien/roam/kernel/tool"
)

type locationArgs struct{}

// NewLocationTool returns the get_user_location tool.
func NewLocationTool(svc location.Service) (tool.Tool, error) {
	return tool.NewFunction(
		"get_user_location",
		"Get the user's current GPS location. Returns latitude, longitude, and accuracy in meters. Use this to find places near the user.",
		func(ctx context.Context, _ locationArgs) (string, error) {
			res, err := svc.CurrentLocation(ctx)
			if err != nil {
				return fmt.Sprintf("Unable to get user location: %s", err), nil
			}
			if res.Status != location.StatusOK {
				return fmt.Sprintf("Unable to get user location: %s", failureMessage(res)), nil
			}

			var b strings.Builder
			b.WriteString("User's current location:\n")
			fmt.Fprintf(&b, "- Latitude: %g\n", res.Latitude)
			fmt.Fprintf(&b, "- Longitude: %g\n", res.Longitude)
			if res.Accuracy >= 0 {
				fmt.Fprintf(&b, "- Accuracy: %d meters\n", int(res.Accuracy))
			}
			return b.String(), nil
		},
	)
}

func failureMessage(res location.Result) string {
	if res.Message != "" {
		return res.Message
	}
	switch res.Status {
	case location.StatusUnsupported:
		return "Location services not supported on this device"
	case location.StatusNotFound:
		return "Could not determine location"
	case location.StatusPermissionDenied:
		return "Location permission denied. Please grant location permission in Settings."
	default:
		return "Failed to get location"
	}
}
