package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/weather"
	"github.com/astepien/roam/kernel/tool"
)

type weatherArgs struct {
	Location string `json:"location" desc:"The city name or location to get weather for (e.g., 'Warsaw', 'New York', 'London')"`
}

// NewWeatherTool returns the get_weather tool. Lookup failures come
// back as result text, never as an execution error.
func NewWeatherTool(bus *events.Bus, svc weather.Service) (tool.Tool, error) {
	return tool.NewFunction(
		"get_weather",
		"Get the current weather for a location. Returns temperature, conditions, humidity, and wind speed.",
		func(ctx context.Context, args weatherArgs) (string, error) {
			forecast, err := svc.Current(ctx, args.Location)
			if err != nil {
				return fmt.Sprintf("Unable to get weather for '%s': %s", args.Location, err), nil
			}
			bus.TryPublish(events.WeatherReceived{Forecast: forecast})
			return formatForecast(forecast), nil
		},
	)
}

func formatForecast(f *weather.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather in %s:\n", f.Location)
	fmt.Fprintf(&b, "- Temperature: %g°C\n", f.Temperature)
	fmt.Fprintf(&b, "- Conditions: %s\n", f.Condition)
	fmt.Fprintf(&b, "- Humidity: %d%%\n", f.Humidity)
	fmt.Fprintf(&b, "- Wind Speed: %g km/h\n", f.WindSpeed)
	return b.String()
}
