// Package weather fetches current conditions from the Open-Meteo API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLocationNotFound reports that geocoding produced no match.
var ErrLocationNotFound = errors.New("weather: location not found")

// Forecast is the current weather at a resolved location.
type Forecast struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// Service resolves a free-text location to its current weather.
type Service interface {
	Current(ctx context.Context, location string) (*Forecast, error)
}

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Client talks to the Open-Meteo geocoding and forecast endpoints.
// The zero value is not usable; call NewClient.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURLs overrides the geocoding and forecast endpoints.
func WithBaseURLs(geocoding, forecast string) Option {
	return func(cl *Client) {
		cl.geocodingURL = geocoding
		cl.forecastURL = forecast
	}
}

// NewClient returns a Client with a 30 second request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
}

type forecastResponse struct {
	Current currentWeather `json:"current"`
}

type currentWeather struct {
	Temperature float64 `json:"temperature_2m"`
	Humidity    int     `json:"relative_humidity_2m"`
	WeatherCode int     `json:"weather_code"`
	WindSpeed   float64 `json:"wind_speed_10m"`
}

// Current geocodes location and fetches the current conditions there.
func (c *Client) Current(ctx context.Context, location string) (*Forecast, error) {
	loc, err := c.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", loc.Latitude))
	q.Set("longitude", fmt.Sprintf("%g", loc.Longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.forecastURL, q, &resp); err != nil {
		return nil, fmt.Errorf("weather: fetch forecast: %w", err)
	}

	return &Forecast{
		Location:    displayName(loc),
		Temperature: resp.Current.Temperature,
		Condition:   ConditionForCode(resp.Current.WeatherCode),
		Humidity:    resp.Current.Humidity,
		WindSpeed:   resp.Current.WindSpeed,
	}, nil
}

func (c *Client) geocode(ctx context.Context, location string) (*geocodingResult, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL, q, &resp); err != nil {
		return nil, fmt.Errorf("weather: geocode %q: %w", location, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}
	return &resp.Results[0], nil
}

func (c *Client) getJSON(ctx context.Context, base string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func displayName(loc *geocodingResult) string {
	parts := []string{loc.Name}
	if loc.Admin1 != "" {
		parts = append(parts, loc.Admin1)
	}
	if loc.Country != "" {
		parts = append(parts, loc.Country)
	}
	return strings.Join(parts, ", ")
}

// ConditionForCode maps a WMO weather code to a short description.
func ConditionForCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1, 2, 3:
		return "Partly cloudy"
	case 45, 48:
		return "Foggy"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73, 75:
		return "Snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}
