package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, geocodeBody, forecastBody string) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("geocode count = %q, want 1", got)
		}
		fmt.Fprint(w, geocodeBody)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("current"); got != "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m" {
			t.Errorf("forecast current = %q", got)
		}
		fmt.Fprint(w, forecastBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := NewClient(
		WithHTTPClient(srv.Client()),
		WithBaseURLs(srv.URL+"/geocode", srv.URL+"/forecast"),
	)
	return client, srv
}

func TestCurrentWarsaw(t *testing.T) {
	client, _ := newTestClient(t,
		`{"results":[{"name":"Warsaw","latitude":52.23,"longitude":21.01,"country":"Poland","admin1":"Masovian"}]}`,
		`{"current":{"temperature_2m":5.2,"relative_humidity_2m":80,"weather_code":3,"wind_speed_10m":12.4}}`,
	)

	forecast, err := client.Current(context.Background(), "Warsaw")
	if err != nil {
		t.Fatal(err)
	}
	if forecast.Location != "Warsaw, Masovian, Poland" {
		t.Fatalf("location = %q", forecast.Location)
	}
	if forecast.Temperature != 5.2 {
		t.Fatalf("temperature = %v", forecast.Temperature)
	}
	if forecast.Condition != "Partly cloudy" {
		t.Fatalf("condition = %q", forecast.Condition)
	}
	if forecast.Humidity != 80 {
		t.Fatalf("humidity = %d", forecast.Humidity)
	}
	if forecast.WindSpeed != 12.4 {
		t.Fatalf("wind = %v", forecast.WindSpeed)
	}
}

func TestCurrentLocationNotFound(t *testing.T) {
	client, _ := newTestClient(t, `{"results":[]}`, `{}`)
	_, err := client.Current(context.Background(), "Atlantis")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestCurrentDisplayNameSkipsEmptyParts(t *testing.T) {
	client, _ := newTestClient(t,
		`{"results":[{"name":"Singapore","latitude":1.35,"longitude":103.82,"country":"Singapore"}]}`,
		`{"current":{"temperature_2m":30,"relative_humidity_2m":70,"weather_code":0,"wind_speed_10m":5}}`,
	)
	forecast, err := client.Current(context.Background(), "Singapore")
	if err != nil {
		t.Fatal(err)
	}
	if forecast.Location != "Singapore, Singapore" {
		t.Fatalf("location = %q", forecast.Location)
	}
}

func TestCurrentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(WithHTTPClient(srv.Client()), WithBaseURLs(srv.URL, srv.URL))
	if _, err := client.Current(context.Background(), "Warsaw"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestConditionForCode(t *testing.T) {
	cases := map[int]string{
		0:   "Clear sky",
		2:   "Partly cloudy",
		48:  "Foggy",
		55:  "Drizzle",
		57:  "Freezing drizzle",
		63:  "Rain",
		66:  "Freezing rain",
		75:  "Snow",
		77:  "Snow grains",
		81:  "Rain showers",
		86:  "Snow showers",
		95:  "Thunderstorm",
		99:  "Thunderstorm with hail",
		42:  "Unknown",
		-1:  "Unknown",
		100: "Unknown",
	}
	for code, want := range cases {
		if got := ConditionForCode(code); got != want {
			t.Errorf("ConditionForCode(%d) = %q, want %q", code, got, want)
		}
	}
}
