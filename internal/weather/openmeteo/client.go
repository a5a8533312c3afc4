// Package openmeteo is the resilient client for the Open-Meteo
// geocoding and forecast APIs. It collapses transport failures into
// semantic outcomes; callers never see raw network errors.
package openmeteo

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yava-code/weatherAI/internal/weather"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m"
	hourlyFields  = "temperature_2m,relative_humidity_2m,wind_speed_10m"
)

// Client implements weather.Gateway against Open-Meteo. Outbound calls
// share one rate limiter, one circuit breaker, and one retry policy.
type Client struct {
	// GeocodingURL and ForecastURL default to the public API and are
	// overridable for tests.
	GeocodingURL string
	ForecastURL  string

	httpClient *http.Client
	limiter    *rate.Limiter
	circuit    *gobreaker.CircuitBreaker
	backoff    backoffConfig
}

// NewClient builds a gateway client around the given HTTP client, whose
// Timeout bounds each individual attempt.
func NewClient(httpClient *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		GeocodingURL: defaultGeocodingURL,
		ForecastURL:  defaultForecastURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(5), 10),
		circuit:      cb,
		backoff: backoffConfig{
			MaxAttempts: 3,
			Interval:    500 * time.Millisecond,
		},
	}
}

// ResolveCoordinates geocodes a city display name. Provider order is
// trusted: the first match wins, with no disambiguation.
func (c *Client) ResolveCoordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
		} `json:"results"`
	}

	if err := c.getJSON(ctx, c.GeocodingURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocode %q: %w", city, weather.ErrCityNotFound)
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	first := payload.Results[0]
	return weather.Coordinates{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Name:      first.Name,
	}, nil
}

// CurrentConditions fetches the live snapshot at a point.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (weather.Observation, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current", currentFields)

	var payload struct {
		Current struct {
			Time               string  `json:"time"`
			Temperature2m      float64 `json:"temperature_2m"`
			RelativeHumidity2m float64 `json:"relative_humidity_2m"`
			WindSpeed10m       float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := c.getJSON(ctx, c.ForecastURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: current conditions: %v", weather.ErrWeatherUnavailable, err)
	}

	ts, err := weather.ParseObservationTime(payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.Observation{
		Timestamp:   ts,
		HourOfDay:   weather.HourOf(ts),
		Humidity:    payload.Current.RelativeHumidity2m,
		WindSpeed:   payload.Current.WindSpeed10m,
		Temperature: payload.Current.Temperature2m,
	}, nil
}

// HistoricalSeries fetches an hourly training series for the past
// lookbackDays. On any failure it returns an empty table, never an
// error; the trainer's row-count check handles the rest.
func (c *Client) HistoricalSeries(ctx context.Context, lat, lon float64, lookbackDays int) weather.FeatureTable {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", hourlyFields)
	values.Set("past_days", fmt.Sprintf("%d", lookbackDays))
	values.Set("forecast_days", "0")
	// No timezone parameter: the provider then reports GMT, so the parsed
	// timestamps are true UTC instants and the hour column lines up with
	// the UTC hours used at prediction time.

	var payload struct {
		Hourly struct {
			Time               []string  `json:"time"`
			Temperature2m      []float64 `json:"temperature_2m"`
			RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
			WindSpeed10m       []float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
	}

	if err := c.getJSON(ctx, c.ForecastURL+"?"+values.Encode(), &payload); err != nil {
		log.Printf("openmeteo: historical fetch failed: %v", err)
		return weather.FeatureTable{}
	}

	return weather.ExtractFeatureTable(
		payload.Hourly.Time,
		payload.Hourly.Temperature2m,
		payload.Hourly.RelativeHumidity2m,
		payload.Hourly.WindSpeed10m,
	)
}
