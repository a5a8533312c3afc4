package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yava-code/weatherAI/internal/weather"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient(&http.Client{Timeout: time.Second})
	c.GeocodingURL = ts.URL + "/geocode"
	c.ForecastURL = ts.URL + "/forecast"
	return c
}

func TestResolveCoordinatesFirstMatchWins(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Warsaw" {
			t.Errorf("expected name=Warsaw, got %q", got)
		}
		w.Write([]byte(`{"results": [
			{"latitude": 52.23, "longitude": 21.01, "name": "Warsaw"},
			{"latitude": 41.23, "longitude": -85.85, "name": "Warsaw, Indiana"}
		]}`))
	}))
	defer ts.Close()

	coords, err := newTestClient(ts).ResolveCoordinates(context.Background(), "Warsaw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 52.23 || coords.Name != "Warsaw" {
		t.Errorf("expected first match, got %+v", coords)
	}
}

func TestResolveCoordinatesNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).ResolveCoordinates(context.Background(), "Nowhereville")
	if !errors.Is(err, weather.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
}

func TestCurrentConditions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {
			"time": "2025-06-01T14:00",
			"temperature_2m": 21.5,
			"relative_humidity_2m": 48,
			"wind_speed_10m": 3.2
		}}`))
	}))
	defer ts.Close()

	obs, err := newTestClient(ts).CurrentConditions(context.Background(), 52.23, 21.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Temperature != 21.5 || obs.Humidity != 48 {
		t.Errorf("snapshot not normalized: %+v", obs)
	}
	if obs.HourOfDay != 14 {
		t.Errorf("expected hour 14, got %d", obs.HourOfDay)
	}
}

func TestServerErrorFailsFastWithoutRetry(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).CurrentConditions(context.Background(), 0, 0)
	if !errors.Is(err, weather.ErrWeatherUnavailable) {
		t.Fatalf("expected ErrWeatherUnavailable, got %v", err)
	}
	// Only timeout-class failures are retried.
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Fatalf("expected exactly 1 attempt for a 5xx, got %d", n)
	}
}

func TestHistoricalSeries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("past_days"); got != "7" {
			t.Errorf("expected past_days=7, got %q", got)
		}
		// Omitting the timezone parameter keeps the series in GMT, which
		// the extractor relies on.
		if got := r.URL.Query().Get("timezone"); got != "" {
			t.Errorf("expected no timezone parameter, got %q", got)
		}
		w.Write([]byte(`{"hourly": {
			"time": ["2025-06-01T00:00", "2025-06-01T01:00", "2025-06-01T02:00"],
			"temperature_2m": [5.1, 4.8, 4.5],
			"relative_humidity_2m": [60, 62, 63],
			"wind_speed_10m": [3, 2.5, 2]
		}}`))
	}))
	defer ts.Close()

	table := newTestClient(ts).HistoricalSeries(context.Background(), 52.23, 21.01, 7)
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	if table[1].HourOfDay != 1 || table[1].Temperature != 4.8 {
		t.Errorf("row 1 not extracted correctly: %+v", table[1])
	}
}

func TestHistoricalSeriesFailureYieldsEmptyTable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	table := newTestClient(ts).HistoricalSeries(context.Background(), 0, 0, 7)
	if len(table) != 0 {
		t.Fatalf("expected empty table on provider failure, got %d rows", len(table))
	}
}

func TestTimeoutIsRetried(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 2 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Write([]byte(`{"current": {"time": "2025-06-01T10:00", "temperature_2m": 12}}`))
	}))
	defer ts.Close()

	c := NewClient(&http.Client{Timeout: 100 * time.Millisecond})
	c.ForecastURL = ts.URL + "/forecast"

	obs, err := c.CurrentConditions(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if obs.Temperature != 12 {
		t.Errorf("expected temperature 12, got %v", obs.Temperature)
	}
	if n := atomic.LoadInt32(&requests); n < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", n)
	}
}
