package weather

import (
	"time"
)

// Coordinates is a geocoding result. It is consumed transiently by the
// analysis pipeline and never persisted on its own.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// Observation is one row of weather data: either the current-conditions
// snapshot or a single historical hour used for training.
// HourOfDay is derived, never independent: it must equal Timestamp's hour.
type Observation struct {
	Timestamp   time.Time `json:"timestamp"`
	HourOfDay   int       `json:"hour"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Temperature float64   `json:"temperature"`
}

// FeatureTable is an ordered collection of observations for one city,
// used as regression training input.
type FeatureTable []Observation

// MinTrainingRows is the smallest feature table a model can be fit on.
// Below this threshold training signals ErrInsufficientData.
const MinTrainingRows = 10

// Measurement is a persisted observation attributed to a city.
type Measurement struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
}

// ModelMetrics describes a trained model's accuracy and schema. It is
// written together with the model artifact on every training run.
type ModelMetrics struct {
	MAE               float64            `json:"mae"`
	R2                float64            `json:"r2"`
	LastTrained       string             `json:"last_trained"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	FeatureNames      []string           `json:"features"`
}

// Prediction is one forecast point.
type Prediction struct {
	Timestamp   time.Time `json:"timestamp"`
	Hour        int       `json:"hour"`
	Temperature float64   `json:"temperature"`
}

// IntelBundle is the orchestrator's output: a 24-hour forecast plus the
// context it was derived from. Transient; the monitor may cache it.
type IntelBundle struct {
	City        string        `json:"city"`
	Coordinates Coordinates   `json:"coordinates"`
	Current     Observation   `json:"current"`
	Predictions []Prediction  `json:"predictions"`
	Metrics     *ModelMetrics `json:"metrics,omitempty"`
}

// GlobalSlug is the reserved storage slug for the cross-city fallback
// model trained on the full measurement history.
const GlobalSlug = "global"

// CityFeatureNames are the training columns of a per-city model, in the
// order the feature vector is assembled.
var CityFeatureNames = []string{"timestamp", "hour", "humidity", "wind_speed"}

// GlobalFeatureNames add the city code column used by the global model.
var GlobalFeatureNames = []string{"timestamp", "hour", "humidity", "wind_speed", "city_code"}

// HourOf derives the hour-of-day feature from a timestamp, always in
// UTC. Training rows come from the provider as GMT strings and
// prediction rows from the server clock in whatever zone the host runs
// in; normalizing here keeps the hour column identical for the same
// instant on both paths.
func HourOf(ts time.Time) int {
	return ts.UTC().Hour()
}

// FeatureVector builds the per-city feature row for a point in time.
func FeatureVector(ts time.Time, humidity, windSpeed float64) []float64 {
	return []float64{float64(ts.Unix()), float64(HourOf(ts)), humidity, windSpeed}
}
