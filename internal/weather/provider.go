package weather

import (
	"context"
	"time"
)

// Gateway abstracts the external geocoding/weather provider. All methods
// hide transport detail and surface semantic outcomes only.
type Gateway interface {
	// ResolveCoordinates geocodes a display name to its first match.
	ResolveCoordinates(ctx context.Context, city string) (Coordinates, error)

	// CurrentConditions fetches the live snapshot at a point.
	CurrentConditions(ctx context.Context, lat, lon float64) (Observation, error)

	// HistoricalSeries fetches an hourly training series. On failure it
	// returns an empty table, never an error.
	HistoricalSeries(ctx context.Context, lat, lon float64, lookbackDays int) FeatureTable
}

// Model is an opaque trained regressor. Its representation stays behind
// this interface so the underlying algorithm is substitutable.
type Model interface {
	// Predict scores a single feature row. The row must have exactly the
	// columns the model was trained on.
	Predict(features []float64) (float64, error)
	FeatureNames() []string
}

// Trainer fits regression models from tabular weather data.
type Trainer interface {
	// Train fits a per-city model. Fewer than MinTrainingRows rows yields
	// ErrInsufficientData and no model.
	Train(table FeatureTable) (Model, *ModelMetrics, error)

	// TrainGlobal fits the cross-city model over the full measurement
	// history, encoding each known city as a categorical code. Rows for
	// cities absent from codes are dropped.
	TrainGlobal(ms []Measurement, codes map[string]int) (Model, *ModelMetrics, error)
}

// ModelStore maps a city slug to its trained artifact and metrics pair.
type ModelStore interface {
	Exists(slug string) bool

	// Load returns (nil, nil, nil) when no artifact exists: "no model
	// yet" is an expected state, not an error.
	Load(slug string) (Model, *ModelMetrics, error)

	// Save persists the pair, metrics first, so a torn write can leave
	// stale metrics but never a model without metrics.
	Save(slug string, m Model, metrics *ModelMetrics) error
}

// History is the measurement-history boundary the core trains the global
// model from.
type History interface {
	All(ctx context.Context) ([]Measurement, error)
}

// IntelCache holds monitor-produced bundles with per-entry expiry.
type IntelCache interface {
	Set(city string, bundle *IntelBundle, ttl time.Duration)
	Get(city string) (*IntelBundle, bool)
}
