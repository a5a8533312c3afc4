package weather

import "errors"

var (
	// ErrCityNotFound is returned when geocoding yields no match.
	ErrCityNotFound = errors.New("city not found")

	// ErrWeatherUnavailable is returned when the upstream provider fails
	// after the client's retries are exhausted.
	ErrWeatherUnavailable = errors.New("weather data unavailable")

	// ErrInsufficientData is signaled when fewer than MinTrainingRows
	// usable rows are available to fit a model.
	ErrInsufficientData = errors.New("insufficient data to train model")

	// ErrModelNotTrained is returned when prediction is attempted for a
	// slug with no stored artifact.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrTrainingFailed wraps any failure of the ensure-model stage:
	// too little history, a training error, or a storage error.
	ErrTrainingFailed = errors.New("model training failed")
)
