package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yava-code/weatherAI/internal/common"
)

// ForecastHours is the horizon of an analysis: whole-hour offsets 1..24
// from the moment of the request.
const ForecastHours = 24

// Service is the analysis orchestrator. Given a city name it resolves
// coordinates, fetches current conditions, ensures a trained model exists
// for the city, and assembles a multi-hour forecast bundle.
//
// The service is stateless per call: re-invoking it re-derives everything
// from current external state.
type Service struct {
	gateway Gateway
	models  ModelStore
	trainer Trainer
	history History

	cityCodes    map[string]int
	lookbackDays int
}

// NewService creates a Service. The roster defines the categorical city
// codes of the global model, in roster order.
func NewService(gateway Gateway, models ModelStore, trainer Trainer, history History, roster []string, lookbackDays int) *Service {
	codes := make(map[string]int, len(roster))
	for i, city := range roster {
		codes[city] = i
	}
	return &Service{
		gateway:      gateway,
		models:       models,
		trainer:      trainer,
		history:      history,
		cityCodes:    codes,
		lookbackDays: lookbackDays,
	}
}

// Analyze runs the full pipeline for one city and returns its bundle.
// Each stage surfaces a distinct failure: ErrCityNotFound,
// ErrWeatherUnavailable, or ErrTrainingFailed.
func (s *Service) Analyze(ctx context.Context, cityName string) (*IntelBundle, error) {
	coords, err := s.gateway.ResolveCoordinates(ctx, cityName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, cityName)
	}

	// The snapshot fetch and the ensure-model stage both depend only on
	// coordinates, so they run concurrently.
	var (
		wg       sync.WaitGroup
		current  Observation
		curErr   error
		model    Model
		metrics  *ModelMetrics
		modelErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, curErr = s.gateway.CurrentConditions(ctx, coords.Latitude, coords.Longitude)
	}()
	go func() {
		defer wg.Done()
		model, metrics, modelErr = s.ensureModel(ctx, common.Slug(cityName), coords)
	}()
	wg.Wait()

	if curErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, curErr)
	}
	if modelErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrainingFailed, modelErr)
	}

	now := time.Now()
	predictions := make([]Prediction, 0, ForecastHours)
	for h := 1; h <= ForecastHours; h++ {
		ts := now.Add(time.Duration(h) * time.Hour)
		// Humidity and wind are held at the current snapshot's values:
		// only temperature is forecast.
		temp, err := model.Predict(FeatureVector(ts, current.Humidity, current.WindSpeed))
		if err != nil {
			return nil, fmt.Errorf("predict +%dh for %s: %w", h, cityName, err)
		}
		predictions = append(predictions, Prediction{
			Timestamp:   ts,
			Hour:        h,
			Temperature: temp,
		})
	}

	return &IntelBundle{
		City:        cityName,
		Coordinates: coords,
		Current:     current,
		Predictions: predictions,
		Metrics:     metrics,
	}, nil
}

// ensureModel loads the city's model if one exists, otherwise fetches
// history and trains one. Cold starts are the only time training sits on
// the request path. Two concurrent cold starts may both train and both
// save; the second write wins, which is accepted for how rare they are.
func (s *Service) ensureModel(ctx context.Context, slug string, coords Coordinates) (Model, *ModelMetrics, error) {
	if s.models.Exists(slug) {
		model, metrics, err := s.models.Load(slug)
		if err != nil {
			return nil, nil, err
		}
		if model != nil {
			return model, metrics, nil
		}
	}

	log.Printf("weather: no model for %s, training from %d days of history", slug, s.lookbackDays)
	table := s.gateway.HistoricalSeries(ctx, coords.Latitude, coords.Longitude, s.lookbackDays)

	model, metrics, err := s.trainer.Train(table)
	if err != nil {
		return nil, nil, err
	}
	if err := s.models.Save(slug, model, metrics); err != nil {
		return nil, nil, err
	}
	return model, metrics, nil
}

// PredictAt produces a single temperature forecast from a city's stored
// model. ErrModelNotTrained is returned when no artifact exists.
func (s *Service) PredictAt(city string, ts time.Time, humidity, windSpeed float64) (float64, error) {
	slug := common.Slug(city)
	model, _, err := s.models.Load(slug)
	if err != nil {
		return 0, err
	}
	if model == nil {
		return 0, fmt.Errorf("%w: %s", ErrModelNotTrained, slug)
	}
	return model.Predict(FeatureVector(ts, humidity, windSpeed))
}

// RetrainCity unconditionally refits a city's model from fresh history,
// regardless of whether one already exists. The monitor's warm-retrain
// cadence calls this to keep models current.
func (s *Service) RetrainCity(ctx context.Context, cityName string) error {
	coords, err := s.gateway.ResolveCoordinates(ctx, cityName)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrCityNotFound, cityName)
	}

	table := s.gateway.HistoricalSeries(ctx, coords.Latitude, coords.Longitude, s.lookbackDays)
	model, metrics, err := s.trainer.Train(table)
	if err != nil {
		return err
	}
	return s.models.Save(common.Slug(cityName), model, metrics)
}

// TrainGlobal refits the cross-city fallback model from the full
// measurement history.
func (s *Service) TrainGlobal(ctx context.Context) error {
	ms, err := s.history.All(ctx)
	if err != nil {
		return err
	}

	model, metrics, err := s.trainer.TrainGlobal(ms, s.cityCodes)
	if err != nil {
		return err
	}
	return s.models.Save(GlobalSlug, model, metrics)
}

// GlobalMetrics returns the metrics record of the global model, or
// ErrModelNotTrained when it has never been trained.
func (s *Service) GlobalMetrics() (*ModelMetrics, error) {
	_, metrics, err := s.models.Load(GlobalSlug)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		return nil, ErrModelNotTrained
	}
	return metrics, nil
}
