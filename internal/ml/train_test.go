package ml

import (
	"errors"
	"testing"
	"time"

	"github.com/yava-code/weatherAI/internal/weather"
)

func trainingTable(rows int) weather.FeatureTable {
	table := make(weather.FeatureTable, 0, rows)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		table = append(table, weather.Observation{
			Timestamp:   ts,
			HourOfDay:   weather.HourOf(ts),
			Humidity:    50 + float64(i%20),
			WindSpeed:   float64(i % 8),
			Temperature: 10 + 5*float64(i%24)/24 + float64(i%3),
		})
	}
	return table
}

func TestTrainTooFewRows(t *testing.T) {
	trainer := NewTrainer()

	for _, rows := range []int{0, 1, 9} {
		model, metrics, err := trainer.Train(trainingTable(rows))
		if !errors.Is(err, weather.ErrInsufficientData) {
			t.Errorf("%d rows: expected ErrInsufficientData, got %v", rows, err)
		}
		if model != nil || metrics != nil {
			t.Errorf("%d rows: expected no model or metrics on failure", rows)
		}
	}
}

func TestTrainProducesModelAndMetrics(t *testing.T) {
	trainer := NewTrainer()

	model, metrics, err := trainer.Train(trainingTable(48))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == nil {
		t.Fatal("expected a model")
	}

	if len(metrics.FeatureNames) != len(weather.CityFeatureNames) {
		t.Errorf("expected %d feature names, got %d", len(weather.CityFeatureNames), len(metrics.FeatureNames))
	}
	if len(metrics.FeatureImportance) != len(weather.CityFeatureNames) {
		t.Errorf("expected importance for every feature, got %d entries", len(metrics.FeatureImportance))
	}
	if metrics.MAE < 0 {
		t.Errorf("MAE must be non-negative, got %v", metrics.MAE)
	}
	if metrics.LastTrained == "" {
		t.Error("expected last_trained to be set")
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	table := trainingTable(48)
	row := weather.FeatureVector(time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC), 55, 3)

	a, ma, err := NewTrainer().Train(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, mb, err := NewTrainer().Train(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pa, _ := a.Predict(row)
	pb, _ := b.Predict(row)
	if pa != pb {
		t.Errorf("same data and seed must predict identically: %v vs %v", pa, pb)
	}
	if ma.MAE != mb.MAE || ma.R2 != mb.R2 {
		t.Errorf("metrics differ across identical runs: %+v vs %+v", ma, mb)
	}
}

func TestPredictionStaysInTargetRange(t *testing.T) {
	table := trainingTable(72)
	model, _, err := NewTrainer().Train(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lo, hi := table[0].Temperature, table[0].Temperature
	for _, obs := range table {
		if obs.Temperature < lo {
			lo = obs.Temperature
		}
		if obs.Temperature > hi {
			hi = obs.Temperature
		}
	}

	pred, err := model.Predict(weather.FeatureVector(table[10].Timestamp, table[10].Humidity, table[10].WindSpeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tree leaves average training targets, so predictions cannot leave
	// the observed range.
	if pred < lo || pred > hi {
		t.Errorf("prediction %v outside target range [%v, %v]", pred, lo, hi)
	}
}

func TestPredictSchemaMismatch(t *testing.T) {
	model, _, err := NewTrainer().Train(trainingTable(24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A global-schema row must not be scored by a per-city model.
	_, err = model.Predict([]float64{1, 2, 3, 4, 5})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestTrainGlobalEncodesCityAndDropsUnknowns(t *testing.T) {
	codes := map[string]int{"Warsaw": 0, "Berlin": 1}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var ms []weather.Measurement
	for i := 0; i < 30; i++ {
		city := "Warsaw"
		if i%2 == 0 {
			city = "Berlin"
		}
		ms = append(ms, weather.Measurement{
			City:        city,
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
			Temperature: 12 + float64(i%7),
			Humidity:    60,
			WindSpeed:   2,
		})
	}
	ms = append(ms, weather.Measurement{City: "Atlantis", Timestamp: base, Temperature: -50})

	model, metrics, err := NewTrainer().TrainGlobal(ms, codes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(model.FeatureNames()), len(weather.GlobalFeatureNames); got != want {
		t.Errorf("expected %d features, got %d", want, got)
	}
	if _, ok := metrics.FeatureImportance["city_code"]; !ok {
		t.Error("expected city_code in feature importance")
	}
}

func TestTrainGlobalOnlyUnknownCities(t *testing.T) {
	ms := make([]weather.Measurement, 20)
	for i := range ms {
		ms[i] = weather.Measurement{City: "Atlantis", Timestamp: time.Now(), Temperature: 10}
	}

	_, _, err := NewTrainer().TrainGlobal(ms, map[string]int{"Warsaw": 0})
	if !errors.Is(err, weather.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData when all rows are dropped, got %v", err)
	}
}
