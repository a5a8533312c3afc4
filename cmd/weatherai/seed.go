package main

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/yava-code/weatherAI/internal/config"
	"github.com/yava-code/weatherAI/internal/measurements"
	"github.com/yava-code/weatherAI/internal/weather"
)

const seedDays = 7

// seed fills an empty measurement history with a week of synthetic
// hourly rows per roster city, following a simple diurnal temperature
// cycle peaking around 14:00.
func seed() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	history, err := measurements.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer history.Close()

	ctx := context.Background()

	stats, err := history.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Count > 0 {
		log.Printf("seed: database already contains %d measurements, skipping", stats.Count)
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	base := time.Now().UTC().Add(-seedDays * 24 * time.Hour).Truncate(time.Hour)

	var inserted int
	for _, city := range cfg.RefreshRoster {
		for i := 0; i < seedDays*24; i++ {
			ts := base.Add(time.Duration(i) * time.Hour)

			hourFactor := -5 * (1 - math.Abs(float64(ts.Hour()-14))/12)
			temp := 20 + hourFactor + rng.Float64()*4 - 2

			m := weather.Measurement{
				City:        city,
				Timestamp:   ts,
				Temperature: math.Round(temp*100) / 100,
				Humidity:    math.Round((30+rng.Float64()*50)*100) / 100,
				WindSpeed:   math.Round(rng.Float64()*10*100) / 100,
			}
			if err := history.Insert(ctx, m); err != nil {
				return err
			}
			inserted++
		}
	}

	log.Printf("seed: inserted %d measurements for %d cities", inserted, len(cfg.RefreshRoster))
	return nil
}
