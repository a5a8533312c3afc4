// Package scheduler runs the background monitor: periodic intel
// refreshes, warm model retrains, and the daily global retrain. It is
// fully decoupled from the request path and never surfaces errors to a
// caller; failures are logged and the roster loop moves on.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/yava-code/weatherAI/internal/weather"
)

// AnalysisService is the slice of the orchestrator the monitor drives.
type AnalysisService interface {
	Analyze(ctx context.Context, city string) (*weather.IntelBundle, error)
	RetrainCity(ctx context.Context, city string) error
	TrainGlobal(ctx context.Context) error
}

// MeasurementSink receives the current-conditions snapshots the refresh
// sweep persists for global training.
type MeasurementSink interface {
	Insert(ctx context.Context, m weather.Measurement) error
}

// Config carries the rosters and cadences, injected so they are testable
// and swappable rather than compiled in.
type Config struct {
	RefreshRoster []string
	RetrainRoster []string

	RefreshInterval time.Duration
	RetrainInterval time.Duration
	GlobalTrainAt   string // "HH:MM", daily

	CacheTTL   time.Duration
	JobTimeout time.Duration
}

// Monitor owns the three scheduled cadences.
type Monitor struct {
	scheduler *gocron.Scheduler
	service   AnalysisService
	cache     weather.IntelCache
	sink      MeasurementSink
	cfg       Config
}

// New creates a Monitor. Jobs do not run until Start.
func New(service AnalysisService, cache weather.IntelCache, sink MeasurementSink, cfg Config) *Monitor {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 60 * time.Second
	}
	return &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cache:     cache,
		sink:      sink,
		cfg:       cfg,
	}
}

// Start schedules the three cadences and starts the underlying
// scheduler.
func (m *Monitor) Start() error {
	if _, err := m.scheduler.Every(m.cfg.RefreshInterval).Do(m.RefreshAndCache); err != nil {
		return err
	}
	if _, err := m.scheduler.Every(m.cfg.RetrainInterval).Do(m.WarmRetrain); err != nil {
		return err
	}
	if _, err := m.scheduler.Every(1).Day().At(m.cfg.GlobalTrainAt).Do(m.GlobalRetrain); err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// RefreshAndCache runs the full analysis pipeline for every roster city,
// persists the current snapshot into the measurement history, and caches
// the bundle. One city's failure never aborts the sweep.
func (m *Monitor) RefreshAndCache() {
	run := uuid.NewString()[:8]
	log.Printf("monitor[%s]: refreshing intel for %d cities", run, len(m.cfg.RefreshRoster))

	var wg sync.WaitGroup
	for _, city := range m.cfg.RefreshRoster {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.JobTimeout)
			defer cancel()

			bundle, err := m.service.Analyze(ctx, city)
			if err != nil {
				log.Printf("monitor[%s]: refresh failed for %s: %v", run, city, err)
				return
			}

			measurement := weather.Measurement{
				City:        city,
				Timestamp:   bundle.Current.Timestamp,
				Temperature: bundle.Current.Temperature,
				Humidity:    bundle.Current.Humidity,
				WindSpeed:   bundle.Current.WindSpeed,
			}
			if err := m.sink.Insert(ctx, measurement); err != nil {
				log.Printf("monitor[%s]: persist snapshot failed for %s: %v", run, city, err)
			}

			m.cache.Set(city, bundle, m.cfg.CacheTTL)
		}()
	}
	wg.Wait()

	if purger, ok := m.cache.(interface{ Purge() }); ok {
		purger.Purge()
	}
	log.Printf("monitor[%s]: refresh sweep complete", run)
}

// WarmRetrain unconditionally refits every roster city's model from
// fresh history, keeping models current as observations accrue.
func (m *Monitor) WarmRetrain() {
	run := uuid.NewString()[:8]
	log.Printf("monitor[%s]: warm retrain for %d cities", run, len(m.cfg.RetrainRoster))

	var wg sync.WaitGroup
	for _, city := range m.cfg.RetrainRoster {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.JobTimeout)
			defer cancel()

			if err := m.service.RetrainCity(ctx, city); err != nil {
				log.Printf("monitor[%s]: retrain failed for %s: %v", run, city, err)
			}
		}()
	}
	wg.Wait()
	log.Printf("monitor[%s]: warm retrain complete", run)
}

// GlobalRetrain refits the cross-city fallback model from the full
// measurement history.
func (m *Monitor) GlobalRetrain() {
	run := uuid.NewString()[:8]

	ctx, cancel := context.WithTimeout(context.Background(), 5*m.cfg.JobTimeout)
	defer cancel()

	if err := m.service.TrainGlobal(ctx); err != nil {
		log.Printf("monitor[%s]: global retrain failed: %v", run, err)
		return
	}
	log.Printf("monitor[%s]: global model retrained", run)
}
