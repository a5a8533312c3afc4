// Package store persists trained model artifacts and their metrics on
// the filesystem, one pair of files per city slug.
package store

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yava-code/weatherAI/internal/ml"
	"github.com/yava-code/weatherAI/internal/weather"
)

func init() {
	// The artifact is gob-encoded behind the weather.Model interface;
	// the concrete regressor must be registered for decode.
	gob.Register(&ml.Forest{})
}

// FileStore maps a city slug to `{root}/{slug}.model` (gob artifact) and
// `{root}/{slug}.metrics` (JSON). The two files are not written
// transactionally: metrics go first on every save, so a torn save can
// leave stale metrics next to a newer model but never a model without
// metrics.
type FileStore struct {
	root string
}

// New creates the store root if needed.
func New(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) paths(slug string) (model, metrics string) {
	return filepath.Join(s.root, slug+".model"), filepath.Join(s.root, slug+".metrics")
}

// Exists reports whether a trained artifact is stored for the slug.
func (s *FileStore) Exists(slug string) bool {
	modelPath, _ := s.paths(slug)
	_, err := os.Stat(modelPath)
	return err == nil
}

// Load returns the slug's model and metrics. A missing artifact returns
// (nil, nil, nil): "no model yet" is an expected state, not an error.
func (s *FileStore) Load(slug string) (weather.Model, *weather.ModelMetrics, error) {
	modelPath, metricsPath := s.paths(slug)

	f, err := os.Open(modelPath)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open model %s: %w", slug, err)
	}
	defer f.Close()

	var model weather.Model
	if err := gob.NewDecoder(f).Decode(&model); err != nil {
		return nil, nil, fmt.Errorf("decode model %s: %w", slug, err)
	}

	var metrics *weather.ModelMetrics
	raw, err := os.ReadFile(metricsPath)
	if err == nil {
		metrics = &weather.ModelMetrics{}
		if err := json.Unmarshal(raw, metrics); err != nil {
			return nil, nil, fmt.Errorf("decode metrics %s: %w", slug, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read metrics %s: %w", slug, err)
	}

	return model, metrics, nil
}

// Save overwrites the slug's artifact pair wholesale, metrics first.
func (s *FileStore) Save(slug string, model weather.Model, metrics *weather.ModelMetrics) error {
	modelPath, metricsPath := s.paths(slug)

	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode metrics %s: %w", slug, err)
	}
	if err := os.WriteFile(metricsPath, raw, 0o644); err != nil {
		return fmt.Errorf("write metrics %s: %w", slug, err)
	}

	f, err := os.Create(modelPath)
	if err != nil {
		return fmt.Errorf("write model %s: %w", slug, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(&model); err != nil {
		return fmt.Errorf("encode model %s: %w", slug, err)
	}
	return nil
}
