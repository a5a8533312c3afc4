package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/yava-code/weatherAI/internal/common"
	"github.com/yava-code/weatherAI/internal/weather"
)

const (
	defaultTrees = 200
	defaultSeed  = 42

	// testFraction is the held-out share used for evaluation.
	testFraction = 0.2
)

// Trainer fits bagged regression forests from weather feature tables.
// The seed is fixed so the train/test split and the bootstrap samples are
// reproducible run to run.
type Trainer struct {
	trees int
	seed  int64
}

// NewTrainer returns a trainer with the standard 200-tree configuration.
func NewTrainer() *Trainer {
	return &Trainer{trees: defaultTrees, seed: defaultSeed}
}

// Train fits a per-city model on {timestamp, hour, humidity, wind_speed}
// against temperature. Tables below weather.MinTrainingRows rows signal
// weather.ErrInsufficientData and produce no model.
func (t *Trainer) Train(table weather.FeatureTable) (weather.Model, *weather.ModelMetrics, error) {
	x := make([][]float64, 0, len(table))
	y := make([]float64, 0, len(table))
	for _, obs := range table {
		x = append(x, []float64{
			float64(obs.Timestamp.Unix()),
			float64(obs.HourOfDay),
			obs.Humidity,
			obs.WindSpeed,
		})
		y = append(y, obs.Temperature)
	}
	return t.fit(x, y, weather.CityFeatureNames)
}

// TrainGlobal fits the cross-city model over the full measurement
// history, with each city encoded as its roster code. Rows for cities
// without a code are dropped before the row-count check.
func (t *Trainer) TrainGlobal(ms []weather.Measurement, codes map[string]int) (weather.Model, *weather.ModelMetrics, error) {
	x := make([][]float64, 0, len(ms))
	y := make([]float64, 0, len(ms))
	for _, m := range ms {
		code, ok := codes[m.City]
		if !ok {
			continue
		}
		x = append(x, []float64{
			float64(m.Timestamp.Unix()),
			float64(weather.HourOf(m.Timestamp)),
			m.Humidity,
			m.WindSpeed,
			float64(code),
		})
		y = append(y, m.Temperature)
	}
	return t.fit(x, y, weather.GlobalFeatureNames)
}

func (t *Trainer) fit(x [][]float64, y []float64, names []string) (weather.Model, *weather.ModelMetrics, error) {
	n := len(x)
	if n < weather.MinTrainingRows {
		return nil, nil, fmt.Errorf("%w: %d rows, need %d", weather.ErrInsufficientData, n, weather.MinTrainingRows)
	}

	rng := rand.New(rand.NewSource(t.seed))

	// Deterministic 80/20 split.
	perm := rng.Perm(n)
	testN := int(math.Round(float64(n) * testFraction))
	if testN == 0 {
		testN = 1
	}
	trainIdx := perm[:n-testN]
	testIdx := perm[n-testN:]

	builder := &treeBuilder{x: x, y: y, importance: make([]float64, len(names))}
	forest := &Forest{Names: names, Trees: make([]*Node, 0, t.trees)}

	sample := make([]int, len(trainIdx))
	for i := 0; i < t.trees; i++ {
		for j := range sample {
			sample[j] = trainIdx[rng.Intn(len(trainIdx))]
		}
		forest.Trees = append(forest.Trees, builder.build(sample, 0))
	}

	estimates := make([]float64, len(testIdx))
	values := make([]float64, len(testIdx))
	var absErr float64
	for i, row := range testIdx {
		pred, err := forest.Predict(x[row])
		if err != nil {
			return nil, nil, err
		}
		estimates[i] = pred
		values[i] = y[row]
		absErr += math.Abs(pred - y[row])
	}
	mae := absErr / float64(len(testIdx))

	r2 := stat.RSquaredFrom(estimates, values, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// Constant held-out target makes R² undefined.
		r2 = 0
	}

	importance := make(map[string]float64, len(names))
	if total := floats.Sum(builder.importance); total > 0 {
		for i, name := range names {
			importance[name] = common.Round4(builder.importance[i] / total)
		}
	} else {
		for _, name := range names {
			importance[name] = 0
		}
	}

	metrics := &weather.ModelMetrics{
		MAE:               common.Round4(mae),
		R2:                common.Round4(r2),
		LastTrained:       time.Now().Format("2006-01-02 15:04:05"),
		FeatureImportance: importance,
		FeatureNames:      names,
	}
	return forest, metrics, nil
}
