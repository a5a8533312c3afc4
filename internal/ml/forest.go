package ml

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when a prediction row does not have the
// columns the model was trained on.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Node is one split (or leaf) of a regression tree. Fields are exported
// for gob serialization only; nothing outside this package walks a tree.
type Node struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
}

func (n *Node) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Forest is a bagged ensemble of regression trees. It records the names
// of its training columns so a prediction row can be validated against
// the schema instead of trusting positional convention.
type Forest struct {
	Trees []*Node
	Names []string
}

// FeatureNames returns the training columns, in vector order.
func (f *Forest) FeatureNames() []string {
	return f.Names
}

// Predict averages the trees' scores for one feature row. A row with the
// wrong column count fails explicitly rather than being misinterpreted.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != len(f.Names) {
		return 0, fmt.Errorf("%w: got %d features, model trained on %d (%v)",
			ErrSchemaMismatch, len(row), len(f.Names), f.Names)
	}
	if len(f.Trees) == 0 {
		return 0, errors.New("empty forest")
	}

	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.Trees)), nil
}
