package lutboost

import (
	"fmt"
	"math"
)

// Dataset is an in-memory LabeledSource.
type Dataset struct {
	entries int
	values  [][]int // values[feature][sample]
	weights []float64
	targets [][]float64 // targets[sample][output]
}

// Compile-time interface check.
var _ LabeledSource = (*Dataset)(nil)

// NewDataset builds a Dataset from feature-major bin values, per-sample
// weights and sample-major targets. The inputs are copied.
//
// Returns ErrEmptySource when there are no features, samples, outputs or
// entries, ErrShapeMismatch when the slices disagree on the sample or output
// count, ErrBinOutOfRange for a bin outside [0, entries) and ErrInvalidWeight
// for a negative or non-finite weight.
func NewDataset(entries int, values [][]int, weights []float64, targets [][]float64) (*Dataset, error) {
	if entries <= 0 || len(values) == 0 || len(weights) == 0 || len(targets) == 0 || len(targets[0]) == 0 {
		return nil, ErrEmptySource
	}

	samples := len(weights)
	outputs := len(targets[0])
	if len(targets) != samples {
		return nil, fmt.Errorf("%w: %d target rows for %d samples", ErrShapeMismatch, len(targets), samples)
	}

	d := &Dataset{
		entries: entries,
		values:  make([][]int, len(values)),
		weights: make([]float64, samples),
		targets: make([][]float64, samples),
	}

	for f, col := range values {
		if len(col) != samples {
			return nil, fmt.Errorf("%w: feature %d has %d values for %d samples",
				ErrShapeMismatch, f, len(col), samples)
		}
		for s, u := range col {
			if u < 0 || u >= entries {
				return nil, fmt.Errorf("%w: feature %d sample %d bin %d, entries %d",
					ErrBinOutOfRange, f, s, u, entries)
			}
		}
		d.values[f] = append([]int(nil), col...)
	}

	for s, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: sample %d weight %f", ErrInvalidWeight, s, w)
		}
		d.weights[s] = w
	}

	for s, row := range targets {
		if len(row) != outputs {
			return nil, fmt.Errorf("%w: sample %d has %d targets, want %d",
				ErrShapeMismatch, s, len(row), outputs)
		}
		d.targets[s] = append([]float64(nil), row...)
	}

	return d, nil
}

func (d *Dataset) Samples() int  { return len(d.weights) }
func (d *Dataset) Features() int { return len(d.values) }
func (d *Dataset) Outputs() int  { return len(d.targets[0]) }
func (d *Dataset) Entries() int  { return d.entries }

func (d *Dataset) FeatureValue(feature, sample int) int { return d.values[feature][sample] }

func (d *Dataset) Weight(sample int) float64 { return d.weights[sample] }

func (d *Dataset) Target(sample, output int) float64 { return d.targets[sample][output] }
