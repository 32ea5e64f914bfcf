package optimizer

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sky-flux/lutboost"
)

const floatTol = 1e-9

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustDataset builds a dataset with unit weights.
func mustDataset(t testing.TB, entries int, values [][]int, targets [][]float64) *lutboost.Dataset {
	t.Helper()
	weights := make([]float64, len(targets))
	for s := range weights {
		weights[s] = 1
	}
	d, err := lutboost.NewDataset(entries, values, weights, targets)
	require.NoError(t, err)
	return d
}

func mustOptimizer(t testing.TB, data lutboost.LabeledSource, cfg Config, opts ...Option) *Optimizer {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	o, err := NewOptimizer(data, cfg, opts...)
	require.NoError(t, err)
	return o
}

// quadraticData is a one-output problem whose squared-loss optimum for the
// LUT {1, -1, 0} on feature 0 is exactly scale. Every quantity the solver
// touches is a power of two, so the optimum is reached without rounding.
func quadraticData(t testing.TB, scale float64) (*lutboost.Dataset, *lutboost.LUT) {
	t.Helper()
	values := [][]int{{0, 1, 0, 1}}
	targets := [][]float64{{scale}, {-scale}, {scale}, {-scale}}
	return mustDataset(t, 3, values, targets), lutboost.NewLUT(0, []float64{1, -1, 0})
}

// syntheticData draws a multi-output classification problem with ±1 targets
// driven by the first two features.
func syntheticData(t testing.TB, samples, features, entries, outputs int, seed int64) *lutboost.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	values := make([][]int, features)
	for f := range values {
		values[f] = make([]int, samples)
		for s := range values[f] {
			values[f][s] = rng.Intn(entries)
		}
	}
	weights := make([]float64, samples)
	targets := make([][]float64, samples)
	for s := range targets {
		weights[s] = 0.5 + rng.Float64()
		targets[s] = make([]float64, outputs)
		for o := range targets[s] {
			v := float64(values[o%min(2, features)][s]) - float64(entries-1)/2
			if rng.Float64() < 0.1 {
				v = -v
			}
			targets[s][o] = 1
			if v < 0 {
				targets[s][o] = -1
			}
		}
	}
	d, err := lutboost.NewDataset(entries, values, weights, targets)
	require.NoError(t, err)
	return d
}

// proposeLUT builds the LUT on feature f for output o whose responses are
// the weighted mean negative loss gradient per bin at the committed scores.
func proposeLUT(o *Optimizer, f, out int) *lutboost.LUT {
	data := o.data
	committed := o.Committed()
	sums := make([]float64, data.Entries())
	norms := make([]float64, data.Entries())
	targets := make([]float64, data.Outputs())
	grad := make([]float64, data.Outputs())
	for s := 0; s < data.Samples(); s++ {
		for k := range targets {
			targets[k] = data.Target(s, k)
		}
		o.loss.Eval(targets, committed.RawRowView(s), grad)
		u := data.FeatureValue(f, s)
		sums[u] -= data.Weight(s) * grad[out]
		norms[u] += data.Weight(s)
	}
	lut := lutboost.ZeroLUT(f, data.Entries())
	for u := range sums {
		if norms[u] > 0 {
			lut.Set(u, sums[u]/norms[u])
		}
	}
	o.Mask().Apply(lut)
	return lut
}

// fakeSolver returns a fixed solution after a single objective evaluation.
type fakeSolver struct {
	x      []float64
	status Status
	calls  int
	x0     []float64
}

func (f *fakeSolver) Minimize(x0 []float64, obj Objective) Solution {
	f.calls++
	f.x0 = append([]float64(nil), x0...)
	grad := make([]float64, len(x0))
	v := obj(f.x, grad)
	return Solution{
		X:           append([]float64(nil), f.x...),
		F:           v,
		Status:      f.status,
		Iterations:  1,
		Evaluations: 1,
	}
}

// finiteDiff estimates the gradient of f at x by central differences.
func finiteDiff(f func([]float64) float64, x []float64) []float64 {
	const h = 1e-6
	grad := make([]float64, len(x))
	p := append([]float64(nil), x...)
	for i := range x {
		p[i] = x[i] + h
		fp := f(p)
		p[i] = x[i] - h
		fm := f(p)
		p[i] = x[i]
		grad[i] = (fp - fm) / (2 * h)
	}
	return grad
}

func relClose(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
