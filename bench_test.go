package lutboost_test

import (
	"math/rand"
	"testing"

	"github.com/sky-flux/lutboost"
)

func benchDataset(b *testing.B, samples, features, entries int) *lutboost.Dataset {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	values := make([][]int, features)
	for f := range values {
		values[f] = make([]int, samples)
		for s := range values[f] {
			// Skewed bins so the mask has something to drop.
			values[f][s] = min(int(rng.ExpFloat64()*float64(entries)/4), entries-1)
		}
	}
	weights := make([]float64, samples)
	targets := make([][]float64, samples)
	for s := range targets {
		weights[s] = 1
		targets[s] = []float64{1}
	}
	d, err := lutboost.NewDataset(entries, values, weights, targets)
	if err != nil {
		b.Fatal(err)
	}
	return d
}

// BenchmarkBuildMask measures mask construction over 100k samples × 64
// features.
func BenchmarkBuildMask(b *testing.B) {
	d := benchDataset(b, 100_000, 64, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lutboost.BuildMask(d, lutboost.DefaultMaskCutoff, 0); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEnsembleScore measures scoring one sample through 100 rounds.
func BenchmarkEnsembleScore(b *testing.B) {
	d := benchDataset(b, 1000, 16, 64)
	e := lutboost.NewEnsemble(1)
	rng := rand.New(rand.NewSource(7))
	for r := 0; r < 100; r++ {
		entries := make([]float64, 64)
		for u := range entries {
			entries[u] = rng.NormFloat64()
		}
		if err := e.Append([]*lutboost.LUT{lutboost.NewLUT(r%16, entries)}); err != nil {
			b.Fatal(err)
		}
	}
	out := make([]float64, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Score(d, i%d.Samples(), out)
	}
}
