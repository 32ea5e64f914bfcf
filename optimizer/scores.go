package optimizer

import (
	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"

	"github.com/sky-flux/lutboost"
	"github.com/sky-flux/lutboost/internal/parallel"
)

// ScoreBuffers holds the three samples x outputs score matrices of a
// boosting problem:
//
//   - committed: cumulative output of the accepted ensemble, changed only by
//     Commit;
//   - weak: raw responses of the current round's candidate LUTs, rewritten
//     by BufferWeak;
//   - candidate: committed + x ⊙ weak for the trial multipliers x, rewritten
//     by DeriveCandidate.
//
// Every operation is a parallel pass over sample chunks in which each chunk
// writes only its own rows. The LUTs passed in must have been validated
// against the source.
type ScoreBuffers struct {
	src       lutboost.SampleSource
	pool      parallel.Pool
	committed *mat.Dense
	weak      *mat.Dense
	candidate *mat.Dense
}

// NewScoreBuffers allocates zeroed buffers for src. The source must have at
// least one sample and one output.
func NewScoreBuffers(src lutboost.SampleSource, workers, chunk int) *ScoreBuffers {
	ns, no := src.Samples(), src.Outputs()
	return &ScoreBuffers{
		src:       src,
		pool:      parallel.New(workers, chunk),
		committed: mat.NewDense(ns, no, nil),
		weak:      mat.NewDense(ns, no, nil),
		candidate: mat.NewDense(ns, no, nil),
	}
}

// Commit adds the response of luts[o] on every sample's bin to committed.
func (b *ScoreBuffers) Commit(luts []*lutboost.LUT) {
	b.pool.For(b.src.Samples(), func(_, lo, hi int) {
		for s := lo; s < hi; s++ {
			row := b.committed.RawRowView(s)
			for o, lut := range luts {
				row[o] += lut.Response(b.src.FeatureValue(lut.Feature(), s))
			}
		}
	})
}

// BufferWeak overwrites weak with the response of luts[o] on every sample's
// bin.
func (b *ScoreBuffers) BufferWeak(luts []*lutboost.LUT) {
	b.pool.For(b.src.Samples(), func(_, lo, hi int) {
		for s := lo; s < hi; s++ {
			row := b.weak.RawRowView(s)
			for o, lut := range luts {
				row[o] = lut.Response(b.src.FeatureValue(lut.Feature(), s))
			}
		}
	})
}

// DeriveCandidate sets candidate[s,o] = committed[s,o] + x[o]·weak[s,o].
func (b *ScoreBuffers) DeriveCandidate(x []float64) {
	b.pool.For(b.src.Samples(), func(_, lo, hi int) {
		for s := lo; s < hi; s++ {
			row := b.candidate.RawRowView(s)
			copy(row, b.weak.RawRowView(s))
			vek.Mul_Inplace(row, x)
			vek.Add_Inplace(row, b.committed.RawRowView(s))
		}
	})
}

// Committed returns a read-only view of the committed scores.
func (b *ScoreBuffers) Committed() mat.Matrix { return b.committed }

// Weak returns a read-only view of the buffered weak responses.
func (b *ScoreBuffers) Weak() mat.Matrix { return b.weak }

// Candidate returns a read-only view of the last derived candidate scores.
func (b *ScoreBuffers) Candidate() mat.Matrix { return b.candidate }
