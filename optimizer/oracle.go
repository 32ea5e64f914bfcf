package optimizer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sky-flux/lutboost/internal/parallel"
)

// oracle evaluates the weighted training loss of the candidate scores and
// its gradient with respect to the per-output multipliers:
//
//	F(x)     = Σ_s w_s · loss(t_s, committed_s + x ⊙ weak_s)
//	∂F/∂x_o  = Σ_s w_s · ∂loss/∂score_so · weak_so
//
// Per-chunk partial sums are reduced in chunk order, so the result for a
// given x does not depend on goroutine scheduling.
type oracle struct {
	buffers *ScoreBuffers
	loss    Loss
	targets *mat.Dense
	weights []float64
	pool    parallel.Pool

	partF []float64
	partG [][]float64

	// Last evaluated point; the solver asks for value and gradient at the
	// same x in separate calls.
	lastX    []float64
	lastF    float64
	lastGrad []float64
	cached   bool
}

func newOracle(buffers *ScoreBuffers, loss Loss, targets *mat.Dense, weights []float64, pool parallel.Pool) *oracle {
	_, no := targets.Dims()
	chunks := pool.Chunks(len(weights))
	partG := make([][]float64, chunks)
	for c := range partG {
		partG[c] = make([]float64, no)
	}
	return &oracle{
		buffers:  buffers,
		loss:     loss,
		targets:  targets,
		weights:  weights,
		pool:     pool,
		partF:    make([]float64, chunks),
		partG:    partG,
		lastX:    make([]float64, no),
		lastGrad: make([]float64, no),
	}
}

// reset drops the memoised point. Called whenever the weak or committed
// buffers change.
func (o *oracle) reset() { o.cached = false }

// Evaluate refreshes the candidate scores for x and returns the loss; when
// grad is non-nil it receives ∂F/∂x.
func (o *oracle) Evaluate(x, grad []float64) float64 {
	if !o.cached || !floats.Equal(x, o.lastX) {
		o.buffers.DeriveCandidate(x)
		o.lastF = o.aggregate(o.buffers.candidate, o.lastGrad)
		copy(o.lastX, x)
		o.cached = true
	}
	if grad != nil {
		copy(grad, o.lastGrad)
	}
	return o.lastF
}

// aggregate sums the weighted loss of scores. When grad is non-nil it is
// filled with the chain-rule gradient through the weak buffer.
func (o *oracle) aggregate(scores *mat.Dense, grad []float64) float64 {
	_, no := o.targets.Dims()
	weak := o.buffers.weak

	o.pool.For(len(o.weights), func(c, lo, hi int) {
		dscore := make([]float64, no)
		g := o.partG[c]
		clear(g)
		var f float64
		for s := lo; s < hi; s++ {
			w := o.weights[s]
			if w == 0 {
				continue
			}
			f += w * o.loss.Eval(o.targets.RawRowView(s), scores.RawRowView(s), dscore)
			if grad == nil {
				continue
			}
			wr := weak.RawRowView(s)
			for k := range g {
				g[k] += w * dscore[k] * wr[k]
			}
		}
		o.partF[c] = f
	})

	var f float64
	for c, pf := range o.partF {
		f += pf
		if grad != nil {
			if c == 0 {
				copy(grad, o.partG[c])
			} else {
				floats.Add(grad, o.partG[c])
			}
		}
	}
	return f
}
