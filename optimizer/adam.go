package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Adam is a first-order Solver: Adam with bias correction under a cosine
// annealing learning rate. It spends the whole evaluation budget
// (MaxIterations × MaxLineSearch steps) unless the gradient vanishes, and
// returns the best point it visited.
//
// Update rule:
//
//	m[i] = β1·m[i] + (1-β1)·g[i]
//	v[i] = β2·v[i] + (1-β2)·g[i]²
//	m̂[i] = m[i] / (1 - β1^t)
//	v̂[i] = v[i] / (1 - β2^t)
//	x[i] = x[i] - lr · m̂[i] / (√v̂[i] + ε)
type Adam struct {
	lr           float64
	beta1, beta2 float64
	eps          float64
	steps        int
	tolerance    float64
}

// Compile-time interface check.
var _ Solver = (*Adam)(nil)

// NewAdam creates an Adam solver from cfg. Uses standard defaults:
// β1=0.9, β2=0.999, ε=1e-8.
func NewAdam(cfg Config) *Adam {
	cfg = cfg.withDefaults()
	return &Adam{
		lr:        cfg.LearningRate,
		beta1:     0.9,
		beta2:     0.999,
		eps:       1e-8,
		steps:     cfg.MaxIterations * cfg.MaxLineSearch,
		tolerance: cfg.Tolerance,
	}
}

// Minimize runs Adam from x0.
func (a *Adam) Minimize(x0 []float64, f Objective) Solution {
	n := len(x0)
	x := append([]float64(nil), x0...)
	grad := make([]float64, n)
	m := make([]float64, n)
	v := make([]float64, n)
	sched := NewCosineAnnealing(a.lr, a.steps)

	fx := f(x, grad)
	sol := Solution{X: append([]float64(nil), x...), F: fx, Evaluations: 1}
	if math.IsNaN(fx) || math.IsInf(fx, 0) {
		sol.Status = Failure
		return sol
	}

	lr := sched.LR()
	for t := 1; ; t++ {
		if floats.Norm(grad, math.Inf(1)) < a.tolerance {
			sol.Status = Converged
			if t == 1 {
				sol.Status = AlreadyMinimized
			}
			return sol
		}
		if t > a.steps {
			sol.Status = MaxIterationsReached
			return sol
		}

		c1 := 1 - math.Pow(a.beta1, float64(t))
		c2 := 1 - math.Pow(a.beta2, float64(t))
		for i, g := range grad {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			x[i] -= lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}

		fx = f(x, grad)
		sol.Evaluations++
		sol.Iterations = t
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			sol.Status = Failure
			return sol
		}
		if fx < sol.F {
			copy(sol.X, x)
			sol.F = fx
		}
		lr = sched.Step()
	}
}

// CosineAnnealing implements the cosine annealing learning rate schedule.
//
//	lr_t = 0.5 * lr_max * (1 + cos(π * t / T_max))
type CosineAnnealing struct {
	lrMax float64
	tMax  int
	t     int
}

// NewCosineAnnealing creates a cosine annealing scheduler.
func NewCosineAnnealing(lrMax float64, tMax int) *CosineAnnealing {
	return &CosineAnnealing{
		lrMax: lrMax,
		tMax:  tMax,
	}
}

// LR returns the current learning rate.
func (ca *CosineAnnealing) LR() float64 {
	if ca.tMax <= 0 {
		return ca.lrMax
	}
	return 0.5 * ca.lrMax * (1 + math.Cos(math.Pi*float64(ca.t)/float64(ca.tMax)))
}

// Step advances the schedule by one step and returns the new learning rate.
func (ca *CosineAnnealing) Step() float64 {
	ca.t++
	return ca.LR()
}
