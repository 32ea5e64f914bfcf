package optimizer

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Objective returns the function value at x. When grad is non-nil it also
// receives the gradient at x. It must not retain x or grad.
type Objective func(x, grad []float64) float64

// Solution is the final state of a Solver run.
type Solution struct {
	X           []float64
	F           float64
	Status      Status
	Iterations  int
	Evaluations int
}

// Solver minimizes an Objective from a starting point. Solvers never fail
// with an error: every way of stopping is reported through Solution.Status.
type Solver interface {
	Minimize(x0 []float64, f Objective) Solution
}

var (
	errMinStep = errors.New("optimizer: step below tolerance")
	errMaxStep = errors.New("optimizer: step above maximum")
)

// LBFGS is a limited-memory BFGS Solver backed by gonum's optimize package.
// Steps come from a Moré-Thuente line search and meet the strong Wolfe
// conditions.
type LBFGS struct {
	maxIterations int
	maxLineSearch int
	store         int
	tolerance     float64
	stepTolerance float64
	maxStep       float64
}

// Compile-time interface check.
var _ Solver = (*LBFGS)(nil)

// NewLBFGS creates an L-BFGS solver from the solver fields of cfg. Zero
// fields take the Config defaults.
func NewLBFGS(cfg Config) *LBFGS {
	cfg = cfg.withDefaults()
	return &LBFGS{
		maxIterations: cfg.MaxIterations,
		maxLineSearch: cfg.MaxLineSearch,
		store:         cfg.Store,
		tolerance:     cfg.Tolerance,
		stepTolerance: cfg.StepTolerance,
		maxStep:       cfg.MaxStep,
	}
}

// Minimize runs L-BFGS from x0. The gradient tolerance is meant to be tiny,
// so in practice the iteration cap decides when the search stops.
func (s *LBFGS) Minimize(x0 []float64, f Objective) Solution {
	watch := newStepWatch(len(x0), s.stepTolerance, s.maxStep)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			watch.observe(x)
			return f(x, nil)
		},
		Grad: func(grad, x []float64) {
			watch.observe(x)
			f(x, grad)
		},
		Status: watch.status,
	}
	// gonum counts the starting location as the first major iteration.
	settings := &optimize.Settings{
		GradientThreshold: s.tolerance,
		MajorIterations:   s.maxIterations + 1,
		FuncEvaluations:   s.maxIterations * s.maxLineSearch,
		Converger:         optimize.NeverTerminate{},
	}
	method := &optimize.LBFGS{
		Linesearcher:      &optimize.MoreThuente{},
		Store:             s.store,
		GradStopThreshold: s.tolerance,
	}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if res == nil {
		return Solution{X: append([]float64(nil), x0...), Status: Failure}
	}
	steps := max(res.MajorIterations-1, 0)
	return Solution{
		X:           res.X,
		F:           res.F,
		Status:      classify(res.Status, err, steps),
		Iterations:  steps,
		Evaluations: res.FuncEvaluations,
	}
}

// classify maps a gonum termination onto the Status vocabulary. steps is the
// number of L-BFGS steps taken, not counting the starting location.
func classify(status optimize.Status, err error, steps int) Status {
	switch {
	case errors.Is(err, errMaxStep), errors.Is(err, optimize.ErrLinesearcherBound):
		return MaxStepReached
	case errors.Is(err, errMinStep), errors.Is(err, optimize.ErrLinesearcherFailure):
		return MinStepReached
	case errors.Is(err, optimize.ErrNoProgress):
		return RoundingError
	case err != nil:
		return Failure
	}

	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.MethodConverge, optimize.FunctionConvergence:
		if steps == 0 {
			return AlreadyMinimized
		}
		return Converged
	case optimize.IterationLimit:
		return MaxIterationsReached
	case optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit:
		return MaxLineSearchReached
	case optimize.StepConvergence:
		return MinStepReached
	default:
		return Failure
	}
}

// stepWatch tracks the distance between successive distinct evaluation
// points and stops the search once it leaves [minStep, maxStep].
type stepWatch struct {
	last    []float64
	seen    bool
	minStep float64
	maxStep float64
	err     error
}

func newStepWatch(dim int, minStep, maxStep float64) *stepWatch {
	return &stepWatch{last: make([]float64, dim), minStep: minStep, maxStep: maxStep}
}

func (w *stepWatch) observe(x []float64) {
	if w.err != nil {
		return
	}
	if !w.seen {
		copy(w.last, x)
		w.seen = true
		return
	}
	d := floats.Distance(x, w.last, 2)
	if d == 0 {
		return
	}
	copy(w.last, x)
	switch {
	case d < w.minStep:
		w.err = errMinStep
	case d > w.maxStep:
		w.err = errMaxStep
	}
}

func (w *stepWatch) status() (optimize.Status, error) {
	switch w.err {
	case nil:
		return optimize.NotTerminated, nil
	case errMinStep:
		return optimize.StepConvergence, nil
	default:
		return optimize.Failure, w.err
	}
}
