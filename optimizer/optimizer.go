package optimizer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sky-flux/lutboost"
	"github.com/sky-flux/lutboost/internal/parallel"
)

// ErrCandidateCount is returned when a round does not supply exactly one
// LUT per output.
var ErrCandidateCount = errors.New("optimizer: need one LUT per output")

// machineEpsilon is the float64 machine epsilon, 2^-52.
const machineEpsilon = 0x1p-52

// Option configures the collaborators of an Optimizer.
type Option func(*Optimizer)

// WithLoss overrides the loss named by Config.Loss.
func WithLoss(l Loss) Option {
	return func(o *Optimizer) { o.loss = l }
}

// WithSolver replaces the solver named by Config.Solver.
func WithSolver(s Solver) Option {
	return func(o *Optimizer) { o.solver = s }
}

// WithLogger sets the logger for per-round diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithMetrics records every line search into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// Optimizer calibrates and accepts the candidate LUTs of boosting rounds.
//
// Each round the driver proposes one LUT per output and calls LineSearch,
// which finds a per-output multiplier minimizing the loss of
// committed + x ⊙ weak. If the round is accepted the LUTs are scaled in
// place and appended to the ensemble; the driver then folds them into the
// committed scores with Commit.
//
// An Optimizer is not safe for concurrent use.
type Optimizer struct {
	data    lutboost.LabeledSource
	cfg     Config
	loss    Loss
	solver  Solver
	logger  *slog.Logger
	metrics *Metrics

	mask     *lutboost.Mask
	scores   *ScoreBuffers
	oracle   *oracle
	ensemble *lutboost.Ensemble
}

// NewOptimizer validates cfg, builds the frequency mask of data and
// allocates the score buffers. Zero-valued Config fields receive defaults.
//
// Returns ErrInvalidConfig for a bad config and the lutboost precondition
// errors (ErrEmptySource, ErrBinOutOfRange, ErrInvalidWeight) for a bad
// source.
func NewOptimizer(data lutboost.LabeledSource, cfg Config, opts ...Option) (*Optimizer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{data: data, cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	if o.loss == nil {
		l, err := NewLoss(cfg.Loss)
		if err != nil {
			return nil, err
		}
		o.loss = l
	}
	if o.solver == nil {
		s, err := NewSolver(cfg)
		if err != nil {
			return nil, err
		}
		o.solver = s
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	// BuildMask also checks every bin of the source once, so the hot loops
	// below can index LUTs without bounds errors.
	mask, err := lutboost.BuildMask(data, cfg.MaskCutoff, cfg.Workers)
	if err != nil {
		return nil, err
	}
	o.mask = mask

	ns, no := data.Samples(), data.Outputs()
	if no <= 0 {
		return nil, lutboost.ErrEmptySource
	}
	targets := mat.NewDense(ns, no, nil)
	weights := make([]float64, ns)
	for s := 0; s < ns; s++ {
		w := data.Weight(s)
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: sample %d weight %f", lutboost.ErrInvalidWeight, s, w)
		}
		weights[s] = w
		row := targets.RawRowView(s)
		for k := range row {
			row[k] = data.Target(s, k)
		}
	}

	pool := parallel.New(cfg.Workers, cfg.ChunkSize)
	o.scores = NewScoreBuffers(data, cfg.Workers, cfg.ChunkSize)
	o.oracle = newOracle(o.scores, o.loss, targets, weights, pool)
	o.ensemble = lutboost.NewEnsemble(no)

	o.logger.Debug("frequency mask built",
		"features", data.Features(),
		"entries", data.Entries(),
		"samples", ns,
		"cutoff", cfg.MaskCutoff)
	return o, nil
}

// LineSearch calibrates the round's candidate LUTs, one per output.
//
// It buffers the raw candidate responses, minimizes the loss over the
// per-output multipliers starting from zero and applies the acceptance
// policy (see accept). On acceptance every luts[o] is scaled in place by its
// multiplier and a copy is appended to the ensemble. A rejected round leaves
// the committed scores and the ensemble untouched.
//
// The error is non-nil only for invalid candidates (ErrCandidateCount or a
// lutboost precondition error), in which case nothing was modified.
func (o *Optimizer) LineSearch(luts []*lutboost.LUT) (bool, error) {
	if err := o.validate(luts); err != nil {
		return false, err
	}
	start := time.Now()

	o.scores.BufferWeak(luts)
	o.oracle.reset()

	x0 := make([]float64, len(luts))
	sol := o.solver.Minimize(x0, o.oracle.Evaluate)
	ok := accept(sol, len(luts))

	if ok {
		for k, lut := range luts {
			lut.Scale(sol.X[k])
		}
		if err := o.ensemble.Append(luts); err != nil {
			return false, err
		}
	}

	minX, maxX := math.NaN(), math.NaN()
	if len(sol.X) > 0 {
		minX, maxX = floats.Min(sol.X), floats.Max(sol.X)
	}
	o.logger.Info("line-search step",
		"min", minX,
		"max", maxX,
		"status", sol.Status,
		"iterations", sol.Iterations,
		"accepted", ok)
	o.metrics.observe(sol, ok, time.Since(start), o.ensemble.Rounds())

	return ok, nil
}

// accept reports whether a solution for n outputs may be committed: the
// solver must have stopped with an acceptable status on n finite
// multipliers, at least one of which exceeds machine epsilon.
func accept(sol Solution, n int) bool {
	if n == 0 || len(sol.X) != n || !sol.Status.Acceptable() {
		return false
	}
	for _, v := range sol.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return floats.Max(sol.X) > machineEpsilon
}

// Commit adds the responses of the accepted (already scaled) LUTs, one per
// output, to the committed scores.
func (o *Optimizer) Commit(luts []*lutboost.LUT) error {
	if err := o.validate(luts); err != nil {
		return err
	}
	o.scores.Commit(luts)
	o.oracle.reset()
	return nil
}

func (o *Optimizer) validate(luts []*lutboost.LUT) error {
	if len(luts) != o.data.Outputs() {
		return fmt.Errorf("%w: got %d, outputs %d", ErrCandidateCount, len(luts), o.data.Outputs())
	}
	for k, lut := range luts {
		if lut == nil {
			return fmt.Errorf("%w: output %d has no LUT", ErrCandidateCount, k)
		}
		if err := lut.Validate(o.data); err != nil {
			return fmt.Errorf("output %d: %w", k, err)
		}
	}
	return nil
}

// Ensemble returns the accepted ensemble. It grows by one LUT per output
// with every accepted LineSearch.
func (o *Optimizer) Ensemble() *lutboost.Ensemble { return o.ensemble }

// Mask returns the frequency mask built for the training source.
func (o *Optimizer) Mask() *lutboost.Mask { return o.mask }

// Config returns the effective, defaulted configuration.
func (o *Optimizer) Config() Config { return o.cfg }

// Committed returns a copy of the committed scores (samples x outputs).
func (o *Optimizer) Committed() *mat.Dense {
	return mat.DenseCopyOf(o.scores.Committed())
}

// CommittedLoss returns the weighted training loss of the committed scores.
func (o *Optimizer) CommittedLoss() float64 {
	return o.oracle.aggregate(o.scores.committed, nil)
}
