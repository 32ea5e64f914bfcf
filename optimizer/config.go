package optimizer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/sky-flux/lutboost"
	"github.com/sky-flux/lutboost/internal/parallel"
)

// ErrInvalidConfig is returned when a Config field is out of range.
var ErrInvalidConfig = errors.New("optimizer: invalid config")

// Config configures an Optimizer.
// Zero values are replaced with defaults; see field comments.
type Config struct {
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`   // default 20
	MaxLineSearch int     `json:"max_line_search" yaml:"max_line_search"` // default 40, evaluations per iteration
	Store         int     `json:"store" yaml:"store"`                     // default 6, L-BFGS correction pairs
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`             // default 1e-40, gradient norm stop
	StepTolerance float64 `json:"step_tolerance" yaml:"step_tolerance"`   // default 1e-40, minimum step
	MaxStep       float64 `json:"max_step" yaml:"max_step"`               // default 1e20
	MaskCutoff    float64 `json:"mask_cutoff" yaml:"mask_cutoff"`         // default 0.90
	Loss          string  `json:"loss" yaml:"loss"`                       // default "logistic"
	Solver        string  `json:"solver" yaml:"solver"`                   // default "lbfgs"
	LearningRate  float64 `json:"learning_rate" yaml:"learning_rate"`     // default 0.1, adam only
	Workers       int     `json:"workers" yaml:"workers"`                 // default GOMAXPROCS
	ChunkSize     int     `json:"chunk_size" yaml:"chunk_size"`           // default 256 samples
}

// DefaultConfig returns the Config every zero field falls back to.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MaxIterations == 0 {
		c.MaxIterations = 20
	}
	if c.MaxLineSearch == 0 {
		c.MaxLineSearch = 40
	}
	if c.Store == 0 {
		c.Store = 6
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-40
	}
	if c.StepTolerance == 0 {
		c.StepTolerance = 1e-40
	}
	if c.MaxStep == 0 {
		c.MaxStep = 1e20
	}
	if c.MaskCutoff == 0 {
		c.MaskCutoff = lutboost.DefaultMaskCutoff
	}
	if c.Loss == "" {
		c.Loss = "logistic"
	}
	if c.Solver == "" {
		c.Solver = "lbfgs"
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.1
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = parallel.DefaultChunk
	}
	return c
}

// Validate checks every field of a defaulted Config.
func (c Config) Validate() error {
	switch {
	case c.MaxIterations < 1:
		return fmt.Errorf("%w: max_iterations %d must be positive", ErrInvalidConfig, c.MaxIterations)
	case c.MaxLineSearch < 1:
		return fmt.Errorf("%w: max_line_search %d must be positive", ErrInvalidConfig, c.MaxLineSearch)
	case c.Store < 1:
		return fmt.Errorf("%w: store %d must be positive", ErrInvalidConfig, c.Store)
	case !(c.Tolerance > 0):
		return fmt.Errorf("%w: tolerance %g must be positive", ErrInvalidConfig, c.Tolerance)
	case !(c.StepTolerance > 0):
		return fmt.Errorf("%w: step_tolerance %g must be positive", ErrInvalidConfig, c.StepTolerance)
	case !(c.MaxStep > c.StepTolerance):
		return fmt.Errorf("%w: max_step %g must exceed step_tolerance %g", ErrInvalidConfig, c.MaxStep, c.StepTolerance)
	case !(c.MaskCutoff > 0 && c.MaskCutoff <= 1):
		return fmt.Errorf("%w: mask_cutoff %g out of range (0, 1]", ErrInvalidConfig, c.MaskCutoff)
	case !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 1):
		return fmt.Errorf("%w: learning_rate %g must be positive", ErrInvalidConfig, c.LearningRate)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d must be positive", ErrInvalidConfig, c.Workers)
	case c.ChunkSize < 1:
		return fmt.Errorf("%w: chunk_size %d must be positive", ErrInvalidConfig, c.ChunkSize)
	}
	if _, err := NewLoss(c.Loss); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, ok := solvers[c.Solver]; !ok {
		return fmt.Errorf("%w: unknown solver %q", ErrInvalidConfig, c.Solver)
	}
	return nil
}

var solvers = map[string]func(Config) Solver{
	"lbfgs": func(c Config) Solver { return NewLBFGS(c) },
	"adam":  func(c Config) Solver { return NewAdam(c) },
}

// NewSolver returns the Solver named by cfg.Solver.
func NewSolver(cfg Config) (Solver, error) {
	cfg = cfg.withDefaults()
	mk, ok := solvers[cfg.Solver]
	if !ok {
		return nil, fmt.Errorf("%w: unknown solver %q", ErrInvalidConfig, cfg.Solver)
	}
	return mk(cfg), nil
}

// LoadConfig decodes a YAML Config from r, fills defaults and validates it.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
