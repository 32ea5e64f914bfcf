package optimizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownLoss is returned by NewLoss for an unregistered loss name.
var ErrUnknownLoss = errors.New("optimizer: unknown loss")

// Loss is the per-sample loss of a multi-output score vector.
//
// Eval returns the loss of scores against targets and writes the partial
// derivative of that loss with respect to each score into grad. All three
// slices have one element per output. Eval must be deterministic and must
// not retain the slices.
type Loss interface {
	Eval(targets, scores, grad []float64) float64
}

// SquaredLoss is ½·Σ(s−t)².
type SquaredLoss struct{}

func (SquaredLoss) Eval(targets, scores, grad []float64) float64 {
	var sum float64
	for o, t := range targets {
		d := scores[o] - t
		sum += 0.5 * d * d
		grad[o] = d
	}
	return sum
}

// LogisticLoss is Σ log(1 + e^(−t·s)) for targets in {−1, +1}.
type LogisticLoss struct{}

func (LogisticLoss) Eval(targets, scores, grad []float64) float64 {
	var sum float64
	for o, t := range targets {
		m := t * scores[o]
		sum += softplus(-m)
		grad[o] = -t * sigmoid(-m)
	}
	return sum
}

// ExponentialLoss is Σ e^(−t·s) for targets in {−1, +1}.
type ExponentialLoss struct{}

func (ExponentialLoss) Eval(targets, scores, grad []float64) float64 {
	var sum float64
	for o, t := range targets {
		e := math.Exp(-t * scores[o])
		sum += e
		grad[o] = -t * e
	}
	return sum
}

// softplus computes log(1 + e^z) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// sigmoid computes 1 / (1 + e^(−z)) without overflow.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

var losses = map[string]func() Loss{
	"squared":     func() Loss { return SquaredLoss{} },
	"logistic":    func() Loss { return LogisticLoss{} },
	"exponential": func() Loss { return ExponentialLoss{} },
}

// LossNames returns the registered loss names in sorted order.
func LossNames() []string {
	names := make([]string, 0, len(losses))
	for name := range losses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLoss returns the registered loss with the given name.
func NewLoss(name string) (Loss, error) {
	mk, ok := losses[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoss, name)
	}
	return mk(), nil
}
