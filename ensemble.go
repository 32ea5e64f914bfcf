package lutboost

import (
	"encoding/json"
	"fmt"
)

// Ensemble is the per-output, append-only sequence of accepted LUTs.
// Every Append adds exactly one LUT per output, so all outputs always hold
// the same number of rounds.
type Ensemble struct {
	outputs [][]*LUT
}

// NewEnsemble creates an empty ensemble for the given number of outputs.
func NewEnsemble(outputs int) *Ensemble {
	return &Ensemble{outputs: make([][]*LUT, outputs)}
}

// Outputs returns the number of outputs.
func (e *Ensemble) Outputs() int { return len(e.outputs) }

// Rounds returns the number of accepted rounds.
func (e *Ensemble) Rounds() int {
	if len(e.outputs) == 0 {
		return 0
	}
	return len(e.outputs[0])
}

// LUTs returns copies of the accepted LUTs of output o, oldest first.
func (e *Ensemble) LUTs(o int) []*LUT {
	out := make([]*LUT, len(e.outputs[o]))
	for i, l := range e.outputs[o] {
		out[i] = l.Clone()
	}
	return out
}

// Append stores a copy of luts[o] at the end of output o's sequence.
// Returns ErrShapeMismatch unless there is exactly one LUT per output.
func (e *Ensemble) Append(luts []*LUT) error {
	if len(luts) != len(e.outputs) {
		return fmt.Errorf("%w: %d LUTs for %d outputs", ErrShapeMismatch, len(luts), len(e.outputs))
	}
	for o, l := range luts {
		e.outputs[o] = append(e.outputs[o], l.Clone())
	}
	return nil
}

// Score writes the ensemble output of sample s into out, which must have one
// element per output. It is the sum of the responses of every accepted LUT.
func (e *Ensemble) Score(src SampleSource, s int, out []float64) {
	for o, luts := range e.outputs {
		sum := 0.0
		for _, l := range luts {
			sum += l.Response(src.FeatureValue(l.feature, s))
		}
		out[o] = sum
	}
}

// MarshalJSON implements json.Marshaler. The ensemble serializes as an array
// of per-output LUT arrays.
func (e *Ensemble) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.outputs)
}
