package lutboost

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/viterin/vek"
)

// LUT is a look-up-table weak learner: one discretized feature and a
// response per bin of that feature.
type LUT struct {
	feature int
	entries []float64
}

// Compile-time interface checks.
var (
	_ json.Marshaler   = (*LUT)(nil)
	_ json.Unmarshaler = (*LUT)(nil)
)

// NewLUT creates a LUT on the given feature. The responses are copied.
func NewLUT(feature int, entries []float64) *LUT {
	return &LUT{feature: feature, entries: append([]float64(nil), entries...)}
}

// ZeroLUT creates a LUT on the given feature with n zero responses.
func ZeroLUT(feature, n int) *LUT {
	return &LUT{feature: feature, entries: make([]float64, n)}
}

// Feature returns the index of the feature the LUT is keyed by.
func (l *LUT) Feature() int { return l.feature }

// Len returns the number of bins.
func (l *LUT) Len() int { return len(l.entries) }

// Response returns the response of the given bin.
func (l *LUT) Response(bin int) float64 { return l.entries[bin] }

// Set overwrites the response of the given bin.
func (l *LUT) Set(bin int, v float64) { l.entries[bin] = v }

// Scale multiplies every response by factor in place.
func (l *LUT) Scale(factor float64) {
	vek.MulNumber_Inplace(l.entries, factor)
}

// Entries returns a copy of the responses.
func (l *LUT) Entries() []float64 {
	return append([]float64(nil), l.entries...)
}

// Clone returns a deep copy of the LUT.
func (l *LUT) Clone() *LUT {
	return NewLUT(l.feature, l.entries)
}

// Validate checks the LUT against the shape of src: the feature must exist,
// there must be one response per bin and every response must be finite.
func (l *LUT) Validate(src SampleSource) error {
	if l.feature < 0 || l.feature >= src.Features() {
		return fmt.Errorf("%w: feature %d, features %d", ErrFeatureOutOfRange, l.feature, src.Features())
	}
	if len(l.entries) != src.Entries() {
		return fmt.Errorf("%w: LUT has %d entries, source has %d", ErrShapeMismatch, len(l.entries), src.Entries())
	}
	for u, v := range l.entries {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %d bin %d", ErrNonFiniteResponse, l.feature, u)
		}
	}
	return nil
}

// lutJSON is the serialized form of a LUT.
type lutJSON struct {
	Feature int       `json:"feature"`
	Entries []float64 `json:"entries"`
}

// MarshalJSON implements json.Marshaler.
func (l *LUT) MarshalJSON() ([]byte, error) {
	return json.Marshal(lutJSON{Feature: l.feature, Entries: l.entries})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LUT) UnmarshalJSON(data []byte) error {
	var j lutJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Feature < 0 {
		return fmt.Errorf("%w: feature %d", ErrFeatureOutOfRange, j.Feature)
	}
	l.feature = j.Feature
	l.entries = j.Entries
	if l.entries == nil {
		l.entries = []float64{}
	}
	return nil
}
