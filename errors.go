package lutboost

import "errors"

// Sentinel errors for the lutboost package. All of them report a broken
// precondition of a sample source or weak learner.
// Use errors.Is to check: errors.Is(err, lutboost.ErrBinOutOfRange)
var (
	ErrEmptySource       = errors.New("lutboost: empty sample source")
	ErrShapeMismatch     = errors.New("lutboost: shape mismatch")
	ErrBinOutOfRange     = errors.New("lutboost: bin index out of range")
	ErrFeatureOutOfRange = errors.New("lutboost: feature index out of range")
	ErrInvalidWeight     = errors.New("lutboost: invalid sample weight")
	ErrNonFiniteResponse = errors.New("lutboost: non-finite LUT response")
)
