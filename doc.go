// Package lutboost provides the building blocks of a multi-output boosting
// ensemble of look-up-table (LUT) weak learners.
//
// The root package holds the domain types: a [SampleSource] of discretized
// feature values and sample weights, the [LUT] weak learner, the frequency
// [Mask] that marks which discretized bins of every feature carry enough
// sample weight to be trusted, and the append-only [Ensemble] of accepted
// LUTs. The per-round calibration engine (score buffers, loss oracle and the
// L-BFGS line search) lives in the lutboost/optimizer subpackage.
//
// Basic usage:
//
//	data, err := lutboost.NewDataset(entries, values, weights, targets)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mask, err := lutboost.BuildMask(data, 0.90, 0)
//	lut := lutboost.NewLUT(3, responses)
//	mask.Apply(lut)
package lutboost
