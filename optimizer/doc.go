// Package optimizer calibrates boosting rounds of lookup-table ensembles.
//
// Each round proposes one [lutboost.LUT] per output. The [Optimizer] scores
// them against the training source, finds per-output multipliers that
// minimize the weighted loss of the committed scores plus the scaled
// candidates, and decides whether the round may be committed:
//
//   - [Optimizer.LineSearch] buffers the candidate responses, runs the
//     configured [Solver] from zero and applies the acceptance policy.
//     Accepted LUTs are scaled in place and appended to the ensemble.
//
//   - [Optimizer.Commit] folds accepted LUTs into the committed scores.
//
// The default solver is L-BFGS with a Moré-Thuente line search ([LBFGS],
// backed by gonum). [Adam] is a first-order alternative. Losses are chosen by
// name from a small registry ([NewLoss]) or supplied with [WithLoss].
//
// # Usage
//
//	opt, err := optimizer.NewOptimizer(data, optimizer.Config{Loss: "logistic"})
//	ok, err := opt.LineSearch(luts)
//	if ok {
//		err = opt.Commit(luts)
//	}
//
// # Acceptance
//
// A round is accepted when the solver stops with an acceptable [Status], all
// multipliers are finite and the largest exceeds machine epsilon. A rejected
// round leaves the committed scores and the ensemble untouched.
package optimizer
