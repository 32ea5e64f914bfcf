package lutboost

// SampleSource exposes the discretized training samples a boosting round
// works on. Implementations are read-only for the duration of training.
type SampleSource interface {
	Samples() int
	Features() int
	Outputs() int
	// Entries is the number of discretized bins per feature.
	Entries() int
	// FeatureValue returns the bin of the given feature for the given sample,
	// in [0, Entries()).
	FeatureValue(feature, sample int) int
	// Weight returns the non-negative cost of the sample.
	Weight(sample int) float64
}

// LabeledSource is a SampleSource that also carries per-output targets,
// which loss functions compare the ensemble scores against.
type LabeledSource interface {
	SampleSource
	Target(sample, output int) float64
}
