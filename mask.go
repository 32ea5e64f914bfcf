package lutboost

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sky-flux/lutboost/internal/parallel"
)

// DefaultMaskCutoff is the fraction of a feature's total sample weight the
// trusted bins must cover.
const DefaultMaskCutoff = 0.90

// Mask marks, per feature, the bins whose sample weight is high enough for a
// LUT response on them to be trusted. It is immutable once built.
type Mask struct {
	trusted *mat.Dense // features x entries, 0 or 1
}

type binWeight struct {
	bin    int
	weight float64
}

// BuildMask computes the frequency mask of src.
//
// For every feature the bins are ranked by total sample weight, heaviest
// first (equal weights keep ascending bin order), and the shortest prefix
// whose cumulative weight reaches cutoff times the feature's total weight is
// trusted. A feature with zero total weight trusts no bin. Features are
// processed in parallel on up to workers goroutines (GOMAXPROCS when
// workers <= 0).
//
// Returns ErrEmptySource for a source without samples, features or entries
// and ErrBinOutOfRange when the source reports a bin outside [0, Entries()).
func BuildMask(src SampleSource, cutoff float64, workers int) (*Mask, error) {
	nf, ne, ns := src.Features(), src.Entries(), src.Samples()
	if nf <= 0 || ne <= 0 || ns <= 0 {
		return nil, ErrEmptySource
	}

	trusted := mat.NewDense(nf, ne, nil)
	pool := parallel.New(workers, 1)

	err := pool.TryFor(nf, func(_, lo, hi int) error {
		counts := make([]float64, ne)
		stats := make([]binWeight, ne)

		for f := lo; f < hi; f++ {
			clear(counts)
			for s := 0; s < ns; s++ {
				u := src.FeatureValue(f, s)
				if u < 0 || u >= ne {
					return fmt.Errorf("%w: feature %d sample %d bin %d, entries %d",
						ErrBinOutOfRange, f, s, u, ne)
				}
				counts[u] += src.Weight(s)
			}
			thres := cutoff * floats.Sum(counts)

			for u := range stats {
				stats[u] = binWeight{bin: u, weight: counts[u]}
			}
			slices.SortStableFunc(stats, func(a, b binWeight) int {
				return cmp.Compare(b.weight, a.weight)
			})

			row := trusted.RawRowView(f)
			sum := 0.0
			for i := 0; i < ne && sum < thres; i++ {
				row[stats[i].bin] = 1
				sum += stats[i].weight
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Mask{trusted: trusted}, nil
}

// Features returns the number of features covered by the mask.
func (m *Mask) Features() int {
	r, _ := m.trusted.Dims()
	return r
}

// Entries returns the number of bins per feature.
func (m *Mask) Entries() int {
	_, c := m.trusted.Dims()
	return c
}

// Trusted reports whether bin u of feature f is trusted.
func (m *Mask) Trusted(f, u int) bool {
	return m.trusted.At(f, u) != 0
}

// Weight returns the 0/1 mask weight of bin u of feature f.
func (m *Mask) Weight(f, u int) float64 {
	return m.trusted.At(f, u)
}

// TrustedCount returns how many bins of feature f are trusted.
func (m *Mask) TrustedCount(f int) int {
	return int(floats.Sum(m.trusted.RawRowView(f)))
}

// Equal reports whether both masks trust exactly the same bins.
func (m *Mask) Equal(other *Mask) bool {
	return mat.Equal(m.trusted, other.trusted)
}

// Apply fixes the responses of lut on untrusted bins of its feature to zero.
// The LUT must be keyed by a feature of the mask.
func (m *Mask) Apply(lut *LUT) {
	row := m.trusted.RawRowView(lut.feature)
	for u := range min(len(row), len(lut.entries)) {
		if row[u] == 0 {
			lut.entries[u] = 0
		}
	}
}
