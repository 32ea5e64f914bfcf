// Package parallel runs data-parallel loops over an index range.
//
// The range [0, n) is cut into fixed-size chunks. Chunk boundaries depend
// only on n and the chunk size, never on the worker count, so callers that
// keep one partial result per chunk and reduce them in chunk order get the
// same answer however the chunks were scheduled.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunk is the chunk size used when none is configured.
const DefaultChunk = 256

// Pool bounds the number of goroutines a loop fans out to.
type Pool struct {
	Workers int
	Chunk   int
}

// New returns a Pool. Non-positive workers default to GOMAXPROCS and a
// non-positive chunk defaults to DefaultChunk.
func New(workers, chunk int) Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	return Pool{Workers: workers, Chunk: chunk}
}

// Chunks returns the number of chunks [0, n) is split into.
func (p Pool) Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.Chunk - 1) / p.Chunk
}

// For calls fn once per chunk and waits for all of them. fn receives the
// chunk number and the half-open index range [lo, hi) of the chunk.
// Two calls never share an index, so fn may write any state keyed by its
// indices without locking.
func (p Pool) For(n int, fn func(chunk, lo, hi int)) {
	_ = p.TryFor(n, func(chunk, lo, hi int) error {
		fn(chunk, lo, hi)
		return nil
	})
}

// TryFor is For with a fallible body. It returns the first error any chunk
// reported, after every started chunk has finished.
func (p Pool) TryFor(n int, fn func(chunk, lo, hi int) error) error {
	chunks := p.Chunks(n)
	if chunks == 1 || p.Workers == 1 {
		for c := 0; c < chunks; c++ {
			lo, hi := p.bounds(c, n)
			if err := fn(c, lo, hi); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(p.Workers)
	for c := 0; c < chunks; c++ {
		lo, hi := p.bounds(c, n)
		g.Go(func() error {
			return fn(c, lo, hi)
		})
	}
	return g.Wait()
}

func (p Pool) bounds(chunk, n int) (int, int) {
	lo := chunk * p.Chunk
	return lo, min(lo+p.Chunk, n)
}
