// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jcodagnone/basketopt/spatial"
)

// Epsilon is the tolerance added to every radius comparison so that points
// lying exactly on the boundary are included.
const Epsilon = 1e-9

// cancelCheckEvery is how many centers a worker processes between context
// checks.
const cancelCheckEvery = 256

// Candidate is a potential basket: every point within the radius of the
// point at Center. Members is sorted ascending and always contains Center.
type Candidate struct {
	Center  int
	Members []int
}

// CandidateOptions tunes GenerateCandidates.
type CandidateOptions struct {
	// Index selects the spatial index. The zero value is the k-d tree.
	Index spatial.IndexKind
	// Workers is the number of goroutines. Zero means runtime.NumCPU().
	Workers int
}

// GenerateCandidates returns one candidate per point, in point order. The
// spatial index only narrows the search; membership is decided by the exact
// distance.
func GenerateCandidates(
	ctx context.Context,
	points []spatial.Point,
	radiusKm float64,
	opts CandidateOptions,
) ([]Candidate, error) {
	if err := checkRadius(radiusKm); err != nil {
		return nil, err
	}

	n := len(points)
	if n == 0 {
		return []Candidate{}, nil
	}

	index, err := spatial.NewIndexForRadius(opts.Index, points, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("building spatial index: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	out := make([]Candidate, n)
	errs := make([]error, workers)

	var wg sync.WaitGroup

	for w := range workers {
		lo := w * chunk
		hi := min(lo+chunk, n)

		if lo >= hi {
			break
		}

		wg.Add(1)

		go func(w, lo, hi int) {
			defer wg.Done()

			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						errs[w] = err

						return
					}
				}

				out[i] = candidateAt(points, index, i, radiusKm)
			}
		}(w, lo, hi)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("generating candidates: %w", err)
		}
	}

	return out, nil
}

func candidateAt(points []spatial.Point, index spatial.Index, i int, radiusKm float64) Candidate {
	center := points[i]
	limit := radiusKm + Epsilon

	hits := index.Query(center, radiusKm)
	members := make([]int, 0, len(hits))

	for _, j := range hits {
		if spatial.Distance(center, points[j]) <= limit {
			members = append(members, j)
		}
	}

	return Candidate{Center: i, Members: members}
}

// BruteForceCandidates computes the same result as GenerateCandidates with an
// all-pairs scan. It is the reference the indexed path is checked against.
func BruteForceCandidates(points []spatial.Point, radiusKm float64) []Candidate {
	limit := radiusKm + Epsilon
	out := make([]Candidate, len(points))

	for i, center := range points {
		var members []int

		for j, p := range points {
			if spatial.Distance(center, p) <= limit {
				members = append(members, j)
			}
		}

		out[i] = Candidate{Center: i, Members: members}
	}

	return out
}
