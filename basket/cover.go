// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"context"
	"log"
	"slices"
)

// SolverMethod names the algorithm that produced a Cover.
type SolverMethod string

const (
	MethodExact  SolverMethod = "exact"
	MethodGreedy SolverMethod = "greedy"
)

// Cover is a selection of candidates whose members together include every
// point. Selected holds positions in the candidate slice given to the solver,
// ordered by ascending candidate center.
type Cover struct {
	Selected []int
	Method   SolverMethod
	// Optimal is set when the selection is proven to be of minimum size.
	Optimal bool
}

// Solver picks a set of candidates covering the points 0..n-1.
type Solver interface {
	Solve(ctx context.Context, n int, candidates []Candidate) (Cover, error)
}

// FallbackSolver runs Primary and, when it fails for any reason other than
// cancellation of ctx, runs Secondary instead.
type FallbackSolver struct {
	Primary   Solver
	Secondary Solver
}

func (s FallbackSolver) Solve(ctx context.Context, n int, candidates []Candidate) (Cover, error) {
	if s.Primary == nil {
		return s.Secondary.Solve(ctx, n, candidates)
	}

	cover, err := s.Primary.Solve(ctx, n, candidates)
	if err == nil {
		return cover, nil
	}

	if ctx.Err() != nil {
		return Cover{}, err
	}

	log.Printf("Primary cover solver failed, falling back - %v", err)

	return s.Secondary.Solve(ctx, n, candidates)
}

// GreedyBound returns H(k), the k-th harmonic number. A greedy cover built
// from candidates of at most k members is never more than H(k) times larger
// than an optimal one.
func GreedyBound(k int) float64 {
	h := 0.0
	for i := 1; i <= k; i++ {
		h += 1 / float64(i)
	}

	return h
}

// MaxCandidateSize returns the size of the largest candidate.
func MaxCandidateSize(candidates []Candidate) int {
	k := 0
	for _, c := range candidates {
		k = max(k, len(c.Members))
	}

	return k
}

// sortByCenter orders candidate positions by ascending center, then position.
func sortByCenter(candidates []Candidate, selected []int) {
	slices.SortFunc(selected, func(a, b int) int {
		if d := candidates[a].Center - candidates[b].Center; d != 0 {
			return d
		}

		return a - b
	})
}

// verifyCover panics with an *InvariantError unless selected covers every
// point in 0..n-1.
func verifyCover(op string, n int, candidates []Candidate, selected []int) {
	covered := make([]bool, n)

	for _, pos := range selected {
		if pos < 0 || pos >= len(candidates) {
			panic(&InvariantError{Op: op, Point: -1, Detail: "selected candidate out of range"})
		}

		for _, m := range candidates[pos].Members {
			if m < 0 || m >= n {
				panic(&InvariantError{Op: op, Point: m, Detail: "member out of range"})
			}

			covered[m] = true
		}
	}

	if i := slices.Index(covered, false); i >= 0 {
		panic(&InvariantError{Op: op, Point: i, Detail: "point not covered"})
	}
}
