// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcodagnone/basketopt/spatial"
)

// Strategy selects how points are grouped into baskets.
type Strategy string

const (
	// StrategyOptimalCover keeps every member within the radius of a
	// designated order and minimizes the number of baskets.
	StrategyOptimalCover Strategy = "optimal-cover"
	// StrategyDiameterGreedy keeps every pair of members within twice the
	// radius, sweeping by coordinate.
	StrategyDiameterGreedy Strategy = "diameter-greedy"
	// StrategyDensityCluster groups orders linked by chains of neighbors
	// within the radius.
	StrategyDensityCluster Strategy = "density-cluster"
)

// Strategies lists every strategy, default first.
var Strategies = []Strategy{StrategyOptimalCover, StrategyDiameterGreedy, StrategyDensityCluster}

// ParseStrategy maps a user supplied name to a Strategy. Matching ignores case
// and accepts underscores for dashes. The empty string selects
// StrategyOptimalCover.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if s == "" {
		return StrategyOptimalCover, nil
	}

	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// DefaultRadius is the radius in kilometers used when none is configured.
func (s Strategy) DefaultRadius() float64 {
	if s == StrategyDiameterGreedy {
		return 1.0
	}

	return 0.5
}

// Options configures Allocate. The zero value allocates with the optimal
// cover strategy, its default radius and the k-d tree.
type Options struct {
	Strategy Strategy
	// RadiusKm zero means the strategy's default radius.
	RadiusKm float64
	Index    spatial.IndexKind
	Workers  int
	// SolverBudget bounds the exact solver; zero means DefaultSolverBudget.
	SolverBudget time.Duration
	// DisableExact skips the exact solver and covers greedily.
	DisableExact bool
	// Solver replaces the cover solver built from the fields above.
	Solver Solver
}

func (o Options) solver() Solver {
	switch {
	case o.Solver != nil:
		return o.Solver
	case o.DisableExact:
		return GreedySolver{}
	default:
		return FallbackSolver{
			Primary:   ExactSolver{Budget: o.SolverBudget},
			Secondary: GreedySolver{},
		}
	}
}

// Allocation is the result of Allocate. Only Baskets is meant for clients;
// the other fields are diagnostics.
type Allocation struct {
	Baskets  []Basket
	Strategy Strategy
	RadiusKm float64
	// Solver is the cover algorithm that ran, empty for strategies that do
	// not solve a cover.
	Solver  SolverMethod
	Optimal bool
	// Candidates is the number of candidate baskets handed to the cover
	// solver, zero for strategies that do not solve a cover.
	Candidates int
	Elapsed    time.Duration
}

// Allocate groups points into baskets. Every point ends up in exactly one
// basket, and every basket contains its members within its radius.
func Allocate(ctx context.Context, points []spatial.Point, opts Options) (*Allocation, error) {
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}

	radius := opts.RadiusKm
	if radius == 0 {
		radius = strategy.DefaultRadius()
	}

	if err := checkRadius(radius); err != nil {
		return nil, err
	}

	start := time.Now()
	a := &Allocation{
		Baskets:  []Basket{},
		Strategy: strategy,
		RadiusKm: radius,
	}

	if len(points) > 0 {
		candidateOpts := CandidateOptions{Index: opts.Index, Workers: opts.Workers}

		switch strategy {
		case StrategyOptimalCover:
			err = a.cover(ctx, points, radius, candidateOpts, opts.solver())
		case StrategyDiameterGreedy:
			err = a.sweep(ctx, points, radius, opts.Index)
		case StrategyDensityCluster:
			err = a.cluster(ctx, points, radius, candidateOpts)
		}

		if err != nil {
			return nil, fmt.Errorf("allocating %d points with %s: %w", len(points), strategy, err)
		}

		verifyPartition(string(strategy), len(points), a.Baskets)
	}

	a.Elapsed = time.Since(start)

	return a, nil
}

func (a *Allocation) cover(
	ctx context.Context,
	points []spatial.Point,
	radius float64,
	opts CandidateOptions,
	solver Solver,
) error {
	candidates, err := GenerateCandidates(ctx, points, radius, opts)
	if err != nil {
		return err
	}

	result, err := solver.Solve(ctx, len(points), candidates)
	if err != nil {
		return fmt.Errorf("solving cover: %w", err)
	}

	for _, g := range Resolve(len(points), candidates, result.Selected) {
		a.Baskets = append(a.Baskets, FixedRadius(points, g, radius))
	}

	a.Solver = result.Method
	a.Optimal = result.Optimal
	a.Candidates = len(candidates)

	return nil
}

func (a *Allocation) sweep(ctx context.Context, points []spatial.Point, radius float64, kind spatial.IndexKind) error {
	groups, err := DiameterGroups(ctx, points, radius, kind)
	if err != nil {
		return err
	}

	for _, g := range groups {
		a.Baskets = append(a.Baskets, Centroid(points, g))
	}

	return nil
}

func (a *Allocation) cluster(ctx context.Context, points []spatial.Point, radius float64, opts CandidateOptions) error {
	groups, err := DensityGroups(ctx, points, radius, opts)
	if err != nil {
		return err
	}

	for _, g := range groups {
		a.Baskets = append(a.Baskets, Centroid(points, g))
	}

	return nil
}

// verifyPartition panics with an *InvariantError unless every point index
// appears in exactly one basket.
func verifyPartition(op string, n int, baskets []Basket) {
	seen := make([]bool, n)

	for _, b := range baskets {
		for _, i := range b.Indices {
			if i < 0 || i >= n {
				panic(&InvariantError{Op: op, Point: i, Detail: "basket member out of range"})
			}

			if seen[i] {
				panic(&InvariantError{Op: op, Point: i, Detail: "point in more than one basket"})
			}

			seen[i] = true
		}
	}

	for i, ok := range seen {
		if !ok {
			panic(&InvariantError{Op: op, Point: i, Detail: "point in no basket"})
		}
	}
}
