// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jcodagnone/basketopt/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trap is a set cover instance where greedy takes the wide middle set first
// and ends up one set worse than the optimum {1, 2}.
var trap = []Candidate{
	{Center: 0, Members: []int{0, 1, 3, 4}},
	{Center: 1, Members: []int{0, 1, 2}},
	{Center: 2, Members: []int{3, 4, 5}},
}

// recoverInvariant runs f and returns the *InvariantError it panicked with.
func recoverInvariant(t *testing.T, f func()) *InvariantError {
	t.Helper()

	var got any

	func() {
		defer func() { got = recover() }()
		f()
	}()

	ie, ok := got.(*InvariantError)
	require.True(t, ok, "expected *InvariantError panic, got %v", got)

	return ie
}

func TestGreedySolver(t *testing.T) {
	cover, err := GreedySolver{}.Solve(context.Background(), 6, trap)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, cover.Selected)
	assert.Equal(t, MethodGreedy, cover.Method)
	assert.False(t, cover.Optimal)
}

func TestGreedySolverTieBreaksOnLowestCenter(t *testing.T) {
	candidates := []Candidate{
		{Center: 3, Members: []int{2, 3}},
		{Center: 1, Members: []int{0, 1}},
		{Center: 2, Members: []int{1, 2}},
		{Center: 0, Members: []int{0, 1}},
	}

	got := greedyCover(4, candidates)

	// Center 0 wins the first round among three candidates of gain two,
	// then center 3 is the only one left with gain two.
	assert.Equal(t, []int{3, 0}, got)
}

func TestExactSolver(t *testing.T) {
	cover, err := ExactSolver{}.Solve(context.Background(), 6, trap)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, cover.Selected)
	assert.Equal(t, MethodExact, cover.Method)
	assert.True(t, cover.Optimal)
}

func TestExactSolverEmpty(t *testing.T) {
	cover, err := ExactSolver{}.Solve(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, cover.Selected)
	assert.True(t, cover.Optimal)
}

func TestExactSolverIndependentComponents(t *testing.T) {
	// Two copies of the trap, shifted apart, plus an isolated point.
	var candidates []Candidate
	for _, offset := range []int{0, 6} {
		for _, c := range trap {
			members := make([]int, len(c.Members))
			for i, m := range c.Members {
				members[i] = m + offset
			}

			candidates = append(candidates, Candidate{Center: c.Center + offset, Members: members})
		}
	}

	candidates = append(candidates, Candidate{Center: 12, Members: []int{12}})

	cover, err := ExactSolver{}.Solve(context.Background(), 13, candidates)
	require.NoError(t, err)
	assert.Len(t, cover.Selected, 5)
}

func TestExactNeverWorseThanGreedy(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		points := randomPoints(seed, spatial.Point{Lat: 41.05, Lng: 29.0}, 0.012, 45)

		candidates, err := GenerateCandidates(context.Background(), points, 0.35, CandidateOptions{})
		require.NoError(t, err)

		exact, err := ExactSolver{Budget: 20 * time.Second}.Solve(context.Background(), len(points), candidates)
		require.NoError(t, err)
		require.True(t, exact.Optimal)

		greedy, err := GreedySolver{}.Solve(context.Background(), len(points), candidates)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(exact.Selected), len(greedy.Selected), "seed %d", seed)

		bound := GreedyBound(MaxCandidateSize(candidates)) * float64(len(exact.Selected))
		assert.LessOrEqual(t, float64(len(greedy.Selected)), bound, "seed %d", seed)

		again, err := ExactSolver{Budget: 20 * time.Second}.Solve(context.Background(), len(points), candidates)
		require.NoError(t, err)
		assert.Len(t, again.Selected, len(exact.Selected), "seed %d", seed)
	}
}

func TestExactSolverBudget(t *testing.T) {
	points := randomPoints(9, newYork, 0.02, 400)

	candidates, err := GenerateCandidates(context.Background(), points, 0.4, CandidateOptions{})
	require.NoError(t, err)

	_, err = ExactSolver{Budget: time.Nanosecond}.Solve(context.Background(), len(points), candidates)
	assert.ErrorIs(t, err, ErrSolverBudget)
}

func TestExactSolverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExactSolver{}.Solve(ctx, 6, trap)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSolverBudget)
}

type failingSolver struct{ err error }

func (s failingSolver) Solve(context.Context, int, []Candidate) (Cover, error) {
	return Cover{}, s.err
}

func TestFallbackSolver(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		s := FallbackSolver{Primary: ExactSolver{}, Secondary: GreedySolver{}}

		cover, err := s.Solve(context.Background(), 6, trap)
		require.NoError(t, err)
		assert.Equal(t, MethodExact, cover.Method)
	})

	t.Run("primary fails", func(t *testing.T) {
		s := FallbackSolver{Primary: failingSolver{ErrSolverBudget}, Secondary: GreedySolver{}}

		cover, err := s.Solve(context.Background(), 6, trap)
		require.NoError(t, err)
		assert.Equal(t, MethodGreedy, cover.Method)
		assert.Len(t, cover.Selected, 3)
	})

	t.Run("no primary", func(t *testing.T) {
		cover, err := FallbackSolver{Secondary: GreedySolver{}}.Solve(context.Background(), 6, trap)
		require.NoError(t, err)
		assert.Equal(t, MethodGreedy, cover.Method)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := FallbackSolver{Primary: failingSolver{context.Canceled}, Secondary: GreedySolver{}}

		_, err := s.Solve(ctx, 6, trap)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSolversPanicOnUncoverablePoint(t *testing.T) {
	candidates := []Candidate{{Center: 0, Members: []int{0, 1}}}

	ie := recoverInvariant(t, func() { _, _ = GreedySolver{}.Solve(context.Background(), 3, candidates) })
	assert.Equal(t, 2, ie.Point)

	ie = recoverInvariant(t, func() { _, _ = ExactSolver{}.Solve(context.Background(), 3, candidates) })
	assert.Equal(t, 2, ie.Point)

	ie = recoverInvariant(t, func() {
		_, _ = ExactSolver{}.Solve(context.Background(), 1, candidates)
	})
	assert.Equal(t, 1, ie.Point)
	assert.Contains(t, ie.Error(), "out of range")
}

func TestReduceCandidates(t *testing.T) {
	candidates := []Candidate{
		{Center: 0, Members: []int{0, 1}},
		{Center: 1, Members: []int{0, 1, 2}},
		{Center: 2, Members: []int{0, 1, 2}},
		{Center: 3, Members: []int{3}},
		{Center: 4, Members: nil},
		{Center: 5, Members: []int{2, 3}},
	}

	// 0 is inside 1, 2 repeats 1, 3 is inside 5, 4 is empty.
	assert.Equal(t, []int{1, 5}, reduceCandidates(candidates))
}

func TestIsSubset(t *testing.T) {
	assert.True(t, isSubset([]int{1, 3}, []int{0, 1, 2, 3}))
	assert.True(t, isSubset(nil, []int{1}))
	assert.False(t, isSubset([]int{1, 4}, []int{0, 1, 2, 3}))
	assert.False(t, isSubset([]int{1, 1}, []int{1}))
}

func TestGreedyBound(t *testing.T) {
	assert.Zero(t, GreedyBound(0))
	assert.Equal(t, 1.0, GreedyBound(1))
	assert.InDelta(t, 1.5, GreedyBound(2), 1e-12)
	assert.InDelta(t, 25.0/12, GreedyBound(4), 1e-12)
	assert.InDelta(t, math.Log(1000)+0.5772, GreedyBound(1000), 1e-3)
}
