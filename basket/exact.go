// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"
)

// DefaultSolverBudget bounds ExactSolver when no budget is configured.
const DefaultSolverBudget = 2 * time.Second

// deadlineMask makes the search look at the clock once every 4096 nodes.
const deadlineMask = 4095

// ExactSolver finds a minimum cover by branch and bound over the 0/1
// program "one variable per candidate, every point covered at least once,
// minimize the number of variables set".
//
// The instance is first reduced: identical candidates are merged (the lowest
// center survives) and candidates whose members are a strict subset of
// another candidate's are dropped, neither of which changes the optimum.
// The points then split into independent components that are searched one
// at a time. Each search starts from the greedy cover as its upper bound,
// branches on the uncovered point with the fewest usable candidates and
// prunes with the larger of two lower bounds:
//
//	ceil(uncovered / best remaining gain)
//	number of uncovered points whose usable candidates are pairwise disjoint
//
// When Budget elapses the solver gives up with ErrSolverBudget.
type ExactSolver struct {
	Budget time.Duration
}

func (s ExactSolver) Solve(ctx context.Context, n int, candidates []Candidate) (Cover, error) {
	budget := s.Budget
	if budget <= 0 {
		budget = DefaultSolverBudget
	}

	checkMembers("exact cover", n, candidates)

	clock := &searchClock{ctx: ctx, deadline: time.Now().Add(budget)}
	local := make([]int, n)
	selected := []int{}

	for _, comp := range components(n, candidates, reduceCandidates(candidates)) {
		if clock.expired() {
			return Cover{}, clock.err(budget)
		}

		picked := solveComponent(clock, candidates, comp, local)
		if clock.aborted {
			return Cover{}, clock.err(budget)
		}

		selected = append(selected, picked...)
	}

	verifyCover("exact cover", n, candidates, selected)
	sortByCenter(candidates, selected)

	return Cover{Selected: selected, Method: MethodExact, Optimal: true}, nil
}

// searchClock carries the budget shared by every component search.
type searchClock struct {
	ctx      context.Context
	deadline time.Time
	steps    int
	aborted  bool
}

// tick counts one search node and reports whether the search must stop.
func (c *searchClock) tick() bool {
	if c.aborted {
		return true
	}

	c.steps++
	if c.steps&deadlineMask != 0 {
		return false
	}

	return c.expired()
}

func (c *searchClock) expired() bool {
	if c.ctx.Err() != nil || time.Now().After(c.deadline) {
		c.aborted = true
	}

	return c.aborted
}

func (c *searchClock) err(budget time.Duration) error {
	if err := c.ctx.Err(); err != nil {
		return fmt.Errorf("solving exact cover: %w", err)
	}

	return fmt.Errorf("%w after %s (%d nodes)", ErrSolverBudget, budget, c.steps)
}

func checkMembers(op string, n int, candidates []Candidate) {
	for _, c := range candidates {
		for _, m := range c.Members {
			if m < 0 || m >= n {
				panic(&InvariantError{Op: op, Point: m, Detail: "member out of range"})
			}
		}
	}
}

// reduceCandidates returns the positions of candidates that are neither
// empty, nor a repeat of an earlier identical candidate, nor a strict subset
// of another candidate.
func reduceCandidates(candidates []Candidate) []int {
	order := make([]int, 0, len(candidates))
	for pos, c := range candidates {
		if len(c.Members) > 0 {
			order = append(order, pos)
		}
	}

	slices.SortFunc(order, func(a, b int) int {
		ma, mb := candidates[a].Members, candidates[b].Members
		if d := cmp.Compare(len(mb), len(ma)); d != 0 {
			return d
		}

		if d := slices.Compare(ma, mb); d != 0 {
			return d
		}

		if d := cmp.Compare(candidates[a].Center, candidates[b].Center); d != 0 {
			return d
		}

		return cmp.Compare(a, b)
	})

	// byPoint lists, for each point, the kept candidates containing it. Larger
	// candidates are kept first, so every possible superset of the candidate
	// under test is already listed.
	byPoint := make(map[int][]int)

	var kept []int

	for i, pos := range order {
		members := candidates[pos].Members
		if i > 0 && slices.Equal(members, candidates[order[i-1]].Members) {
			continue
		}

		dominated := false

		for _, other := range byPoint[members[0]] {
			if len(candidates[other].Members) > len(members) && isSubset(members, candidates[other].Members) {
				dominated = true

				break
			}
		}

		if dominated {
			continue
		}

		kept = append(kept, pos)
		for _, m := range members {
			byPoint[m] = append(byPoint[m], pos)
		}
	}

	slices.Sort(kept)

	return kept
}

// isSubset reports whether every element of the sorted slice a is in the
// sorted slice b.
func isSubset(a, b []int) bool {
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}

		if j == len(b) || b[j] != x {
			return false
		}

		j++
	}

	return true
}

// components groups candidate positions into sets that share no point.
func components(n int, candidates []Candidate, positions []int) [][]int {
	ds := newDisjointSet(n)

	for _, pos := range positions {
		members := candidates[pos].Members
		for _, m := range members[1:] {
			ds.union(members[0], m)
		}
	}

	byRoot := make(map[int]int)

	var out [][]int

	for _, pos := range positions {
		root := ds.find(candidates[pos].Members[0])

		idx, ok := byRoot[root]
		if !ok {
			idx = len(out)
			byRoot[root] = idx
			out = append(out, nil)
		}

		out[idx] = append(out[idx], pos)
	}

	return out
}

// solveComponent returns the candidate positions of a minimum cover of the
// points touched by comp. local is scratch space of one slot per point.
func solveComponent(clock *searchClock, candidates []Candidate, comp []int, local []int) []int {
	if len(comp) == 1 {
		return comp
	}

	var points []int

	for _, pos := range comp {
		for _, m := range candidates[pos].Members {
			local[m] = -1
		}
	}

	for _, pos := range comp {
		for _, m := range candidates[pos].Members {
			if local[m] < 0 {
				local[m] = len(points)
				points = append(points, m)
			}
		}
	}

	s := newBBSearch(clock, len(points), len(comp))

	sub := make([]Candidate, len(comp))
	for c, pos := range comp {
		set := make([]int, len(candidates[pos].Members))
		for i, m := range candidates[pos].Members {
			set[i] = local[m]
		}

		s.sets[c] = set
		s.centers[c] = candidates[pos].Center
		sub[c] = Candidate{Center: candidates[pos].Center, Members: set}

		for _, p := range set {
			s.coverers[p] = append(s.coverers[p], c)
		}
	}

	s.init()
	s.best = greedyCover(len(points), sub)
	s.dfs()

	picked := make([]int, len(s.best))
	for i, c := range s.best {
		picked[i] = comp[c]
	}

	return picked
}

// bbSearch is the depth-first state for one component. Candidates and points
// are numbered locally.
type bbSearch struct {
	clock *searchClock

	sets     [][]int
	centers  []int
	coverers [][]int

	coverCount []int  // per point, chosen candidates covering it
	usable     []int  // per point, coverers not banned
	banned     []bool // per candidate
	gain       []int  // per candidate, uncovered members
	uncovered  int

	chosen []int
	best   []int

	stamp []int
	epoch int
}

func newBBSearch(clock *searchClock, points, sets int) *bbSearch {
	return &bbSearch{
		clock:      clock,
		sets:       make([][]int, sets),
		centers:    make([]int, sets),
		coverers:   make([][]int, points),
		coverCount: make([]int, points),
		usable:     make([]int, points),
		banned:     make([]bool, sets),
		gain:       make([]int, sets),
		uncovered:  points,
		stamp:      make([]int, sets),
	}
}

func (s *bbSearch) init() {
	for p, cs := range s.coverers {
		s.usable[p] = len(cs)
	}

	for c, set := range s.sets {
		s.gain[c] = len(set)
	}
}

func (s *bbSearch) dfs() {
	if s.clock.tick() {
		return
	}

	if s.uncovered == 0 {
		if len(s.chosen) < len(s.best) {
			s.best = slices.Clone(s.chosen)
		}

		return
	}

	if len(s.chosen)+s.lowerBound() >= len(s.best) {
		return
	}

	p := s.branchPoint()

	options := make([]int, 0, s.usable[p])
	for _, c := range s.coverers[p] {
		if !s.banned[c] {
			options = append(options, c)
		}
	}

	slices.SortFunc(options, func(a, b int) int {
		if d := cmp.Compare(s.gain[b], s.gain[a]); d != 0 {
			return d
		}

		return cmp.Compare(s.centers[a], s.centers[b])
	})

	// Branch i takes options[i] and bans options[:i], so no cover is
	// explored twice.
	for i, c := range options {
		s.choose(c)
		s.dfs()
		s.unchoose(c)

		if s.clock.aborted {
			options = options[:i+1]

			break
		}

		s.ban(c)
	}

	for _, c := range options {
		if s.banned[c] {
			s.unban(c)
		}
	}
}

// lowerBound returns the minimum number of further candidates any cover
// extending the current choice needs, or more than the number of candidates
// when no such cover exists.
func (s *bbSearch) lowerBound() int {
	infeasible := len(s.sets) + 1

	maxGain := 0
	for c, g := range s.gain {
		if !s.banned[c] && g > maxGain {
			maxGain = g
		}
	}

	if maxGain == 0 {
		return infeasible
	}

	bySize := (s.uncovered + maxGain - 1) / maxGain

	s.epoch++
	packed := 0

	for p, count := range s.coverCount {
		if count > 0 {
			continue
		}

		if s.usable[p] == 0 {
			return infeasible
		}

		free := true

		for _, c := range s.coverers[p] {
			if !s.banned[c] && s.stamp[c] == s.epoch {
				free = false

				break
			}
		}

		if !free {
			continue
		}

		packed++

		for _, c := range s.coverers[p] {
			s.stamp[c] = s.epoch
		}
	}

	return max(bySize, packed)
}

// branchPoint returns the uncovered point with the fewest usable candidates.
func (s *bbSearch) branchPoint() int {
	best, bestUsable := -1, 0

	for p, count := range s.coverCount {
		if count > 0 {
			continue
		}

		if best < 0 || s.usable[p] < bestUsable {
			best, bestUsable = p, s.usable[p]
		}
	}

	return best
}

func (s *bbSearch) choose(c int) {
	s.chosen = append(s.chosen, c)

	for _, p := range s.sets[c] {
		s.coverCount[p]++
		if s.coverCount[p] == 1 {
			s.uncovered--
			for _, other := range s.coverers[p] {
				s.gain[other]--
			}
		}
	}
}

func (s *bbSearch) unchoose(c int) {
	s.chosen = s.chosen[:len(s.chosen)-1]

	for _, p := range s.sets[c] {
		s.coverCount[p]--
		if s.coverCount[p] == 0 {
			s.uncovered++
			for _, other := range s.coverers[p] {
				s.gain[other]++
			}
		}
	}
}

func (s *bbSearch) ban(c int) {
	s.banned[c] = true
	for _, p := range s.sets[c] {
		s.usable[p]--
	}
}

func (s *bbSearch) unban(c int) {
	s.banned[c] = false
	for _, p := range s.sets[c] {
		s.usable[p]++
	}
}
