// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"container/heap"
	"context"
)

// GreedySolver repeatedly takes the candidate covering the most uncovered
// points, breaking ties by the lowest center index.
type GreedySolver struct{}

func (GreedySolver) Solve(_ context.Context, n int, candidates []Candidate) (Cover, error) {
	selected := greedyCover(n, candidates)
	verifyCover("greedy cover", n, candidates, selected)
	sortByCenter(candidates, selected)

	return Cover{Selected: selected, Method: MethodGreedy}, nil
}

// gainItem is a candidate position with the number of uncovered points it
// covered when last evaluated.
type gainItem struct {
	pos    int
	center int
	gain   int
}

type gainHeap []gainItem

func (h gainHeap) Len() int { return len(h) }

func (h gainHeap) Less(i, j int) bool {
	if h[i].gain != h[j].gain {
		return h[i].gain > h[j].gain
	}

	if h[i].center != h[j].center {
		return h[i].center < h[j].center
	}

	return h[i].pos < h[j].pos
}

func (h gainHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *gainHeap) Push(x any) { *h = append(*h, x.(gainItem)) }

func (h *gainHeap) Pop() any {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]

	return item
}

// greedyCover returns candidate positions in selection order. Gains only
// shrink as points get covered, so a stale heap entry is an upper bound: an
// entry whose refreshed gain still equals its stored gain is the true best.
func greedyCover(n int, candidates []Candidate) []int {
	covered := make([]bool, n)
	remaining := n

	h := make(gainHeap, 0, len(candidates))
	for pos, c := range candidates {
		if len(c.Members) > 0 {
			h = append(h, gainItem{pos: pos, center: c.Center, gain: len(c.Members)})
		}
	}

	heap.Init(&h)

	var selected []int

	for remaining > 0 && h.Len() > 0 {
		top := heap.Pop(&h).(gainItem)

		gain := 0
		for _, m := range candidates[top.pos].Members {
			if m >= 0 && m < n && !covered[m] {
				gain++
			}
		}

		if gain == 0 {
			continue
		}

		if gain < top.gain {
			top.gain = gain
			heap.Push(&h, top)

			continue
		}

		selected = append(selected, top.pos)

		for _, m := range candidates[top.pos].Members {
			if m >= 0 && m < n && !covered[m] {
				covered[m] = true
				remaining--
			}
		}
	}

	return selected
}
