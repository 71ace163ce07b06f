// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jcodagnone/basketopt/spatial"
)

// DiameterGroups sweeps the points in (latitude, longitude) order. Each
// unassigned point seeds a group, and every later unassigned point joins it
// when it lies within twice the radius of every member already in the group.
func DiameterGroups(
	ctx context.Context,
	points []spatial.Point,
	radiusKm float64,
	kind spatial.IndexKind,
) ([][]int, error) {
	if err := checkRadius(radiusKm); err != nil {
		return nil, err
	}

	n := len(points)
	if n == 0 {
		return [][]int{}, nil
	}

	diameter := 2 * radiusKm
	limit := diameter + Epsilon

	index, err := spatial.NewIndexForRadius(kind, points, diameter)
	if err != nil {
		return nil, fmt.Errorf("building spatial index: %w", err)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	slices.SortFunc(order, func(a, b int) int {
		if d := cmp.Compare(points[a].Lat, points[b].Lat); d != 0 {
			return d
		}

		if d := cmp.Compare(points[a].Lng, points[b].Lng); d != 0 {
			return d
		}

		return cmp.Compare(a, b)
	})

	rank := make([]int, n)
	for r, i := range order {
		rank[i] = r
	}

	visited := make([]bool, n)
	groups := make([][]int, 0, n)

	for r, seed := range order {
		if r%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("sweeping diameter groups: %w", err)
			}
		}

		if visited[seed] {
			continue
		}

		group := []int{seed}
		visited[seed] = true

		// Any member must be within the diameter of the seed, so the index
		// narrows the sweep to the seed's neighborhood.
		near := index.Query(points[seed], diameter)
		slices.SortFunc(near, func(a, b int) int { return cmp.Compare(rank[a], rank[b]) })

		for _, j := range near {
			if visited[j] {
				continue
			}

			fits := true

			for _, m := range group {
				if spatial.Distance(points[j], points[m]) > limit {
					fits = false

					break
				}
			}

			if fits {
				group = append(group, j)
				visited[j] = true
			}
		}

		slices.Sort(group)
		groups = append(groups, group)
	}

	return groups, nil
}
