// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"context"

	"github.com/jcodagnone/basketopt/spatial"
)

// DensityGroups clusters points by single linkage: two points share a group
// when a chain of points, each within radiusKm of the next, connects them.
// This is DBSCAN with eps = radiusKm and a minimum cluster size of one, so
// there is no noise. Groups are ordered by their smallest index and members
// are ascending.
func DensityGroups(
	ctx context.Context,
	points []spatial.Point,
	radiusKm float64,
	opts CandidateOptions,
) ([][]int, error) {
	candidates, err := GenerateCandidates(ctx, points, radiusKm, opts)
	if err != nil {
		return nil, err
	}

	ds := newDisjointSet(len(points))
	for _, c := range candidates {
		for _, m := range c.Members {
			ds.union(c.Center, m)
		}
	}

	byRoot := make(map[int]int)
	groups := [][]int{}

	for i := range points {
		root := ds.find(i)

		idx, ok := byRoot[root]
		if !ok {
			idx = len(groups)
			byRoot[root] = idx
			groups = append(groups, nil)
		}

		groups[idx] = append(groups[idx], i)
	}

	return groups, nil
}
