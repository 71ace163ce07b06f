// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import "slices"

// Group is a resolved basket before geometry is attached: a designated
// center point and the points it owns, both as input indices.
type Group struct {
	Center  int
	Members []int
}

// Resolve turns a possibly overlapping selection of candidates into a
// partition of 0..n-1. Candidates are visited by ascending center and each
// keeps only the members no earlier candidate claimed; a candidate left with
// nothing is dropped. Points no candidate claimed become singleton groups.
func Resolve(n int, candidates []Candidate, selected []int) []Group {
	order := slices.Clone(selected)
	sortByCenter(candidates, order)

	claimed := make([]bool, n)
	groups := make([]Group, 0, len(order))

	for _, pos := range order {
		var members []int

		for _, m := range candidates[pos].Members {
			if m < 0 || m >= n || claimed[m] {
				continue
			}

			claimed[m] = true
			members = append(members, m)
		}

		if len(members) == 0 {
			continue
		}

		groups = append(groups, Group{Center: candidates[pos].Center, Members: members})
	}

	for i, ok := range claimed {
		if !ok {
			groups = append(groups, Group{Center: i, Members: []int{i}})
		}
	}

	return groups
}
