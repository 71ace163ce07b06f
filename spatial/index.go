// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownIndex = errors.New("spatial: unknown index kind")

// IndexKind selects a spatial index implementation.
type IndexKind string

const (
	IndexKDTree IndexKind = "kdtree"
	IndexRTree  IndexKind = "rtree"
	IndexH3     IndexKind = "h3"
)

// IndexKinds lists every supported implementation, default first.
var IndexKinds = []IndexKind{IndexKDTree, IndexRTree, IndexH3}

// ParseIndexKind maps a user supplied name to an IndexKind. The empty string
// selects the k-d tree.
func ParseIndexKind(s string) (IndexKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IndexKDTree, nil
	}

	for _, k := range IndexKinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownIndex, s)
}

// Index answers radius queries over a fixed set of points addressed by their
// position in the slice the index was built from.
//
// Query returns a superset of the indices within radiusKm of center, sorted
// ascending and without duplicates. Callers must re-check candidates with
// Distance; the index is never authoritative.
type Index interface {
	Len() int
	Query(center Point, radiusKm float64) []int
}

// NewIndex builds an index of the requested kind. The points are copied, so
// the caller may reuse its slice.
func NewIndex(kind IndexKind, points []Point) (Index, error) {
	return NewIndexForRadius(kind, points, 0)
}

// NewIndexForRadius is NewIndex with a hint of the radius most queries will
// use. Only the H3 grid uses the hint, to pick its resolution.
func NewIndexForRadius(kind IndexKind, points []Point, radiusKm float64) (Index, error) {
	owned := slices.Clone(points)

	switch kind {
	case IndexKDTree, "":
		return newKDTree(owned), nil
	case IndexRTree:
		return newRTree(owned), nil
	case IndexH3:
		return newHexGrid(owned, radiusKm), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, kind)
	}
}

// inBoxes reports whether points[idx] lies inside any of boxes.
func inBoxes(points []Point, idx int, boxes []Box) bool {
	for _, b := range boxes {
		if b.Contains(points[idx]) {
			return true
		}
	}

	return false
}

// scanBoxes is the linear fallback used when an index cannot answer a query
// structurally.
func scanBoxes(points []Point, boxes []Box) []int {
	var out []int
	for i := range points {
		if inBoxes(points, i, boxes) {
			out = append(out, i)
		}
	}

	return out
}

// sortedUnique sorts ids in place and drops duplicates.
func sortedUnique(ids []int) []int {
	slices.Sort(ids)

	return slices.Compact(ids)
}
