// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"github.com/dhconnelly/rtreego"
)

const (
	rtreeTolerance   = 1e-7
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	rtreeDimensions  = 2
)

// rtreeItem wraps a point index to implement rtreego.Spatial.
type rtreeItem struct {
	idx  int
	rect *rtreego.Rect
}

func (it *rtreeItem) Bounds() *rtreego.Rect {
	return it.rect
}

// rTree answers radius queries with an rtreego R-tree over (lat, lng).
type rTree struct {
	points []Point
	tree   *rtreego.Rtree
}

func newRTree(points []Point) *rTree {
	t := &rTree{
		points: points,
		tree:   rtreego.NewTree(rtreeDimensions, rtreeMinChildren, rtreeMaxChildren),
	}

	for i, p := range points {
		rect := rtreego.Point{p.Lat, p.Lng}.ToRect(rtreeTolerance)
		t.tree.Insert(&rtreeItem{idx: i, rect: rect})
	}

	return t
}

func (t *rTree) Len() int { return len(t.points) }

func (t *rTree) Query(center Point, radiusKm float64) []int {
	if len(t.points) == 0 {
		return nil
	}

	boxes := QueryBoxes(center, radiusKm)

	var out []int
	for _, b := range boxes {
		bounds, err := rtreego.NewRect(
			rtreego.Point{b.MinLat, b.MinLng},
			[]float64{b.MaxLat - b.MinLat, b.MaxLng - b.MinLng},
		)
		if err != nil {
			// A degenerate box cannot be searched; scanning keeps the
			// superset guarantee.
			return scanBoxes(t.points, boxes)
		}

		for _, result := range t.tree.SearchIntersect(bounds) {
			item, ok := result.(*rtreeItem)
			if !ok {
				continue
			}

			// Item rectangles are padded by the tolerance, so keep only
			// points strictly within the query boxes.
			if inBoxes(t.points, item.idx, boxes) {
				out = append(out, item.idx)
			}
		}
	}

	return sortedUnique(out)
}
