// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"

	"github.com/uber/h3-go/v4"
)

// hexEdgeKm is the average H3 hexagon edge length per resolution, in km.
var hexEdgeKm = [...]float64{
	1281.256011, 483.0568391, 182.5129565, 68.97922179,
	26.07175968, 9.854090990, 3.724532667, 1.406475763,
	0.531414010, 0.200786148, 0.075863783, 0.028663897,
	0.010830188, 0.004092010, 0.001546100, 0.000584169,
}

const (
	// defaultHexRadiusKm is the query radius assumed when none is hinted.
	defaultHexRadiusKm = 0.5
	// hexDistortion scales the average edge down to a lower bound of the
	// smallest edge found anywhere on the globe at the same resolution.
	hexDistortion = 0.5
	// maxHexRing bounds the size of a GridDisk before a linear scan is cheaper.
	maxHexRing = 64
)

// hexGrid buckets points by their H3 cell and answers radius queries by
// collecting the buckets of every cell in a GridDisk around the center.
type hexGrid struct {
	points     []Point
	resolution int
	buckets    map[h3.Cell][]int
	// unbucketed holds points H3 refused to index; they are returned by every
	// query.
	unbucketed []int
}

func newHexGrid(points []Point, radiusKm float64) *hexGrid {
	g := &hexGrid{
		points:     points,
		resolution: hexResolution(radiusKm),
		buckets:    make(map[h3.Cell][]int),
	}

	for i, p := range points {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), g.resolution)
		if err != nil {
			g.unbucketed = append(g.unbucketed, i)

			continue
		}

		g.buckets[cell] = append(g.buckets[cell], i)
	}

	return g
}

// hexResolution picks the finest resolution whose average edge is at least
// radiusKm.
func hexResolution(radiusKm float64) int {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		radiusKm = defaultHexRadiusKm
	}

	for res := len(hexEdgeKm) - 1; res >= 0; res-- {
		if hexEdgeKm[res] >= radiusKm {
			return res
		}
	}

	return 0
}

// ringsFor returns a GridDisk size k that reaches every cell holding a point
// within radiusKm of the center cell's points.
//
// Two cells whose centers are D apart are at most D/(1.5*edge) rings apart,
// and D is at most the radius plus one circumradius (= edge) on each side.
func (g *hexGrid) ringsFor(radiusKm float64) int {
	edge := hexEdgeKm[g.resolution] * hexDistortion

	return int(math.Ceil((radiusKm+2*edge)/(1.5*edge))) + 1
}

func (g *hexGrid) Len() int { return len(g.points) }

func (g *hexGrid) Query(center Point, radiusKm float64) []int {
	if len(g.points) == 0 {
		return nil
	}

	boxes := QueryBoxes(center, radiusKm)

	k := g.ringsFor(radiusKm)
	if k > maxHexRing {
		return scanBoxes(g.points, boxes)
	}

	origin, err := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lng), g.resolution)
	if err != nil {
		return scanBoxes(g.points, boxes)
	}

	disk, err := h3.GridDisk(origin, k)
	if err != nil {
		return scanBoxes(g.points, boxes)
	}

	var out []int
	for _, cell := range disk {
		for _, idx := range g.buckets[cell] {
			if inBoxes(g.points, idx, boxes) {
				out = append(out, idx)
			}
		}
	}

	out = append(out, g.unbucketed...)

	return sortedUnique(out)
}
