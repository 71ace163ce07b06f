// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package region

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jcodagnone/basketopt/spatial"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const (
	DefaultSampleCount = 1000
	MaxSampleCount     = 10000

	// maxAttempts bounds rejection sampling inside one polygon.
	maxAttempts = 10000
)

var (
	ErrSampleCount = fmt.Errorf("region: count must be between 1 and %d", MaxSampleCount)
	ErrEmptyArea   = errors.New("region: selected regions have no area")
)

// Sampler draws uniformly distributed points inside regions.
type Sampler struct {
	// Rand is the random source. A nil Rand is seeded from the clock.
	Rand *rand.Rand
}

// Sample returns count points inside the union of the regions' polygons. A
// polygon is chosen with probability proportional to its area, then a point
// is drawn from its bounding box until one lands inside the exterior ring and
// outside every hole. Overlapping polygons are weighted once each.
func (s Sampler) Sample(regions []*Region, count int) ([]spatial.Point, error) {
	if count < 1 || count > MaxSampleCount {
		return nil, fmt.Errorf("%w: got %d", ErrSampleCount, count)
	}

	var (
		polygons   []*geom.Polygon
		cumulative []float64
		total      float64
	)

	for _, r := range regions {
		for _, p := range r.Polygons() {
			area := p.Area()
			if area <= 0 || p.NumLinearRings() == 0 {
				continue
			}

			total += area
			polygons = append(polygons, p)
			cumulative = append(cumulative, total)
		}
	}

	if len(polygons) == 0 {
		return nil, ErrEmptyArea
	}

	rnd := s.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 - synthetic data
	}

	points := make([]spatial.Point, count)

	for i := range points {
		target := rnd.Float64() * total

		k := sort.SearchFloat64s(cumulative, target)
		if k == len(polygons) {
			k--
		}

		p, err := samplePolygon(rnd, polygons[k])
		if err != nil {
			return nil, err
		}

		points[i] = p
	}

	return points, nil
}

func samplePolygon(rnd *rand.Rand, p *geom.Polygon) (spatial.Point, error) {
	b := p.Bounds()
	minX, minY := b.Min(0), b.Min(1)
	width, height := b.Max(0)-minX, b.Max(1)-minY

	for range maxAttempts {
		c := geom.Coord{minX + rnd.Float64()*width, minY + rnd.Float64()*height}
		if Contains(p, c) {
			return spatial.Point{Lat: c[1], Lng: c[0]}, nil
		}
	}

	return spatial.Point{}, fmt.Errorf("no point found inside polygon after %d attempts", maxAttempts)
}

// Contains reports whether c, an [lng, lat] coordinate, lies inside the
// exterior ring of p and outside its holes.
func Contains(p *geom.Polygon, c geom.Coord) bool {
	layout := p.Layout()

	if !xy.IsPointInRing(layout, c, p.LinearRing(0).FlatCoords()) {
		return false
	}

	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}

	return true
}
