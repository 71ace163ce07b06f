// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package region

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/basketopt/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func loadFixture(t *testing.T) []*Region {
	t.Helper()

	regions, err := Load(fixture)
	require.NoError(t, err)

	return regions
}

func inside(regions []*Region, p spatial.Point) bool {
	for _, r := range regions {
		for _, poly := range r.Polygons() {
			if Contains(poly, geom.Coord{p.Lng, p.Lat}) {
				return true
			}
		}
	}

	return false
}

func TestSampleCount(t *testing.T) {
	regions := loadFixture(t)

	for _, count := range []int{0, -1, MaxSampleCount + 1} {
		_, err := Sampler{}.Sample(regions, count)
		assert.ErrorIs(t, err, ErrSampleCount, "count %d", count)
	}

	points, err := Sampler{Rand: rand.New(rand.NewSource(1))}.Sample(regions, 1)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestSampleNoArea(t *testing.T) {
	_, err := Sampler{}.Sample(nil, 10)
	assert.ErrorIs(t, err, ErrEmptyArea)
}

func TestSampleIsDeterministic(t *testing.T) {
	regions := loadFixture(t)

	a, err := Sampler{Rand: rand.New(rand.NewSource(42))}.Sample(regions, 200)
	require.NoError(t, err)

	b, err := Sampler{Rand: rand.New(rand.NewSource(42))}.Sample(regions, 200)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different orders (-first +second):\n%s", diff)
	}
}

func TestSampleStaysInside(t *testing.T) {
	regions := loadFixture(t)

	points, err := Sampler{Rand: rand.New(rand.NewSource(7))}.Sample(regions, 2000)
	require.NoError(t, err)

	hole := regions[0].Polygons()[0].LinearRing(1)

	for _, p := range points {
		require.NoError(t, p.Validate())
		require.True(t, inside(regions, p), "%s is outside every region", p)

		b := hole.Bounds()
		inHole := p.Lng > b.Min(0) && p.Lng < b.Max(0) && p.Lat > b.Min(1) && p.Lat < b.Max(1)
		require.False(t, inHole, "%s fell in a hole", p)
	}
}

func TestSampleIsAreaWeighted(t *testing.T) {
	regions := loadFixture(t)

	// The second polygon of Üsküdar is four times larger than the first.
	points, err := Sampler{Rand: rand.New(rand.NewSource(3))}.Sample(regions[1:], 5000)
	require.NoError(t, err)

	large := 0
	for _, p := range points {
		if p.Lng >= 29.05 {
			large++
		}
	}

	assert.InDelta(t, 0.8, float64(large)/float64(len(points)), 0.03)
}

func TestContains(t *testing.T) {
	regions := loadFixture(t)
	poly := regions[0].Polygons()[0]

	assert.True(t, Contains(poly, geom.Coord{29.002, 41.002}))
	assert.False(t, Contains(poly, geom.Coord{29.01, 41.01}), "inside the hole")
	assert.False(t, Contains(poly, geom.Coord{29.03, 41.01}), "outside the ring")
}
