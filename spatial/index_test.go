// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBoxes(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		boxes := QueryBoxes(Point{Lat: 41, Lng: 29}, 1)
		require.Len(t, boxes, 1)
		assert.InDelta(t, 1/(EarthRadius*3.141592653589793/180), boxes[0].MaxLat-41, 1e-6)
		// Longitude span widens with latitude.
		assert.Greater(t, boxes[0].MaxLng-29, boxes[0].MaxLat-41)
	})

	t.Run("antimeridian", func(t *testing.T) {
		boxes := QueryBoxes(Point{Lat: 0, Lng: 179.999}, 5)
		require.Len(t, boxes, 2)
		assert.True(t, boxes[0].Contains(Point{Lat: 0, Lng: 180}))
		assert.True(t, boxes[1].Contains(Point{Lat: 0, Lng: -179.99}))
	})

	t.Run("pole", func(t *testing.T) {
		boxes := QueryBoxes(Point{Lat: 89.999, Lng: 0}, 5)
		require.Len(t, boxes, 1)
		assert.Equal(t, -180.0, boxes[0].MinLng)
		assert.Equal(t, 180.0, boxes[0].MaxLng)
		assert.Equal(t, 90.0, boxes[0].MaxLat)
	})

	t.Run("negative radius", func(t *testing.T) {
		assert.Empty(t, QueryBoxes(Point{}, -1))
	})
}

func TestParseIndexKind(t *testing.T) {
	for _, name := range []string{"", "kdtree", "RTREE", " h3 "} {
		_, err := ParseIndexKind(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseIndexKind("quadtree")
	assert.ErrorIs(t, err, ErrUnknownIndex)

	_, err = NewIndex("quadtree", nil)
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestEmptyIndex(t *testing.T) {
	for _, kind := range IndexKinds {
		t.Run(string(kind), func(t *testing.T) {
			index, err := NewIndex(kind, nil)
			require.NoError(t, err)
			assert.Zero(t, index.Len())
			assert.Empty(t, index.Query(Point{Lat: 1, Lng: 1}, 10))
		})
	}
}

// scatter returns n points spread around center within roughly spread degrees.
func scatter(r *rand.Rand, center Point, spread float64, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		lat := center.Lat + (r.Float64()*2-1)*spread
		lng := center.Lng + (r.Float64()*2-1)*spread*2

		lat = min(max(lat, -90), 90)
		if lng > 180 {
			lng -= 360
		}

		if lng < -180 {
			lng += 360
		}

		points[i] = Point{Lat: lat, Lng: lng}
	}

	return points
}

func TestIndexQueryIsSuperset(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	scenarios := []struct {
		name   string
		points []Point
		radius float64
	}{
		{"istanbul", scatter(r, Point{Lat: 41.05, Lng: 29.0}, 0.02, 400), 0.5},
		{"equator", scatter(r, Point{Lat: 0, Lng: 0}, 0.01, 300), 0.5},
		{"antimeridian", scatter(r, Point{Lat: -16.5, Lng: 179.995}, 0.01, 300), 1.0},
		{"arctic", scatter(r, Point{Lat: 89.97, Lng: 45}, 0.03, 300), 2.0},
		{"large radius", scatter(r, Point{Lat: 60, Lng: 10}, 1, 300), 40},
	}

	for _, sc := range scenarios {
		for _, kind := range IndexKinds {
			t.Run(sc.name+"/"+string(kind), func(t *testing.T) {
				index, err := NewIndexForRadius(kind, sc.points, sc.radius)
				require.NoError(t, err)
				assert.Equal(t, len(sc.points), index.Len())

				for i, center := range sc.points {
					got := index.Query(center, sc.radius)

					assert.True(t, slices.IsSorted(got), "query %d not sorted", i)
					assert.Len(t, slices.Compact(slices.Clone(got)), len(got), "query %d has duplicates", i)

					for j, p := range sc.points {
						if Distance(center, p) <= sc.radius {
							_, found := slices.BinarySearch(got, j)
							require.True(t, found, "query %d dropped %d at %.6f km", i, j, Distance(center, p))
						}
					}
				}
			})
		}
	}
}

func TestIndexOwnsItsPoints(t *testing.T) {
	points := []Point{{Lat: 10, Lng: 10}, {Lat: 10.001, Lng: 10}}

	for _, kind := range IndexKinds {
		t.Run(string(kind), func(t *testing.T) {
			index, err := NewIndex(kind, points)
			require.NoError(t, err)

			mutated := slices.Clone(points)
			copy(points, []Point{{Lat: -50, Lng: -50}, {Lat: -50, Lng: -50}})

			assert.Equal(t, []int{0, 1}, index.Query(Point{Lat: 10, Lng: 10}, 0.5))

			copy(points, mutated)
		})
	}
}
