// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

// leafSize is the number of points below which a subtree is scanned linearly.
const leafSize = 16

// kdTree is a static 2-d tree over (lat, lng) stored in flat arrays. ids is a
// permutation of point indices arranged so that the median of every range
// splits it on alternating axes; coords mirrors ids for cache locality.
type kdTree struct {
	points []Point
	ids    []int32
	coords []float64
}

func newKDTree(points []Point) *kdTree {
	t := &kdTree{
		points: points,
		ids:    make([]int32, len(points)),
		coords: make([]float64, 2*len(points)),
	}

	for i, p := range points {
		t.ids[i] = int32(i)
		t.coords[2*i] = p.Lat
		t.coords[2*i+1] = p.Lng
	}

	t.build(0, len(points)-1, 0)

	return t
}

func (t *kdTree) Len() int { return len(t.points) }

// build arranges ids[left..right] around its median on axis and recurses.
func (t *kdTree) build(left, right, axis int) {
	if right-left <= leafSize {
		return
	}

	m := (left + right) / 2
	t.selectNth(m, left, right, axis)
	t.build(left, m-1, 1-axis)
	t.build(m+1, right, 1-axis)
}

// selectNth partially orders ids[left..right] so that position k holds the
// element it would hold if the range were sorted on axis (quickselect).
func (t *kdTree) selectNth(k, left, right, axis int) {
	for right > left {
		pivot := t.coords[2*((left+right)/2)+axis]
		i, j := left, right

		for i <= j {
			for t.coords[2*i+axis] < pivot {
				i++
			}

			for t.coords[2*j+axis] > pivot {
				j--
			}

			if i <= j {
				t.swap(i, j)
				i++
				j--
			}
		}

		switch {
		case k <= j:
			right = j
		case k >= i:
			left = i
		default:
			return
		}
	}
}

func (t *kdTree) swap(i, j int) {
	t.ids[i], t.ids[j] = t.ids[j], t.ids[i]
	t.coords[2*i], t.coords[2*j] = t.coords[2*j], t.coords[2*i]
	t.coords[2*i+1], t.coords[2*j+1] = t.coords[2*j+1], t.coords[2*i+1]
}

// Query walks every box returned by QueryBoxes.
func (t *kdTree) Query(center Point, radiusKm float64) []int {
	if len(t.points) == 0 {
		return nil
	}

	var out []int
	for _, b := range QueryBoxes(center, radiusKm) {
		out = t.rangeSearch(b, out)
	}

	return sortedUnique(out)
}

// rangeSearch appends to out every id whose point lies in b.
func (t *kdTree) rangeSearch(b Box, out []int) []int {
	lo := [2]float64{b.MinLat, b.MinLng}
	hi := [2]float64{b.MaxLat, b.MaxLng}

	stack := []int{0, len(t.ids) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= leafSize {
			for i := left; i <= right; i++ {
				if t.inside(i, lo, hi) {
					out = append(out, int(t.ids[i]))
				}
			}

			continue
		}

		m := (left + right) / 2
		if t.inside(m, lo, hi) {
			out = append(out, int(t.ids[m]))
		}

		v := t.coords[2*m+axis]
		if lo[axis] <= v {
			stack = append(stack, left, m-1, 1-axis)
		}

		if hi[axis] >= v {
			stack = append(stack, m+1, right, 1-axis)
		}
	}

	return out
}

func (t *kdTree) inside(i int, lo, hi [2]float64) bool {
	lat, lng := t.coords[2*i], t.coords[2*i+1]

	return lat >= lo[0] && lat <= hi[0] && lng >= lo[1] && lng <= hi[1]
}
