// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"encoding/json"
	"math"

	"github.com/jcodagnone/basketopt/spatial"
)

// radiusPrecision is the number of decimals kept in a centroid radius.
const radiusPrecision = 1000

// Basket is a group of orders served from one center. Every member lies
// within Radius (plus Epsilon) of Center.
type Basket struct {
	Center  spatial.Point
	Radius  float64
	Members []spatial.Point
	// Indices are the input positions of Members, in the same order.
	Indices []int
}

type basketJSON struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Radius    float64         `json:"radius"`
	Orders    []spatial.Point `json:"orders"`
}

// MarshalJSON encodes the basket as {latitude, longitude, radius, orders}.
func (b Basket) MarshalJSON() ([]byte, error) {
	orders := b.Members
	if orders == nil {
		orders = []spatial.Point{}
	}

	return json.Marshal(basketJSON{
		Latitude:  b.Center.Lat,
		Longitude: b.Center.Lng,
		Radius:    b.Radius,
		Orders:    orders,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON. Indices are not
// part of the encoding and are left empty.
func (b *Basket) UnmarshalJSON(data []byte) error {
	var raw basketJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Basket{
		Center:  spatial.Point{Lat: raw.Latitude, Lng: raw.Longitude},
		Radius:  raw.Radius,
		Members: raw.Orders,
	}

	return nil
}

// FixedRadius builds the basket for a group centered on its designated
// point, reporting the configured radius.
func FixedRadius(points []spatial.Point, g Group, radiusKm float64) Basket {
	return Basket{
		Center:  points[g.Center],
		Radius:  radiusKm,
		Members: pick(points, g.Members),
		Indices: g.Members,
	}
}

// Centroid builds the basket for members centered on their mean position.
// The radius is the distance to the farthest member rounded up to three
// decimals, so rounding never leaves a member outside.
func Centroid(points []spatial.Point, members []int) Basket {
	center := centroid(points, members)

	farthest := 0.0
	for _, m := range members {
		farthest = max(farthest, spatial.Distance(center, points[m]))
	}

	return Basket{
		Center:  center,
		Radius:  math.Ceil(farthest*radiusPrecision) / radiusPrecision,
		Members: pick(points, members),
		Indices: members,
	}
}

// centroid averages latitudes and longitudes. Groups spanning the
// antimeridian are averaged with their western longitudes shifted by 360.
func centroid(points []spatial.Point, members []int) spatial.Point {
	if len(members) == 0 {
		return spatial.Point{}
	}

	minLng, maxLng := math.Inf(1), math.Inf(-1)
	for _, m := range members {
		minLng = min(minLng, points[m].Lng)
		maxLng = max(maxLng, points[m].Lng)
	}

	wrap := maxLng-minLng > 180

	var lat, lng float64

	for _, m := range members {
		p := points[m]
		lat += p.Lat

		if wrap && p.Lng < 0 {
			lng += p.Lng + 360
		} else {
			lng += p.Lng
		}
	}

	count := float64(len(members))
	lng /= count

	if lng >= 180 {
		lng -= 360
	}

	return spatial.Point{Lat: lat / count, Lng: lng}
}

func pick(points []spatial.Point, idx []int) []spatial.Point {
	out := make([]spatial.Point, len(idx))
	for i, j := range idx {
		out[i] = points[j]
	}

	return out
}
