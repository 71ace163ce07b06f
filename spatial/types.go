// Copyright 2025 The Basketopt Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadius is the mean radius of the spherical earth model, in kilometers.
const EarthRadius = 6371.0

var (
	ErrNonFinite      = errors.New("spatial: coordinate is not a finite number")
	ErrLatitudeRange  = errors.New("spatial: latitude out of range [-90, 90]")
	ErrLongitudeRange = errors.New("spatial: longitude out of range [-180, 180]")
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Validate reports whether the point is a usable coordinate.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return ErrNonFinite
	}

	if p.Lat < -90 || p.Lat > 90 {
		return ErrLatitudeRange
	}

	if p.Lng < -180 || p.Lng > 180 {
		return ErrLongitudeRange
	}

	return nil
}

// DistanceTo returns the great-circle distance to other in kilometers.
func (p Point) DistanceTo(other Point) float64 {
	return Distance(p, other)
}

// Distance calculates the haversine distance between two points in kilometers.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// Destination returns the point reached by travelling km kilometers from p
// along the great circle with the given initial bearing (degrees from north).
// It works on unit vectors so that paths over or near a pole keep their
// length.
func Destination(p Point, bearing, km float64) Point {
	lat1 := p.Lat * math.Pi / 180
	lng1 := p.Lng * math.Pi / 180
	theta := bearing * math.Pi / 180
	delta := km / EarthRadius

	sinLat, cosLat := math.Sincos(lat1)
	sinLng, cosLng := math.Sincos(lng1)
	sinTheta, cosTheta := math.Sincos(theta)
	sinDelta, cosDelta := math.Sincos(delta)

	// start, local north and local east.
	start := [3]float64{cosLat * cosLng, cosLat * sinLng, sinLat}
	north := [3]float64{-sinLat * cosLng, -sinLat * sinLng, cosLat}
	east := [3]float64{-sinLng, cosLng, 0}

	var q [3]float64
	for i := range q {
		dir := cosTheta*north[i] + sinTheta*east[i]
		q[i] = cosDelta*start[i] + sinDelta*dir
	}

	lat2 := math.Atan2(q[2], math.Hypot(q[0], q[1]))
	lng2 := math.Atan2(q[1], q[0])

	return Point{
		Lat: lat2 * 180 / math.Pi,
		Lng: normalizeLng(lng2 * 180 / math.Pi),
	}
}

// normalizeLng folds a longitude into [-180, 180).
func normalizeLng(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}

	return lng - 180
}
