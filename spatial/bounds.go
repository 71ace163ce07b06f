// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import "math"

// boxPadding widens every computed half-span so floating point error in the
// spherical trigonometry can only over-include.
const (
	boxPaddingFactor = 1 + 1e-6
	boxPaddingDeg    = 1e-9
)

// Box is a latitude/longitude rectangle in degrees. Bounds are inclusive.
type Box struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// Contains reports whether p lies inside the box, bounds included.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// QueryBoxes returns the degree-space rectangles that together enclose every
// point within radiusKm great-circle kilometers of center.
//
// The latitude half-span is exact on a sphere (one degree of latitude is
// always R*pi/180 km). The longitude half-span is the widest longitude
// reached by the spherical cap, asin(sin(d)/cos(lat)), so it grows toward
// the poles instead of using an average kilometers-per-degree. When the cap
// reaches a pole every longitude is included. A cap crossing the
// antimeridian yields two boxes.
func QueryBoxes(center Point, radiusKm float64) []Box {
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil
	}

	delta := radiusKm / EarthRadius
	if delta >= math.Pi {
		return []Box{{MinLat: -90, MinLng: -180, MaxLat: 90, MaxLng: 180}}
	}

	dLat := delta*180/math.Pi*boxPaddingFactor + boxPaddingDeg
	minLat := center.Lat - dLat
	maxLat := center.Lat + dLat

	if minLat <= -90 || maxLat >= 90 {
		return []Box{{
			MinLat: math.Max(minLat, -90),
			MinLng: -180,
			MaxLat: math.Min(maxLat, 90),
			MaxLng: 180,
		}}
	}

	ratio := math.Sin(delta) / math.Cos(center.Lat*math.Pi/180)
	if ratio >= 1 {
		return []Box{{MinLat: minLat, MinLng: -180, MaxLat: maxLat, MaxLng: 180}}
	}

	dLng := math.Asin(ratio)*180/math.Pi*boxPaddingFactor + boxPaddingDeg
	if dLng >= 180 {
		return []Box{{MinLat: minLat, MinLng: -180, MaxLat: maxLat, MaxLng: 180}}
	}

	minLng := center.Lng - dLng
	maxLng := center.Lng + dLng

	switch {
	case minLng < -180:
		return []Box{
			{MinLat: minLat, MinLng: minLng + 360, MaxLat: maxLat, MaxLng: 180},
			{MinLat: minLat, MinLng: -180, MaxLat: maxLat, MaxLng: maxLng},
		}
	case maxLng > 180:
		return []Box{
			{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: 180},
			{MinLat: minLat, MinLng: -180, MaxLat: maxLat, MaxLng: maxLng - 360},
		}
	default:
		return []Box{{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng}}
	}
}
