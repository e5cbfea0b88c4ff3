package gis

import (
	"math"
)

// EarthRadius in meters
const EarthRadius = 6378137

// Degrees to radians conversion
const degToRad = math.Pi / 180

// Haversine distance between two points in meters
func Haversine(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad

	sinDlat := math.Sin(dLat / 2)
	sinDlon := math.Sin(dLon / 2)

	aVal := sinDlat*sinDlat + sinDlon*sinDlon*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(aVal), math.Sqrt(1-aVal))
	return EarthRadius * c
}

// PolylineLength is the sum of the haversine lengths of every segment.
func PolylineLength(polyline []Point) float64 {
	var d float64
	for i := 1; i < len(polyline); i++ {
		d += Haversine(polyline[i-1], polyline[i])
	}
	return d
}

// DistanceToPolyline returns the minimum distance in metres from point to
// the polyline, and the index of the closest segment. It returns +Inf for
// an empty polyline.
func DistanceToPolyline(point Point, polyline []Point) (float64, int) {
	switch len(polyline) {
	case 0:
		return math.Inf(1), -1
	case 1:
		return Haversine(point, polyline[0]), 0
	}
	best, idx := math.Inf(1), -1
	for i := 0; i < len(polyline)-1; i++ {
		if d := distanceToSegment(point, polyline[i], polyline[i+1]); d < best {
			best, idx = d, i
		}
	}
	return best, idx
}

// IsPointInPolyline returns true if given point is within tolerance distance (in metres) from the polyline.
func IsPointInPolyline(point Point, polyline []Point, tolerance float64) bool {
	d, _ := DistanceToPolyline(point, polyline)
	return d <= tolerance
}

// distanceToSegment calculates the minimum distance (in metres) from point P to the segment [A, B].
func distanceToSegment(P, A, B Point) float64 {
	latRef := (A.Lat + B.Lat) / 2 * degToRad
	xP, yP := project(P, latRef)
	xC, yC := project(ClosestOnSegment(P, A, B), latRef)
	return math.Hypot(xP-xC, yP-yC)
}

// ClosestOnSegment returns the point of [A, B] nearest to P.
func ClosestOnSegment(P, A, B Point) Point {
	// Equirectangular projection around the segment's mean latitude. Good
	// enough at venue scale.
	latRef := (A.Lat + B.Lat) / 2 * degToRad
	xA, yA := project(A, latRef)
	xB, yB := project(B, latRef)
	xP, yP := project(P, latRef)

	dx, dy := xB-xA, yB-yA

	// Degenerate segment case (A == B)
	if dx == 0 && dy == 0 {
		return A
	}

	// Orthogonal projection of point P onto segment AB
	t := ((xP-xA)*dx + (yP-yA)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return Point{Lat: A.Lat + t*(B.Lat-A.Lat), Lon: A.Lon + t*(B.Lon-A.Lon)}
}

// project maps p to local metric coordinates (x east, y north).
func project(p Point, latRef float64) (x, y float64) {
	return p.Lon * degToRad * EarthRadius * math.Cos(latRef), p.Lat * degToRad * EarthRadius
}
