package gis

import "positioning-bridge/internal/model"

// Point is a WGS84 position in degrees.
type Point struct {
	Lat float64
	Lon float64
}

func FromCoordinate(c model.Coordinate) Point {
	return Point{Lat: c.Latitude, Lon: c.Longitude}
}

func (p Point) Coordinate() model.Coordinate {
	return model.Coordinate{Latitude: p.Lat, Longitude: p.Lon}
}

// FromPoints projects model points to their geographic coordinates.
func FromPoints(points []model.Point) []Point {
	res := make([]Point, len(points))
	for i, p := range points {
		res[i] = FromCoordinate(p.Coordinate)
	}
	return res
}
