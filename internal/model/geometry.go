package model

import "math"

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// CartesianCoordinate is expressed in meters relative to the building's
// bottom-left corner.
type CartesianCoordinate struct {
	X float64
	Y float64
}

type Dimensions struct {
	Width  float64
	Height float64
}

type Bounds struct {
	NorthEast Coordinate
	NorthWest Coordinate
	SouthEast Coordinate
	SouthWest Coordinate
}

// Angle stores radians; the other representations are derived.
type Angle struct {
	Radians float64
}

func AngleFromDegrees(degrees float64) Angle {
	return Angle{Radians: degrees * math.Pi / 180}
}

func (a Angle) Degrees() float64 {
	return a.Radians * 180 / math.Pi
}

func (a Angle) DegreesClockwise() float64 {
	return math.Mod(360-a.Degrees(), 360)
}

// RadiansMinusPiPi normalizes the angle into (-π, π].
func (a Angle) RadiansMinusPiPi() float64 {
	r := math.Mod(a.Radians, 2*math.Pi)
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}

// Point is a position inside (indoor) or around (outdoor) a building.
// Outdoor points have no floor and no cartesian coordinate.
type Point struct {
	BuildingID string
	FloorID    string
	Coordinate Coordinate
	Cartesian  CartesianCoordinate
	Indoor     bool
}

func (p Point) IsOutdoor() bool {
	return !p.Indoor
}

type Circle struct {
	Center Point
	Radius float64
}
