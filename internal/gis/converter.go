package gis

import (
	"math"

	"positioning-bridge/internal/model"
)

// Converter maps between a building's cartesian frame and WGS84. The
// cartesian origin is the building's bottom-left corner, x runs along its
// width and y along its height, both in metres, and the frame is rotated by
// the building rotation counter-clockwise from east.
type Converter struct {
	center   Point
	width    float64
	height   float64
	rotation float64
}

func NewConverter(b model.Building) *Converter {
	return &Converter{
		center:   FromCoordinate(b.Center),
		width:    b.Dimensions.Width,
		height:   b.Dimensions.Height,
		rotation: b.Rotation.Radians,
	}
}

func (c *Converter) ToCoordinate(p model.CartesianCoordinate) model.Coordinate {
	dx, dy := p.X-c.width/2, p.Y-c.height/2
	sin, cos := math.Sincos(c.rotation)
	east := dx*cos - dy*sin
	north := dx*sin + dy*cos

	lat := c.center.Lat + north/EarthRadius/degToRad
	lon := c.center.Lon + east/(EarthRadius*math.Cos(c.center.Lat*degToRad))/degToRad
	return model.Coordinate{Latitude: lat, Longitude: lon}
}

func (c *Converter) ToCartesian(p model.Coordinate) model.CartesianCoordinate {
	north := (p.Latitude - c.center.Lat) * degToRad * EarthRadius
	east := (p.Longitude - c.center.Lon) * degToRad * EarthRadius * math.Cos(c.center.Lat*degToRad)
	sin, cos := math.Sincos(c.rotation)
	dx := east*cos + north*sin
	dy := -east*sin + north*cos
	return model.CartesianCoordinate{X: dx + c.width/2, Y: dy + c.height/2}
}

// Complete fills in whichever coordinate system e lacks.
func (c *Converter) Complete(e model.Endpoint) model.Point {
	p := e.Point
	switch {
	case e.HasCoordinate && !e.HasCartesian:
		p.Cartesian = c.ToCartesian(p.Coordinate)
	case e.HasCartesian && !e.HasCoordinate:
		p.Coordinate = c.ToCoordinate(p.Cartesian)
	}
	return p
}
