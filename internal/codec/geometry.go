package codec

import (
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

func EncodeCoordinate(c model.Coordinate) Object {
	return Object{
		"latitude":  c.Latitude,
		"longitude": c.Longitude,
	}
}

func DecodeCoordinate(v any) (model.Coordinate, error) {
	o, err := asObject(v, "coordinate")
	if err != nil {
		return model.Coordinate{}, err
	}
	lat, err := requireFloat(o, "latitude")
	if err != nil {
		return model.Coordinate{}, err
	}
	lng, err := requireFloat(o, "longitude")
	if err != nil {
		return model.Coordinate{}, err
	}
	if lat < -90 || lat > 90 {
		return model.Coordinate{}, bridgeerr.Malformed("latitude", "out of range: %f", lat)
	}
	if lng < -180 || lng > 180 {
		return model.Coordinate{}, bridgeerr.Malformed("longitude", "out of range: %f", lng)
	}
	return model.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func EncodeCartesian(c model.CartesianCoordinate) Object {
	return Object{"x": c.X, "y": c.Y}
}

func DecodeCartesian(v any) (model.CartesianCoordinate, error) {
	o, err := asObject(v, "cartesianCoordinate")
	if err != nil {
		return model.CartesianCoordinate{}, err
	}
	x, err := requireFloat(o, "x")
	if err != nil {
		return model.CartesianCoordinate{}, err
	}
	y, err := requireFloat(o, "y")
	if err != nil {
		return model.CartesianCoordinate{}, err
	}
	return model.CartesianCoordinate{X: x, Y: y}, nil
}

func EncodeDimensions(d model.Dimensions) Object {
	return Object{"width": d.Width, "height": d.Height}
}

func DecodeDimensions(v any) (model.Dimensions, error) {
	o, err := asObject(v, "dimensions")
	if err != nil {
		return model.Dimensions{}, err
	}
	w, err := requireFloat(o, "width")
	if err != nil {
		return model.Dimensions{}, err
	}
	h, err := requireFloat(o, "height")
	if err != nil {
		return model.Dimensions{}, err
	}
	return model.Dimensions{Width: w, Height: h}, nil
}

func EncodeBounds(b model.Bounds) Object {
	return Object{
		"northEast": EncodeCoordinate(b.NorthEast),
		"northWest": EncodeCoordinate(b.NorthWest),
		"southEast": EncodeCoordinate(b.SouthEast),
		"southWest": EncodeCoordinate(b.SouthWest),
	}
}

func DecodeBounds(v any) (model.Bounds, error) {
	o, err := asObject(v, "bounds")
	if err != nil {
		return model.Bounds{}, err
	}
	var b model.Bounds
	corners := []struct {
		key string
		dst *model.Coordinate
	}{
		{"northEast", &b.NorthEast},
		{"northWest", &b.NorthWest},
		{"southEast", &b.SouthEast},
		{"southWest", &b.SouthWest},
	}
	for _, c := range corners {
		raw, _ := lookup(o, c.key)
		if raw == nil {
			return model.Bounds{}, bridgeerr.Malformed(c.key, "missing")
		}
		if *c.dst, err = DecodeCoordinate(raw); err != nil {
			return model.Bounds{}, err
		}
	}
	return b, nil
}

func EncodeAngle(a model.Angle) Object {
	return Object{
		"degrees":          a.Degrees(),
		"degreesClockwise": a.DegreesClockwise(),
		"radians":          a.Radians,
		"radiansMinusPiPi": a.RadiansMinusPiPi(),
	}
}

// DecodeAngle prefers radians, the stored representation, and falls back
// to degrees for hosts that only send the human-readable form.
func DecodeAngle(v any) (model.Angle, error) {
	o, err := asObject(v, "angle")
	if err != nil {
		return model.Angle{}, err
	}
	if r, ok, err := optFloat(o, "radians"); err != nil || ok {
		return model.Angle{Radians: r}, err
	}
	d, err := requireFloat(o, "degrees")
	if err != nil {
		return model.Angle{}, err
	}
	return model.AngleFromDegrees(d), nil
}

func EncodePoint(p model.Point) Object {
	return Object{
		"buildingId":          p.BuildingID,
		"floorId":             p.FloorID,
		"coordinate":          EncodeCoordinate(p.Coordinate),
		"cartesianCoordinate": EncodeCartesian(p.Cartesian),
		"isIndoor":            p.Indoor,
		"isOutdoor":           p.IsOutdoor(),
	}
}

func DecodePoint(v any) (model.Point, error) {
	p, hasCoord, hasCart, err := decodePartialPoint(v)
	if err != nil {
		return model.Point{}, err
	}
	if !hasCoord {
		return model.Point{}, bridgeerr.Malformed("coordinate", "missing")
	}
	if p.Indoor && !hasCart {
		return model.Point{}, bridgeerr.Malformed("cartesianCoordinate", "missing")
	}
	return p, nil
}

// decodePartialPoint accepts points carrying either coordinate system and
// reports which ones were present.
func decodePartialPoint(v any) (p model.Point, hasCoord, hasCart bool, err error) {
	o, err := asObject(v, "point")
	if err != nil {
		return p, false, false, err
	}
	for _, key := range []string{"buildingId", "buildingIdentifier"} {
		if _, ok := lookup(o, key); ok {
			p.BuildingID, err = identifier(o, key)
			break
		}
	}
	if err != nil {
		return p, false, false, err
	}
	if _, ok := lookup(o, "floorId"); ok {
		p.FloorID, err = identifier(o, "floorId")
	} else if _, ok := lookup(o, "floorIdentifier"); ok {
		p.FloorID, err = identifier(o, "floorIdentifier")
	}
	if err != nil {
		return p, false, false, err
	}
	if raw, ok := lookup(o, "coordinate"); ok {
		if p.Coordinate, err = DecodeCoordinate(raw); err != nil {
			return p, false, false, err
		}
		hasCoord = true
	}
	if raw, ok := lookup(o, "cartesianCoordinate"); ok {
		if p.Cartesian, err = DecodeCartesian(raw); err != nil {
			return p, false, false, err
		}
		hasCart = true
	}
	if !hasCoord && !hasCart {
		return p, false, false, bridgeerr.Malformed("coordinate", "point needs a coordinate or a cartesianCoordinate")
	}
	indoor, err := optBool(o, "isIndoor")
	if err != nil {
		return p, false, false, err
	}
	if indoor != nil {
		p.Indoor = *indoor
	} else {
		p.Indoor = p.FloorID != ""
	}
	if p.Indoor && p.FloorID == "" {
		return p, false, false, bridgeerr.Malformed("floorId", "indoor point without floor")
	}
	return p, hasCoord, hasCart, nil
}

func EncodeCircle(c model.Circle) Object {
	return Object{
		"center": EncodePoint(c.Center),
		"radius": c.Radius,
	}
}

func DecodeCircle(v any) (model.Circle, error) {
	o, err := asObject(v, "circle")
	if err != nil {
		return model.Circle{}, err
	}
	center, err := requireObject(o, "center")
	if err != nil {
		return model.Circle{}, err
	}
	p, err := DecodePoint(center)
	if err != nil {
		return model.Circle{}, err
	}
	r, err := requireFloat(o, "radius")
	if err != nil {
		return model.Circle{}, err
	}
	return model.Circle{Center: p, Radius: r}, nil
}
