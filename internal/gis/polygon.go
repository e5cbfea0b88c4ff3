package gis

// PointInPolygon reports whether p lies inside the polygon given by its
// vertices, using the even-odd rule. The polygon is implicitly closed.
// Points exactly on an edge may fall either way.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		a, b := polygon[i], polygon[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			lon := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < lon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
