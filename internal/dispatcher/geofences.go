package dispatcher

import (
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
)

// checkIfPointIsInsideGeofence tests the point against the cached geofences
// of its building and floor. Geofences that were never fetched are unknown,
// so the point is reported outside.
func (d *Dispatcher) checkIfPointIsInsideGeofence(cmd Command) (operation, error) {
	p, err := codec.DecodeGeofenceCheck(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	candidates := d.cache.Geofences.Filter(func(g model.Geofence) bool {
		return g.BuildingID == p.BuildingID && g.FloorID == p.FloorID
	})
	at := gis.FromCoordinate(p.Coordinate)
	for _, g := range candidates {
		if gis.PointInPolygon(at, gis.FromPoints(g.Polygon)) {
			return done(codec.EncodeGeofenceCheck(&g)), nil
		}
	}
	return done(codec.EncodeGeofenceCheck(nil)), nil
}

func (d *Dispatcher) onEnterGeofences(cmd Command) (operation, error) {
	enabled, err := codec.DecodeToggle(cmd.Args)
	if err != nil {
		return nil, err
	}
	d.adapter.EnableGeofenceEnter(enabled)
	return done(codec.EncodeSuccess()), nil
}

func (d *Dispatcher) onExitGeofences(cmd Command) (operation, error) {
	enabled, err := codec.DecodeToggle(cmd.Args)
	if err != nil {
		return nil, err
	}
	d.adapter.EnableGeofenceExit(enabled)
	return done(codec.EncodeSuccess()), nil
}
