package dispatcher

import (
	"context"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
)

type directionsOutcome struct {
	route model.Route
	err   error
}

// requestDirections resolves both endpoints against the cache before the SDK
// is called. A reference that does not resolve is a ValidationError that
// also wraps the underlying CacheMiss.
func (d *Dispatcher) requestDirections(cmd Command) (operation, error) {
	req, err := codec.DecodeDirectionsRequest(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	building, err := d.cache.Buildings.Get(req.BuildingID)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	conv := gis.NewConverter(building)
	for _, e := range []*model.Endpoint{&req.From, &req.To} {
		p, err := d.resolveEndpoint(cmd.Name, building, *e, conv)
		if err != nil {
			return nil, err
		}
		*e = model.Endpoint{Point: p, HasCoordinate: true, HasCartesian: true}
	}

	return func(ctx context.Context) (any, error) {
		correlationID := d.correlationID(cmd)
		outcome := make(chan directionsOutcome, 1)
		cb := d.adapter.Directions(correlationID, func(r model.Route, err error) {
			outcome <- directionsOutcome{route: r, err: err}
		})
		if err := d.sdk.RequestDirections(building, req, cb); err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		select {
		case o := <-outcome:
			if o.err != nil {
				return nil, o.err
			}
			route := codec.EncodeRoute(o.route)
			route["correlationId"] = correlationID
			return route, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

func (d *Dispatcher) resolveEndpoint(op string, building model.Building, e model.Endpoint, conv *gis.Converter) (model.Point, error) {
	if e.IsPOI() {
		poi, err := d.cache.POIs.Get(e.POIID)
		if err != nil {
			return model.Point{}, bridgeerr.Invalid(op, err)
		}
		if poi.BuildingID != building.ID {
			return model.Point{}, bridgeerr.Validation(op, "poi %s belongs to building %s, not %s", poi.ID, poi.BuildingID, building.ID)
		}
		return poi.Position, nil
	}

	p := e.Point
	if p.BuildingID != "" && p.BuildingID != building.ID {
		return model.Point{}, bridgeerr.Validation(op, "point in building %s, not %s", p.BuildingID, building.ID)
	}
	p.BuildingID = building.ID
	e.Point = p
	if p.Indoor {
		floor, err := d.cache.Floors.Get(p.FloorID)
		if err != nil {
			return model.Point{}, bridgeerr.Invalid(op, err)
		}
		if floor.BuildingID != building.ID {
			return model.Point{}, bridgeerr.Validation(op, "floor %s belongs to building %s, not %s", floor.ID, floor.BuildingID, building.ID)
		}
	}
	return conv.Complete(e), nil
}
