package dispatcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/cache"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/model"
)

func (d *Dispatcher) fetchBuildings(cmd Command) (operation, error) {
	return func(ctx context.Context) (any, error) {
		bs, err := d.sdk.FetchBuildings(ctx)
		if err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		d.cache.Buildings.PutAll(bs, func(b model.Building) string { return b.ID })
		return codec.EncodeBuildings(bs), nil
	}, nil
}

// cachedBuilding resolves the building argument of a per-building fetch.
// The building is never fetched implicitly.
func (d *Dispatcher) cachedBuilding(cmd Command) (model.Building, error) {
	id, err := codec.DecodeIdentifier(cmd.Args, "buildingId", "buildingIdentifier", "id")
	if err != nil {
		return model.Building{}, err
	}
	return d.cache.Buildings.Get(id)
}

// fetchPerBuilding builds the handler of a command that fetches one list of
// entities belonging to a cached building and stores them.
func fetchPerBuilding[V any](
	d *Dispatcher,
	fetch func(ctx context.Context, buildingID string) ([]V, error),
	store *cache.Store[V],
	key func(V) string,
	encode func([]V) codec.Array,
) handler {
	return func(cmd Command) (operation, error) {
		b, err := d.cachedBuilding(cmd)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (any, error) {
			items, err := fetch(ctx, b.ID)
			if err != nil {
				return nil, bridgeerr.SDK(cmd.Name, err)
			}
			store.PutAll(items, key)
			return encode(items), nil
		}, nil
	}
}

func floorID(f model.Floor) string       { return f.ID }
func poiID(p model.POI) string           { return p.ID }
func eventID(e model.Event) string       { return e.ID }
func geofenceID(g model.Geofence) string { return g.ID }

func (d *Dispatcher) encodePOIs(ps []model.POI) codec.Array {
	return codec.EncodePOIs(ps, d.cache)
}

func (d *Dispatcher) fetchFloorsFromBuilding(cmd Command) (operation, error) {
	return fetchPerBuilding(d, d.sdk.FetchFloors, d.cache.Floors, floorID, codec.EncodeFloors)(cmd)
}

func (d *Dispatcher) fetchIndoorPOIsFromBuilding(cmd Command) (operation, error) {
	return fetchPerBuilding(d, d.sdk.FetchIndoorPOIs, d.cache.POIs, poiID, d.encodePOIs)(cmd)
}

func (d *Dispatcher) fetchOutdoorPOIsFromBuilding(cmd Command) (operation, error) {
	return fetchPerBuilding(d, d.sdk.FetchOutdoorPOIs, d.cache.POIs, poiID, d.encodePOIs)(cmd)
}

func (d *Dispatcher) fetchEventsFromBuilding(cmd Command) (operation, error) {
	return fetchPerBuilding(d, d.sdk.FetchEvents, d.cache.Events, eventID, codec.EncodeEvents)(cmd)
}

func (d *Dispatcher) fetchGeofencesFromBuilding(cmd Command) (operation, error) {
	return fetchPerBuilding(d, d.sdk.FetchGeofences, d.cache.Geofences, geofenceID, codec.EncodeGeofences)(cmd)
}

// fetchBuildingInfo gathers everything known about a cached building. The
// five fetches run concurrently and the stores are only updated once all of
// them succeeded.
func (d *Dispatcher) fetchBuildingInfo(cmd Command) (operation, error) {
	b, err := d.cachedBuilding(cmd)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (any, error) {
		info := model.BuildingInfo{Building: b}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			info.Floors, err = d.sdk.FetchFloors(gctx, b.ID)
			return err
		})
		g.Go(func() (err error) {
			info.IndoorPOIs, err = d.sdk.FetchIndoorPOIs(gctx, b.ID)
			return err
		})
		g.Go(func() (err error) {
			info.OutdoorPOIs, err = d.sdk.FetchOutdoorPOIs(gctx, b.ID)
			return err
		})
		g.Go(func() (err error) {
			info.Events, err = d.sdk.FetchEvents(gctx, b.ID)
			return err
		})
		g.Go(func() (err error) {
			info.Geofences, err = d.sdk.FetchGeofences(gctx, b.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		d.cache.Floors.PutAll(info.Floors, floorID)
		d.cache.POIs.PutAll(info.IndoorPOIs, poiID)
		d.cache.POIs.PutAll(info.OutdoorPOIs, poiID)
		d.cache.Events.PutAll(info.Events, eventID)
		d.cache.Geofences.PutAll(info.Geofences, geofenceID)
		return codec.EncodeBuildingInfo(info, d.cache), nil
	}, nil
}

func (d *Dispatcher) fetchPoiCategories(cmd Command) (operation, error) {
	return func(ctx context.Context) (any, error) {
		cs, err := d.sdk.FetchPOICategories(ctx)
		if err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		d.cache.Categories.PutAll(cs, func(c model.POICategory) string { return c.ID })
		return codec.EncodePOICategories(cs), nil
	}, nil
}

func (d *Dispatcher) fetchPoiCategoryIcon(cmd Command) (operation, error) {
	id, selected, err := codec.DecodeIconRequest(cmd.Args)
	if err != nil {
		return nil, err
	}
	category, err := d.cache.Categories.Get(id)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (any, error) {
		img, err := d.sdk.FetchPOICategoryIcon(ctx, category, selected)
		if err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		return codec.EncodeBitmap(img)
	}, nil
}

func (d *Dispatcher) fetchMapFromFloor(cmd Command) (operation, error) {
	id, err := codec.DecodeIdentifier(cmd.Args, "floorId", "floorIdentifier", "id")
	if err != nil {
		return nil, err
	}
	floor, err := d.cache.Floors.Get(id)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (any, error) {
		img, err := d.sdk.FetchMapFromFloor(ctx, floor)
		if err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		return codec.EncodeBitmap(img)
	}, nil
}

func (d *Dispatcher) invalidateCache(cmd Command) (operation, error) {
	raw, err := codec.DecodeCacheKind(cmd.Args)
	if err != nil {
		d.logger.Debug("ignoring malformed cache kind", "error", err)
		return done(codec.EncodeSuccess()), nil
	}
	if raw == "" {
		d.cache.Invalidate()
		return done(codec.EncodeSuccess()), nil
	}
	kind, err := cache.ParseKind(raw)
	if err != nil {
		d.logger.Debug("ignoring unknown cache kind", "kind", raw)
		return done(codec.EncodeSuccess()), nil
	}
	d.cache.Invalidate(kind)
	return done(codec.EncodeSuccess()), nil
}
