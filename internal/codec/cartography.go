package codec

import (
	"positioning-bridge/internal/model"
)

// Resolver looks up cached entities a record refers to by identifier.
type Resolver interface {
	Category(id string) (model.POICategory, bool)
	Floor(id string) (model.Floor, bool)
}

func EncodeBuilding(b model.Building) Object {
	return Object{
		"id":              b.ID,
		"name":            b.Name,
		"address":         b.Address,
		"infoHtml":        b.InfoHTML,
		"pictureUrl":      b.PictureURL,
		"pictureThumbUrl": b.PictureThumbURL,
		"userId":          b.UserID,
		"center":          EncodeCoordinate(b.Center),
		"dimensions":      EncodeDimensions(b.Dimensions),
		"bounds":          EncodeBounds(b.Bounds),
		"boundsRotated":   EncodeBounds(b.BoundsRotated),
		"rotation":        EncodeAngle(b.Rotation),
		"customFields":    encodeStringMap(b.CustomFields),
		"createdAt":       encodeTime(b.CreatedAt),
		"updatedAt":       encodeTime(b.UpdatedAt),
	}
}

func DecodeBuilding(v any) (model.Building, error) {
	o, err := asObject(v, "building")
	if err != nil {
		return model.Building{}, err
	}
	var b model.Building
	if b.ID, err = identifier(o, "id", "buildingId", "buildingIdentifier"); err != nil {
		return b, err
	}
	if b.Name, err = requireString(o, "name"); err != nil {
		return b, err
	}
	for key, dst := range map[string]*string{
		"address":         &b.Address,
		"infoHtml":        &b.InfoHTML,
		"pictureUrl":      &b.PictureURL,
		"pictureThumbUrl": &b.PictureThumbURL,
		"userId":          &b.UserID,
	} {
		if *dst, err = optString(o, key); err != nil {
			return b, err
		}
	}
	if b.Center, err = DecodeCoordinate(o["center"]); err != nil {
		return b, err
	}
	if b.Dimensions, err = DecodeDimensions(o["dimensions"]); err != nil {
		return b, err
	}
	if b.Bounds, err = DecodeBounds(o["bounds"]); err != nil {
		return b, err
	}
	if raw, ok := lookup(o, "boundsRotated"); ok {
		if b.BoundsRotated, err = DecodeBounds(raw); err != nil {
			return b, err
		}
	}
	if raw, ok := lookup(o, "rotation"); ok {
		if b.Rotation, err = DecodeAngle(raw); err != nil {
			return b, err
		}
	}
	if b.CustomFields, err = decodeStringMap(o, "customFields"); err != nil {
		return b, err
	}
	if b.CreatedAt, err = decodeTime(o, "createdAt"); err != nil {
		return b, err
	}
	if b.UpdatedAt, err = decodeTime(o, "updatedAt"); err != nil {
		return b, err
	}
	return b, nil
}

// EncodeFloor references its building by id only.
func EncodeFloor(f model.Floor) Object {
	return Object{
		"id":           f.ID,
		"buildingId":   f.BuildingID,
		"name":         f.Name,
		"level":        f.Level,
		"floor":        f.FloorNumber,
		"altitude":     f.Altitude,
		"scale":        f.Scale,
		"mapUrl":       f.MapURL,
		"customFields": encodeStringMap(f.CustomFields),
		"createdAt":    encodeTime(f.CreatedAt),
		"updatedAt":    encodeTime(f.UpdatedAt),
	}
}

func DecodeFloor(v any) (model.Floor, error) {
	o, err := asObject(v, "floor")
	if err != nil {
		return model.Floor{}, err
	}
	var f model.Floor
	if f.ID, err = identifier(o, "id", "floorId", "floorIdentifier"); err != nil {
		return f, err
	}
	if f.BuildingID, err = identifier(o, "buildingId", "buildingIdentifier"); err != nil {
		return f, err
	}
	if f.Level, err = requireInt(o, "level"); err != nil {
		return f, err
	}
	if f.MapURL, err = requireString(o, "mapUrl"); err != nil {
		return f, err
	}
	if f.Name, err = optString(o, "name"); err != nil {
		return f, err
	}
	if f.FloorNumber, _, err = optInt(o, "floor"); err != nil {
		return f, err
	}
	if f.Altitude, _, err = optFloat(o, "altitude"); err != nil {
		return f, err
	}
	if f.Scale, _, err = optFloat(o, "scale"); err != nil {
		return f, err
	}
	if f.CustomFields, err = decodeStringMap(o, "customFields"); err != nil {
		return f, err
	}
	if f.CreatedAt, err = decodeTime(o, "createdAt"); err != nil {
		return f, err
	}
	if f.UpdatedAt, err = decodeTime(o, "updatedAt"); err != nil {
		return f, err
	}
	return f, nil
}

func EncodePOICategory(c model.POICategory) Object {
	return Object{
		"id":                c.ID,
		"code":              c.Code,
		"name":              c.Name,
		"nameI18n":          encodeStringMap(c.NameI18n),
		"iconSelectedUrl":   c.SelectedIconURL,
		"iconUnselectedUrl": c.UnselectedIconURL,
		"public":            c.Public,
	}
}

func DecodePOICategory(v any) (model.POICategory, error) {
	o, err := asObject(v, "category")
	if err != nil {
		return model.POICategory{}, err
	}
	var c model.POICategory
	if c.ID, err = identifier(o, "id", "categoryId"); err != nil {
		return c, err
	}
	if c.Code, err = requireString(o, "code"); err != nil {
		return c, err
	}
	if c.Name, err = requireString(o, "name"); err != nil {
		return c, err
	}
	if c.NameI18n, err = decodeStringMap(o, "nameI18n"); err != nil {
		return c, err
	}
	if c.SelectedIconURL, err = optString(o, "iconSelectedUrl"); err != nil {
		return c, err
	}
	if c.UnselectedIconURL, err = optString(o, "iconUnselectedUrl"); err != nil {
		return c, err
	}
	public, err := optBool(o, "public")
	if err != nil {
		return c, err
	}
	c.Public = public != nil && *public
	return c, nil
}

// EncodePOI always carries the raw categoryId and floorId. When r resolves
// every reference the POI also embeds its category and floor and is marked
// resolved; otherwise only the identifiers are surfaced.
func EncodePOI(p model.POI, r Resolver) Object {
	o := Object{
		"id":           p.ID,
		"buildingId":   p.BuildingID,
		"floorId":      p.FloorID,
		"categoryId":   p.CategoryID,
		"name":         p.Name,
		"infoHtml":     p.InfoHTML,
		"position":     EncodePoint(p.Position),
		"isIndoor":     p.Position.Indoor,
		"isOutdoor":    p.Position.IsOutdoor(),
		"customFields": encodeStringMap(p.CustomFields),
		"createdAt":    encodeTime(p.CreatedAt),
		"updatedAt":    encodeTime(p.UpdatedAt),
		"resolved":     false,
	}
	if r == nil {
		return o
	}
	// An absent reference needs no resolving.
	category, catOK := model.POICategory{}, p.CategoryID == ""
	if p.CategoryID != "" {
		category, catOK = r.Category(p.CategoryID)
	}
	floor, floorOK := model.Floor{}, p.FloorID == ""
	if p.FloorID != "" {
		floor, floorOK = r.Floor(p.FloorID)
	}
	if catOK && floorOK {
		if p.CategoryID != "" {
			o["category"] = EncodePOICategory(category)
		}
		if p.FloorID != "" {
			o["floor"] = EncodeFloor(floor)
		}
		o["resolved"] = true
	}
	return o
}

func DecodePOI(v any) (model.POI, error) {
	o, err := asObject(v, "poi")
	if err != nil {
		return model.POI{}, err
	}
	var p model.POI
	if p.ID, err = identifier(o, "id", "poiId", "identifier"); err != nil {
		return p, err
	}
	if p.BuildingID, err = identifier(o, "buildingId", "buildingIdentifier"); err != nil {
		return p, err
	}
	if p.FloorID, err = optString(o, "floorId"); err != nil {
		return p, err
	}
	if p.CategoryID, err = optString(o, "categoryId"); err != nil {
		return p, err
	}
	if p.Name, err = optString(o, "name"); err != nil {
		return p, err
	}
	if p.InfoHTML, err = optString(o, "infoHtml"); err != nil {
		return p, err
	}
	if p.Position, err = DecodePoint(o["position"]); err != nil {
		return p, err
	}
	if p.CustomFields, err = decodeStringMap(o, "customFields"); err != nil {
		return p, err
	}
	if p.CreatedAt, err = decodeTime(o, "createdAt"); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = decodeTime(o, "updatedAt"); err != nil {
		return p, err
	}
	return p, nil
}

func EncodeGeofence(g model.Geofence) Object {
	return Object{
		"id":            g.ID,
		"buildingId":    g.BuildingID,
		"floorId":       g.FloorID,
		"name":          g.Name,
		"code":          g.Code,
		"infoHtml":      g.InfoHTML,
		"polygonPoints": encodeList(g.Polygon, EncodePoint),
		"customFields":  encodeStringMap(g.CustomFields),
		"createdAt":     encodeTime(g.CreatedAt),
		"updatedAt":     encodeTime(g.UpdatedAt),
	}
}

func EncodeEvent(e model.Event) Object {
	o := Object{
		"id":           e.ID,
		"buildingId":   e.BuildingID,
		"floorId":      e.FloorID,
		"name":         e.Name,
		"infoHtml":     e.InfoHTML,
		"position":     EncodePoint(e.Trigger.Center),
		"radius":       e.Trigger.Radius,
		"trigger":      EncodeCircle(e.Trigger),
		"customFields": encodeStringMap(e.CustomFields),
	}
	if e.Conversion != nil {
		o["conversion"] = EncodeCircle(*e.Conversion)
	}
	return o
}

// EncodeBuildingInfo encodes the aggregate returned by fetchBuildingInfo.
func EncodeBuildingInfo(info model.BuildingInfo, r Resolver) Object {
	poi := func(p model.POI) Object { return EncodePOI(p, r) }
	return Object{
		"building":    EncodeBuilding(info.Building),
		"floors":      encodeList(info.Floors, EncodeFloor),
		"indoorPOIs":  encodeList(info.IndoorPOIs, poi),
		"outdoorPOIs": encodeList(info.OutdoorPOIs, poi),
		"events":      encodeList(info.Events, EncodeEvent),
		"geofences":   encodeList(info.Geofences, EncodeGeofence),
	}
}

func EncodeBuildings(bs []model.Building) Array { return encodeList(bs, EncodeBuilding) }
func EncodeFloors(fs []model.Floor) Array       { return encodeList(fs, EncodeFloor) }
func EncodeEvents(es []model.Event) Array       { return encodeList(es, EncodeEvent) }
func EncodeGeofences(gs []model.Geofence) Array { return encodeList(gs, EncodeGeofence) }

func EncodePOICategories(cs []model.POICategory) Array {
	return encodeList(cs, EncodePOICategory)
}

func EncodePOIs(ps []model.POI, r Resolver) Array {
	return encodeList(ps, func(p model.POI) Object { return EncodePOI(p, r) })
}
