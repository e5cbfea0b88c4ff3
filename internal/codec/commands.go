package codec

import (
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

// DecodeIdentifier reads an id given either bare (string or integer) or as
// the first present key of an object.
func DecodeIdentifier(v any, keys ...string) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", bridgeerr.Malformed(keys[0], "empty identifier")
		}
		return id, nil
	case map[string]any:
		return identifier(id, keys...)
	case nil:
		return "", bridgeerr.Malformed(keys[0], "missing")
	default:
		return identifier(Object{keys[0]: v}, keys[0])
	}
}

// DecodeIconRequest reads {categoryId, selected} for fetchPoiCategoryIcon.
func DecodeIconRequest(v any) (string, bool, error) {
	o, err := asObject(v, "args")
	if err != nil {
		return "", false, err
	}
	id, err := identifier(o, "categoryId", "id")
	if err != nil {
		return "", false, err
	}
	selected, err := optBool(o, "selected")
	if err != nil {
		return "", false, err
	}
	return id, selected != nil && *selected, nil
}

// DecodeToggle reads an optional enable flag, bare or as {enabled}. An
// absent flag means enabled.
func DecodeToggle(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return true, nil
	case bool:
		return t, nil
	}
	o, err := asObject(v, "args")
	if err != nil {
		return false, err
	}
	enabled, err := optBool(o, "enabled")
	if err != nil {
		return false, err
	}
	return enabled == nil || *enabled, nil
}

// DecodeCacheKind reads the optional kind of invalidateCache, bare or as
// {kind}. An empty result means every kind.
func DecodeCacheKind(v any) (string, error) {
	switch k := v.(type) {
	case nil:
		return "", nil
	case string:
		return k, nil
	}
	o, err := asObject(v, "args")
	if err != nil {
		return "", err
	}
	return optString(o, "kind")
}

// DecodeGeofenceCheck reads the point of checkIfPointIsInsideGeofence, either
// wrapped as {point} or given directly.
func DecodeGeofenceCheck(v any) (model.Point, error) {
	o, err := asObject(v, "args")
	if err != nil {
		return model.Point{}, err
	}
	if raw, ok := lookup(o, "point"); ok {
		return DecodePoint(raw)
	}
	return DecodePoint(o)
}

// EncodeGeofenceCheck reports whether a point fell inside g; nil means it
// fell inside no geofence.
func EncodeGeofenceCheck(g *model.Geofence) Object {
	if g == nil {
		return Object{"isInsideGeofence": false}
	}
	return Object{
		"isInsideGeofence": true,
		"geofence":         Object{"identifier": g.ID, "name": g.Name},
	}
}

func EncodeSessionStarted(kind, correlationID string) Object {
	return Object{"sessionKind": kind, "correlationId": correlationID}
}

// EncodeStopResult mirrors the stop acknowledgement hosts already expect.
func EncodeStopResult(stopped bool) Object {
	msg := "Already disabled"
	if stopped {
		msg = "Stopped Successfully"
	}
	return Object{"success": true, "message": msg}
}

func EncodeSuccess() Object {
	return Object{"success": true}
}
