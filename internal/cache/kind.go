package cache

import (
	"strings"

	"positioning-bridge/internal/bridgeerr"
)

type Kind string

const (
	KindBuilding Kind = "building"
	KindFloor    Kind = "floor"
	KindEvent    Kind = "event"
	KindCategory Kind = "category"
	KindPOI      Kind = "poi"
	KindRoute    Kind = "route"
	KindGeofence Kind = "geofence"
)

// Kinds lists every store of an EntityCache.
var Kinds = []Kind{KindBuilding, KindFloor, KindEvent, KindCategory, KindPOI, KindRoute, KindGeofence}

func (k Kind) IsValid() bool {
	switch k {
	case KindBuilding, KindFloor, KindEvent, KindCategory, KindPOI, KindRoute, KindGeofence:
		return true
	}
	return false
}

var plurals = map[string]Kind{
	"buildings":  KindBuilding,
	"floors":     KindFloor,
	"events":     KindEvent,
	"categories": KindCategory,
	"pois":       KindPOI,
	"routes":     KindRoute,
	"geofences":  KindGeofence,
}

// ParseKind accepts a kind name in any case, singular or plural.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if k, ok := plurals[name]; ok {
		return k, nil
	}
	k := Kind(name)
	if !k.IsValid() {
		return "", bridgeerr.InvalidEnum("kind", s)
	}
	return k, nil
}
