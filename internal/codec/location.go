package codec

import (
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

// EncodeLocationState is the canonical string form of a state.
func EncodeLocationState(s model.LocationState) string {
	return s.String()
}

func DecodeLocationState(v any) (model.LocationState, error) {
	name, ok := v.(string)
	if !ok {
		return 0, bridgeerr.Malformed("state", "expected string, got %T", v)
	}
	s, ok := model.ParseLocationState(name)
	if !ok {
		return 0, bridgeerr.InvalidEnum("state", name)
	}
	return s, nil
}

// EncodeLocationStatus is the structured form of a state. Its statusName
// always equals EncodeLocationState of the same value.
func EncodeLocationStatus(s model.LocationState) Object {
	return Object{
		"statusName":    s.String(),
		"statusOrdinal": int(s),
		"description":   s.Description(),
	}
}

// DecodeLocationStatus reads the ordinal and checks that the name, when
// present, agrees with it.
func DecodeLocationStatus(v any) (model.LocationState, error) {
	o, err := asObject(v, "status")
	if err != nil {
		return 0, err
	}
	ordinal, err := requireInt(o, "statusOrdinal")
	if err != nil {
		return 0, err
	}
	s := model.LocationState(ordinal)
	if !s.IsValid() {
		return 0, bridgeerr.InvalidEnum("statusOrdinal", ordinal)
	}
	name, err := optString(o, "statusName")
	if err != nil {
		return 0, err
	}
	if name != "" && name != s.String() {
		return 0, bridgeerr.InvalidEnum("statusName", name)
	}
	return s, nil
}

func EncodeLocation(l model.Location) Object {
	return Object{
		"position":            EncodePoint(l.Position),
		"buildingId":          l.Position.BuildingID,
		"floorId":             l.Position.FloorID,
		"coordinate":          EncodeCoordinate(l.Position.Coordinate),
		"cartesianCoordinate": EncodeCartesian(l.Position.Cartesian),
		"isIndoor":            l.Position.Indoor,
		"isOutdoor":           l.Position.IsOutdoor(),
		"accuracy":            l.Accuracy,
		"bearing":             EncodeAngle(l.Bearing),
		"cartesianBearing":    EncodeAngle(l.CartesianBearing),
		"hasBearing":          l.HasBearing,
		"hasCartesianBearing": l.HasCartesianBearing,
		"quality":             string(l.Quality),
		"bearingQuality":      string(l.BearingQuality),
		"provider":            l.Provider,
		"deviceId":            l.DeviceID,
		"timestamp":           encodeMillis(l.Timestamp),
		"state":               EncodeLocationState(l.State),
		"status":              EncodeLocationStatus(l.State),
	}
}

func DecodeLocation(v any) (model.Location, error) {
	o, err := asObject(v, "location")
	if err != nil {
		return model.Location{}, err
	}
	var l model.Location
	if l.Position, err = DecodePoint(o["position"]); err != nil {
		return l, err
	}
	if l.Accuracy, err = requireFloat(o, "accuracy"); err != nil {
		return l, err
	}
	if raw, ok := lookup(o, "bearing"); ok {
		if l.Bearing, err = DecodeAngle(raw); err != nil {
			return l, err
		}
	}
	if raw, ok := lookup(o, "cartesianBearing"); ok {
		if l.CartesianBearing, err = DecodeAngle(raw); err != nil {
			return l, err
		}
	}
	for key, dst := range map[string]*bool{
		"hasBearing":          &l.HasBearing,
		"hasCartesianBearing": &l.HasCartesianBearing,
	} {
		b, err := optBool(o, key)
		if err != nil {
			return l, err
		}
		*dst = b != nil && *b
	}
	if l.Quality, err = decodeQuality(o, "quality"); err != nil {
		return l, err
	}
	if l.BearingQuality, err = decodeQuality(o, "bearingQuality"); err != nil {
		return l, err
	}
	if l.Provider, err = optString(o, "provider"); err != nil {
		return l, err
	}
	if l.DeviceID, err = optString(o, "deviceId"); err != nil {
		return l, err
	}
	if l.Timestamp, err = decodeMillis(o, "timestamp"); err != nil {
		return l, err
	}
	if l.State, err = decodeLocationStateFields(o); err != nil {
		return l, err
	}
	return l, nil
}

// decodeLocationStateFields accepts either representation and, when both
// are present, requires them to agree.
func decodeLocationStateFields(o Object) (model.LocationState, error) {
	rawState, hasState := lookup(o, "state")
	rawStatus, hasStatus := lookup(o, "status")
	switch {
	case hasState && hasStatus:
		s, err := DecodeLocationState(rawState)
		if err != nil {
			return 0, err
		}
		fromStatus, err := DecodeLocationStatus(rawStatus)
		if err != nil {
			return 0, err
		}
		if s != fromStatus {
			return 0, bridgeerr.Malformed("state", "%s disagrees with status %s", s, fromStatus)
		}
		return s, nil
	case hasState:
		return DecodeLocationState(rawState)
	case hasStatus:
		return DecodeLocationStatus(rawStatus)
	}
	return model.StatePositioning, nil
}

func decodeQuality(o Object, key string) (model.Quality, error) {
	s, err := optString(o, key)
	if err != nil || s == "" {
		return "", err
	}
	q := model.Quality(s)
	if !q.IsValid() {
		return "", bridgeerr.InvalidEnum(key, s)
	}
	return q, nil
}

func EncodeRealTimeData(d model.RealTimeData) Object {
	return Object{
		"deviceId":    d.DeviceID,
		"position":    EncodePoint(d.Position),
		"timestampMs": encodeMillis(d.Timestamp),
	}
}

func DecodeRealTimeData(v any) (model.RealTimeData, error) {
	o, err := asObject(v, "realtime")
	if err != nil {
		return model.RealTimeData{}, err
	}
	var d model.RealTimeData
	if d.DeviceID, err = identifier(o, "deviceId"); err != nil {
		return d, err
	}
	if d.Position, err = DecodePoint(o["position"]); err != nil {
		return d, err
	}
	if d.Timestamp, err = decodeMillis(o, "timestampMs"); err != nil {
		return d, err
	}
	return d, nil
}

// EncodeRealTimeUpdate is the payload of one realtime push.
func EncodeRealTimeUpdate(data []model.RealTimeData) Object {
	return Object{"locations": encodeList(data, EncodeRealTimeData)}
}
