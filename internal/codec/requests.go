package codec

import (
	"time"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

// DecodeLocationRequest reads the positional form [building, options?].
// A bare object is accepted as both the building reference and the options.
// An options buildingId overrides the one of the building reference.
func DecodeLocationRequest(v any) (model.LocationRequest, error) {
	var building, options any
	switch args := v.(type) {
	case []any:
		if len(args) == 0 {
			return model.LocationRequest{}, bridgeerr.Malformed("args[0]", "missing building")
		}
		building = args[0]
		if len(args) > 1 {
			options = args[1]
		}
	case map[string]any:
		building, options = args, args
	default:
		return model.LocationRequest{}, bridgeerr.Malformed("args", "expected array, got %T", v)
	}

	var req model.LocationRequest
	bo, err := asObject(building, "args[0]")
	if err != nil {
		return req, err
	}
	if req.BuildingID, err = identifier(bo, "buildingId", "buildingIdentifier"); err != nil {
		return req, err
	}
	if options == nil {
		return req, nil
	}
	o, err := asObject(options, "args[1]")
	if err != nil {
		return req, err
	}
	if err := decodeLocationOptions(o, &req); err != nil {
		return req, err
	}
	return req, nil
}

func decodeLocationOptions(o Object, req *model.LocationRequest) error {
	var err error
	if _, ok := lookup(o, "buildingId"); ok {
		if req.BuildingID, err = identifier(o, "buildingId"); err != nil {
			return err
		}
	} else if _, ok := lookup(o, "buildingIdentifier"); ok {
		if req.BuildingID, err = identifier(o, "buildingIdentifier"); err != nil {
			return err
		}
	}
	if ms, ok, err := optInt(o, "interval"); err != nil {
		return err
	} else if ok {
		if ms <= 0 {
			return bridgeerr.Malformed("interval", "must be positive, got %d", ms)
		}
		req.Interval = time.Duration(ms) * time.Millisecond
	}
	if s, err := optString(o, "indoorProvider"); err != nil {
		return err
	} else if s != "" {
		if req.IndoorProvider = model.IndoorProvider(s); !req.IndoorProvider.IsValid() {
			return bridgeerr.InvalidEnum("indoorProvider", s)
		}
	}
	if s, err := optString(o, "motionMode"); err != nil {
		return err
	} else if s != "" {
		if req.MotionMode = model.MotionMode(s); !req.MotionMode.IsValid() {
			return bridgeerr.InvalidEnum("motionMode", s)
		}
	}
	if s, err := optString(o, "realtimeUpdateInterval"); err != nil {
		return err
	} else if s != "" {
		if req.RealtimeUpdateInterval = model.RealtimeUpdateInterval(s); !req.RealtimeUpdateInterval.IsValid() {
			return bridgeerr.InvalidEnum("realtimeUpdateInterval", s)
		}
	}
	flags := []struct {
		key string
		dst **bool
	}{
		{"useBle", &req.UseBLE},
		{"useWifi", &req.UseWiFi},
		{"useGps", &req.UseGPS},
		{"useBarometer", &req.UseBarometer},
		{"useDeadReckoning", &req.UseDeadReckoning},
		{"useForegroundService", &req.UseForegroundService},
		{"useBatterySaver", &req.UseBatterySaver},
	}
	for _, f := range flags {
		if *f.dst, err = optBool(o, f.key); err != nil {
			return err
		}
	}
	if d, ok, err := optFloat(o, "smallestDisplacement"); err != nil {
		return err
	} else if ok && d > 0 {
		req.SmallestDisplacement = d
	}
	if raw, ok := lookup(o, "beaconFilters"); ok {
		filters, err := asArray(raw, "beaconFilters")
		if err != nil {
			return err
		}
		for _, f := range filters {
			fo, err := asObject(f, "beaconFilters[]")
			if err != nil {
				return err
			}
			uuid, err := optString(fo, "uuid")
			if err != nil {
				return err
			}
			if uuid != "" {
				req.BeaconFilters = append(req.BeaconFilters, uuid)
			}
		}
	}
	return nil
}

// EncodeLocationRequest produces the positional form accepted by
// DecodeLocationRequest.
func EncodeLocationRequest(r model.LocationRequest) Array {
	opts := Object{}
	if r.Interval > 0 {
		opts["interval"] = r.Interval.Milliseconds()
	}
	if r.IndoorProvider != "" {
		opts["indoorProvider"] = string(r.IndoorProvider)
	}
	if r.MotionMode != "" {
		opts["motionMode"] = string(r.MotionMode)
	}
	if r.RealtimeUpdateInterval != "" {
		opts["realtimeUpdateInterval"] = string(r.RealtimeUpdateInterval)
	}
	for key, b := range map[string]*bool{
		"useBle":               r.UseBLE,
		"useWifi":              r.UseWiFi,
		"useGps":               r.UseGPS,
		"useBarometer":         r.UseBarometer,
		"useDeadReckoning":     r.UseDeadReckoning,
		"useForegroundService": r.UseForegroundService,
		"useBatterySaver":      r.UseBatterySaver,
	} {
		if b != nil {
			opts[key] = *b
		}
	}
	if r.SmallestDisplacement > 0 {
		opts["smallestDisplacement"] = r.SmallestDisplacement
	}
	if len(r.BeaconFilters) > 0 {
		filters := make(Array, 0, len(r.BeaconFilters))
		for _, uuid := range r.BeaconFilters {
			filters = append(filters, Object{"uuid": uuid})
		}
		opts["beaconFilters"] = filters
	}
	return Array{Object{"buildingId": r.BuildingID}, opts}
}

// DecodeDirectionsRequest reads the positional form
// [building, from, to, options?]. Endpoints are either {poiId} references or
// points carrying at least one coordinate system; completing partial points
// and resolving references is left to the caller.
func DecodeDirectionsRequest(v any) (model.DirectionsRequest, error) {
	args, err := asArray(v, "args")
	if err != nil {
		return model.DirectionsRequest{}, err
	}
	if len(args) < 3 {
		return model.DirectionsRequest{}, bridgeerr.Malformed("args", "expected [building, from, to, options?], got %d elements", len(args))
	}
	req := model.DirectionsRequest{AccessibilityMode: model.AccessibilityChooseShortest}
	switch b := args[0].(type) {
	case string:
		req.BuildingID = b
	default:
		bo, err := asObject(b, "args[0]")
		if err != nil {
			return req, err
		}
		if req.BuildingID, err = identifier(bo, "id", "buildingId", "buildingIdentifier"); err != nil {
			return req, err
		}
	}
	if req.From, err = decodeEndpoint(args[1], "from"); err != nil {
		return req, err
	}
	if req.To, err = decodeEndpoint(args[2], "to"); err != nil {
		return req, err
	}
	if len(args) > 3 && args[3] != nil {
		o, err := asObject(args[3], "options")
		if err != nil {
			return req, err
		}
		if err := decodeDirectionsOptions(o, &req); err != nil {
			return req, err
		}
	}
	return req, nil
}

func decodeEndpoint(v any, field string) (model.Endpoint, error) {
	o, err := asObject(v, field)
	if err != nil {
		return model.Endpoint{}, err
	}
	if _, ok := lookup(o, "poiId"); ok {
		id, err := identifier(o, "poiId")
		return model.Endpoint{POIID: id}, err
	}
	p, hasCoord, hasCart, err := decodePartialPoint(o)
	if err != nil {
		return model.Endpoint{}, err
	}
	return model.Endpoint{Point: p, HasCoordinate: hasCoord, HasCartesian: hasCart}, nil
}

func decodeDirectionsOptions(o Object, req *model.DirectionsRequest) error {
	var err error
	if req.IncludedTags, err = stringList(o, "includedTags"); err != nil {
		return err
	}
	if req.ExcludedTags, err = stringList(o, "excludedTags"); err != nil {
		return err
	}
	mode, err := optString(o, "accessibilityMode")
	if err != nil {
		return err
	}
	if mode != "" {
		if req.AccessibilityMode = model.AccessibilityMode(mode); !req.AccessibilityMode.IsValid() {
			return bridgeerr.InvalidEnum("accessibilityMode", mode)
		}
	} else {
		for _, key := range []string{"accessible", "accessibleRoute"} {
			b, err := optBool(o, key)
			if err != nil {
				return err
			}
			if b != nil && *b {
				req.AccessibilityMode = model.AccessibilityOnlyAccessible
			}
		}
	}
	if deg, ok, err := optFloat(o, "startingAngle"); err != nil {
		return err
	} else if ok {
		req.StartingAngle = model.AngleFromDegrees(deg)
	}
	minimize, err := optBool(o, "minimizeFloorChanges")
	if err != nil {
		return err
	}
	req.MinimizeFloorChanges = minimize != nil && *minimize
	return nil
}

// EncodeDirectionsRequest produces the positional form accepted by
// DecodeDirectionsRequest.
func EncodeDirectionsRequest(r model.DirectionsRequest) Array {
	opts := Object{
		"accessibilityMode":    string(r.AccessibilityMode),
		"startingAngle":        r.StartingAngle.Degrees(),
		"minimizeFloorChanges": r.MinimizeFloorChanges,
	}
	if r.IncludedTags != nil {
		opts["includedTags"] = stringsToArray(r.IncludedTags)
	}
	if r.ExcludedTags != nil {
		opts["excludedTags"] = stringsToArray(r.ExcludedTags)
	}
	return Array{
		Object{"buildingId": r.BuildingID},
		encodeEndpoint(r.From),
		encodeEndpoint(r.To),
		opts,
	}
}

func encodeEndpoint(e model.Endpoint) Object {
	if e.IsPOI() {
		return Object{"poiId": e.POIID}
	}
	o := EncodePoint(e.Point)
	if !e.HasCoordinate {
		delete(o, "coordinate")
	}
	if !e.HasCartesian {
		delete(o, "cartesianCoordinate")
	}
	return o
}

func stringsToArray(ss []string) Array {
	out := make(Array, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

// DecodeNavigationArgs reads {routeId, ...options} for
// requestNavigationUpdates.
func DecodeNavigationArgs(v any) (string, model.NavigationOptions, error) {
	var opts model.NavigationOptions
	if id, ok := v.(string); ok {
		return id, opts, nil
	}
	o, err := asObject(v, "args")
	if err != nil {
		return "", opts, err
	}
	routeID, err := identifier(o, "routeId")
	if err != nil {
		return "", opts, err
	}
	distances := []struct {
		key string
		dst *float64
	}{
		{"distanceToIgnoreFirstIndication", &opts.DistanceToIgnoreFirstIndication},
		{"outsideRouteThreshold", &opts.OutsideRouteThreshold},
		{"distanceToGoalThreshold", &opts.DistanceToGoalThreshold},
		{"distanceToChangeFloorThreshold", &opts.DistanceToChangeFloorThreshold},
		{"distanceToChangeIndicationThreshold", &opts.DistanceToChangeIndicationThreshold},
	}
	for _, d := range distances {
		if *d.dst, _, err = optFloat(o, d.key); err != nil {
			return "", opts, err
		}
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"indicationsInterval", &opts.IndicationsInterval},
		{"timeToFirstIndication", &opts.TimeToFirstIndication},
		{"timeToIgnoreUnexpectedFloorChanges", &opts.TimeToIgnoreUnexpectedFloorChanges},
	}
	for _, d := range durations {
		ms, _, err := optInt(o, d.key)
		if err != nil {
			return "", opts, err
		}
		*d.dst = time.Duration(ms) * time.Millisecond
	}
	if opts.RoundIndicationsStep, _, err = optInt(o, "roundIndicationsStep"); err != nil {
		return "", opts, err
	}
	ignore, err := optBool(o, "ignoreLowQualityLocations")
	if err != nil {
		return "", opts, err
	}
	opts.IgnoreLowQualityLocations = ignore != nil && *ignore
	return routeID, opts, nil
}

// DecodeRealTimeRequest reads {buildingId, pollTime}; pollTime is in
// milliseconds.
func DecodeRealTimeRequest(v any) (model.RealTimeRequest, error) {
	o, err := asObject(v, "args")
	if err != nil {
		return model.RealTimeRequest{}, err
	}
	var req model.RealTimeRequest
	if req.BuildingID, err = identifier(o, "buildingId", "buildingIdentifier"); err != nil {
		return req, err
	}
	ms, ok, err := optInt(o, "pollTime")
	if err != nil {
		return req, err
	}
	if ok {
		if ms <= 0 {
			return req, bridgeerr.Malformed("pollTime", "must be positive, got %d", ms)
		}
		req.PollTime = time.Duration(ms) * time.Millisecond
	}
	return req, nil
}
