package model

import "time"

type IndoorProvider string

const (
	IndoorProviderInPhone IndoorProvider = "INPHONE"
	IndoorProviderSupport IndoorProvider = "SUPPORT"
)

func (p IndoorProvider) IsValid() bool {
	switch p {
	case IndoorProviderInPhone, IndoorProviderSupport:
		return true
	}
	return false
}

type MotionMode string

const (
	MotionByFoot MotionMode = "BY_FOOT"
	MotionByCar  MotionMode = "BY_CAR"
)

func (m MotionMode) IsValid() bool {
	switch m {
	case MotionByFoot, MotionByCar:
		return true
	}
	return false
}

type RealtimeUpdateInterval string

const (
	RealtimeIntervalRealtime     RealtimeUpdateInterval = "REALTIME"
	RealtimeIntervalFast         RealtimeUpdateInterval = "FAST"
	RealtimeIntervalNormal       RealtimeUpdateInterval = "NORMAL"
	RealtimeIntervalSlow         RealtimeUpdateInterval = "SLOW"
	RealtimeIntervalBatterySaver RealtimeUpdateInterval = "BATTERY_SAVER"
	RealtimeIntervalNever        RealtimeUpdateInterval = "NEVER"
)

func (r RealtimeUpdateInterval) IsValid() bool {
	switch r {
	case RealtimeIntervalRealtime, RealtimeIntervalFast, RealtimeIntervalNormal,
		RealtimeIntervalSlow, RealtimeIntervalBatterySaver, RealtimeIntervalNever:
		return true
	}
	return false
}

// LocationRequest configures a positioning session. Nil pointers leave the
// SDK default in place.
type LocationRequest struct {
	BuildingID             string
	Interval               time.Duration
	IndoorProvider         IndoorProvider
	UseBLE                 *bool
	UseWiFi                *bool
	UseGPS                 *bool
	UseBarometer           *bool
	UseDeadReckoning       *bool
	UseForegroundService   *bool
	UseBatterySaver        *bool
	MotionMode             MotionMode
	SmallestDisplacement   float64
	RealtimeUpdateInterval RealtimeUpdateInterval
	BeaconFilters          []string
}

type AccessibilityMode string

const (
	AccessibilityChooseShortest                AccessibilityMode = "CHOOSE_SHORTEST"
	AccessibilityOnlyAccessible                AccessibilityMode = "ONLY_ACCESSIBLE"
	AccessibilityOnlyNotAccessibleFloorChanges AccessibilityMode = "ONLY_NOT_ACCESSIBLE_FLOOR_CHANGES"
)

func (m AccessibilityMode) IsValid() bool {
	switch m {
	case AccessibilityChooseShortest, AccessibilityOnlyAccessible, AccessibilityOnlyNotAccessibleFloorChanges:
		return true
	}
	return false
}

// Endpoint is either a reference to a cached POI or an explicit point.
// HasCoordinate and HasCartesian tell which coordinate systems the host sent
// for an explicit point; the other one is derived from the building.
type Endpoint struct {
	POIID         string
	Point         Point
	HasCoordinate bool
	HasCartesian  bool
}

func (e Endpoint) IsPOI() bool {
	return e.POIID != ""
}

type DirectionsRequest struct {
	BuildingID           string
	From                 Endpoint
	To                   Endpoint
	StartingAngle        Angle
	AccessibilityMode    AccessibilityMode
	MinimizeFloorChanges bool
	IncludedTags         []string
	ExcludedTags         []string
}

type NavigationOptions struct {
	DistanceToIgnoreFirstIndication     float64
	OutsideRouteThreshold               float64
	DistanceToGoalThreshold             float64
	DistanceToChangeFloorThreshold      float64
	DistanceToChangeIndicationThreshold float64
	IndicationsInterval                 time.Duration
	TimeToFirstIndication               time.Duration
	RoundIndicationsStep                int
	TimeToIgnoreUnexpectedFloorChanges  time.Duration
	IgnoreLowQualityLocations           bool
}

type NavigationRequest struct {
	Route   Route
	Options NavigationOptions
}

type RealTimeRequest struct {
	BuildingID string
	PollTime   time.Duration
}
