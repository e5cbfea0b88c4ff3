// Package sdk declares what the bridge needs from the native positioning
// SDK. Blocking fetches take a context; streaming operations report through
// callbacks invoked on SDK-owned goroutines, possibly concurrently.
package sdk

import (
	"context"
	"fmt"
	"image"

	"positioning-bridge/internal/model"
)

// Error is a failure reported by the SDK, carried to the host verbatim.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sdk error %d: %s", e.Code, e.Message)
}

func (e *Error) SDKCode() int { return e.Code }

type LocationCallback interface {
	OnLocationChanged(model.Location)
	OnStatusChanged(model.LocationState)
	OnError(error)
}

type NavigationCallback interface {
	OnProgress(model.NavigationProgress)
	OnDestinationReached()
	OnUserOutsideRoute()
	OnError(error)
}

// DirectionsCallback receives exactly one of OnRoute or OnError per request.
type DirectionsCallback interface {
	OnRoute(model.Route)
	OnError(error)
}

type RealTimeCallback interface {
	OnUserLocations([]model.RealTimeData)
	OnError(error)
}

type GeofenceCallback interface {
	OnEnteredGeofences([]model.Geofence)
	OnExitedGeofences([]model.Geofence)
}

type Communication interface {
	FetchBuildings(ctx context.Context) ([]model.Building, error)
	FetchFloors(ctx context.Context, buildingID string) ([]model.Floor, error)
	FetchIndoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error)
	FetchOutdoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error)
	FetchEvents(ctx context.Context, buildingID string) ([]model.Event, error)
	FetchGeofences(ctx context.Context, buildingID string) ([]model.Geofence, error)
	FetchPOICategories(ctx context.Context) ([]model.POICategory, error)
	FetchPOICategoryIcon(ctx context.Context, category model.POICategory, selected bool) (image.Image, error)
	FetchMapFromFloor(ctx context.Context, floor model.Floor) (image.Image, error)
}

type Positioning interface {
	RequestLocationUpdates(req model.LocationRequest, cb LocationCallback) error
	RemoveLocationUpdates() error
	// SetGeofenceCallback replaces the geofence listener; nil removes it.
	SetGeofenceCallback(cb GeofenceCallback)
}

type Directions interface {
	RequestDirections(building model.Building, req model.DirectionsRequest, cb DirectionsCallback) error
}

type Navigation interface {
	RequestNavigationUpdates(req model.NavigationRequest, cb NavigationCallback) error
	UpdateNavigationWithLocation(model.Location) error
	RemoveNavigationUpdates() error
}

type RealTime interface {
	RequestRealTimeUpdates(req model.RealTimeRequest, cb RealTimeCallback) error
	RemoveRealTimeUpdates() error
}

// SDK is the full capability set of the positioning SDK.
type SDK interface {
	Communication
	Positioning
	Directions
	Navigation
	RealTime
}
