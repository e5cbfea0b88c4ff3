// Package sdkfake is an in-memory SDK for tests. It serves canned venue
// data, counts calls and keeps the registered callbacks so tests can push
// native events themselves.
package sdkfake

import (
	"context"
	"image"
	"image/color"
	"sync"

	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

type SDK struct {
	Buildings   []model.Building
	Floors      map[string][]model.Floor
	IndoorPOIs  map[string][]model.POI
	OutdoorPOIs map[string][]model.POI
	Events      map[string][]model.Event
	Geofences   map[string][]model.Geofence
	Categories  []model.POICategory

	// FetchErr fails every fetch; StartErr fails every streaming request.
	FetchErr error
	StartErr error

	mu         sync.Mutex
	calls      map[string]int
	location   sdk.LocationCallback
	navigation sdk.NavigationCallback
	realtime   sdk.RealTimeCallback
	geofence   sdk.GeofenceCallback
	directions []sdk.DirectionsCallback

	locationRequests   []model.LocationRequest
	directionsRequests []model.DirectionsRequest
	navigationRequests []model.NavigationRequest
	navigationUpdates  []model.Location
	realtimeRequests   []model.RealTimeRequest
}

var _ sdk.SDK = (*SDK)(nil)

func New() *SDK {
	return &SDK{
		Floors:      map[string][]model.Floor{},
		IndoorPOIs:  map[string][]model.POI{},
		OutdoorPOIs: map[string][]model.POI{},
		Events:      map[string][]model.Event{},
		Geofences:   map[string][]model.Geofence{},
		calls:       map[string]int{},
	}
}

// Calls reports how many times the named SDK method was invoked.
func (f *SDK) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls reports how many SDK methods were invoked in all.
func (f *SDK) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *SDK) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *SDK) LocationCallback() sdk.LocationCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

func (f *SDK) NavigationCallback() sdk.NavigationCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigation
}

func (f *SDK) RealTimeCallback() sdk.RealTimeCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.realtime
}

func (f *SDK) GeofenceCallback() sdk.GeofenceCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geofence
}

// DirectionsCallbacks returns the callbacks of every directions request, in
// request order.
func (f *SDK) DirectionsCallbacks() []sdk.DirectionsCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sdk.DirectionsCallback(nil), f.directions...)
}

func (f *SDK) LocationRequests() []model.LocationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.LocationRequest(nil), f.locationRequests...)
}

func (f *SDK) DirectionsRequests() []model.DirectionsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.DirectionsRequest(nil), f.directionsRequests...)
}

func (f *SDK) NavigationRequests() []model.NavigationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.NavigationRequest(nil), f.navigationRequests...)
}

func (f *SDK) NavigationUpdates() []model.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Location(nil), f.navigationUpdates...)
}

func (f *SDK) RealTimeRequests() []model.RealTimeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RealTimeRequest(nil), f.realtimeRequests...)
}

func (f *SDK) FetchBuildings(ctx context.Context) ([]model.Building, error) {
	f.record("FetchBuildings")
	return f.Buildings, f.FetchErr
}

func (f *SDK) FetchFloors(ctx context.Context, buildingID string) ([]model.Floor, error) {
	f.record("FetchFloors")
	return f.Floors[buildingID], f.FetchErr
}

func (f *SDK) FetchIndoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error) {
	f.record("FetchIndoorPOIs")
	return f.IndoorPOIs[buildingID], f.FetchErr
}

func (f *SDK) FetchOutdoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error) {
	f.record("FetchOutdoorPOIs")
	return f.OutdoorPOIs[buildingID], f.FetchErr
}

func (f *SDK) FetchEvents(ctx context.Context, buildingID string) ([]model.Event, error) {
	f.record("FetchEvents")
	return f.Events[buildingID], f.FetchErr
}

func (f *SDK) FetchGeofences(ctx context.Context, buildingID string) ([]model.Geofence, error) {
	f.record("FetchGeofences")
	return f.Geofences[buildingID], f.FetchErr
}

func (f *SDK) FetchPOICategories(ctx context.Context) ([]model.POICategory, error) {
	f.record("FetchPOICategories")
	return f.Categories, f.FetchErr
}

func (f *SDK) FetchPOICategoryIcon(ctx context.Context, category model.POICategory, selected bool) (image.Image, error) {
	f.record("FetchPOICategoryIcon")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	c := color.NRGBA{R: 200, A: 255}
	if selected {
		c = color.NRGBA{G: 200, A: 255}
	}
	return solid(c), nil
}

func (f *SDK) FetchMapFromFloor(ctx context.Context, floor model.Floor) (image.Image, error) {
	f.record("FetchMapFromFloor")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return solid(color.NRGBA{R: 240, G: 240, B: 240, A: 255}), nil
}

func (f *SDK) RequestLocationUpdates(req model.LocationRequest, cb sdk.LocationCallback) error {
	f.record("RequestLocationUpdates")
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locationRequests = append(f.locationRequests, req)
	f.location = cb
	return nil
}

func (f *SDK) RemoveLocationUpdates() error {
	f.record("RemoveLocationUpdates")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = nil
	return nil
}

func (f *SDK) SetGeofenceCallback(cb sdk.GeofenceCallback) {
	f.record("SetGeofenceCallback")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geofence = cb
}

func (f *SDK) RequestDirections(building model.Building, req model.DirectionsRequest, cb sdk.DirectionsCallback) error {
	f.record("RequestDirections")
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directionsRequests = append(f.directionsRequests, req)
	f.directions = append(f.directions, cb)
	return nil
}

func (f *SDK) RequestNavigationUpdates(req model.NavigationRequest, cb sdk.NavigationCallback) error {
	f.record("RequestNavigationUpdates")
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigationRequests = append(f.navigationRequests, req)
	f.navigation = cb
	return nil
}

func (f *SDK) UpdateNavigationWithLocation(loc model.Location) error {
	f.record("UpdateNavigationWithLocation")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigationUpdates = append(f.navigationUpdates, loc)
	return nil
}

func (f *SDK) RemoveNavigationUpdates() error {
	f.record("RemoveNavigationUpdates")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigation = nil
	return nil
}

func (f *SDK) RequestRealTimeUpdates(req model.RealTimeRequest, cb sdk.RealTimeCallback) error {
	f.record("RequestRealTimeUpdates")
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.realtimeRequests = append(f.realtimeRequests, req)
	f.realtime = cb
	return nil
}

func (f *SDK) RemoveRealTimeUpdates() error {
	f.record("RemoveRealTimeUpdates")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.realtime = nil
	return nil
}

func solid(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	return img
}
