package replay

import (
	"time"

	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

// RequestLocationUpdates replays the building trace, one location per
// interval, looping at the end. A running replay is replaced.
func (s *SDK) RequestLocationUpdates(req model.LocationRequest, cb sdk.LocationCallback) error {
	st, ok := s.sites[req.BuildingID]
	if !ok {
		return notFound("building", req.BuildingID)
	}
	if cb == nil {
		return &sdk.Error{Code: CodeInvalidRequest, Message: "location callback is required"}
	}
	interval := req.Interval
	if interval <= 0 {
		interval = s.interval
	}

	s.locMu.Lock()
	defer s.locMu.Unlock()
	s.location.halt()
	s.location = startLoop(func(stop <-chan struct{}) {
		s.replayTrace(st, interval, cb, stop)
	})
	s.logger.Debug("location replay started", "buildingId", st.building.ID, "interval", interval)
	return nil
}

// RemoveLocationUpdates halts the replay. The callback receives STOPPED
// before this returns.
func (s *SDK) RemoveLocationUpdates() error {
	s.locMu.Lock()
	defer s.locMu.Unlock()
	if s.location == nil {
		return nil
	}
	s.location.halt()
	s.location = nil
	s.logger.Debug("location replay stopped")
	return nil
}

func (s *SDK) SetGeofenceCallback(cb sdk.GeofenceCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geofenceCb = cb
}

func (s *SDK) replayTrace(st *site, interval time.Duration, cb sdk.LocationCallback, stop <-chan struct{}) {
	cb.OnStatusChanged(model.StateStarting)
	cb.OnStatusChanged(model.StateCalculating)
	if len(st.trace) > 0 {
		cb.OnStatusChanged(model.StatePositioning)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	inside := make(map[string]bool)
	for i := 0; ; i++ {
		select {
		case <-stop:
			cb.OnStatusChanged(model.StateStopped)
			return
		case <-ticker.C:
		}
		if len(st.trace) == 0 {
			continue
		}
		loc := st.trace[i%len(st.trace)]
		loc.Quality = model.QualityHigh
		loc.BearingQuality = model.QualityLow
		loc.Provider = provider
		loc.DeviceID = provider
		loc.State = model.StatePositioning
		loc.Timestamp = now()
		cb.OnLocationChanged(loc)
		s.trackGeofences(st, loc.Position, inside)
	}
}

// trackGeofences reports geofences whose containment of p changed since the
// previous location. inside carries the state between calls.
func (s *SDK) trackGeofences(st *site, p model.Point, inside map[string]bool) {
	var entered, exited []model.Geofence
	at := gis.FromCoordinate(p.Coordinate)
	for _, g := range st.geofences {
		in := p.Indoor && p.FloorID == g.FloorID && gis.PointInPolygon(at, gis.FromPoints(g.Polygon))
		switch {
		case in && !inside[g.ID]:
			entered = append(entered, g)
		case !in && inside[g.ID]:
			exited = append(exited, g)
		}
		inside[g.ID] = in
	}

	s.mu.Lock()
	cb := s.geofenceCb
	s.mu.Unlock()
	if cb == nil {
		return
	}
	if len(entered) > 0 {
		cb.OnEnteredGeofences(entered)
	}
	if len(exited) > 0 {
		cb.OnExitedGeofences(exited)
	}
}
